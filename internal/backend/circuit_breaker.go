package backend

import (
	"errors"
	"sync"
	"time"

	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// ErrCircuitOpen is returned without calling the backend while the breaker is open
var ErrCircuitOpen = errors.New("backend circuit breaker is open")

// CircuitState represents the state of a circuit breaker
type CircuitState string

const (
	StateClosed   CircuitState = "closed"    // Normal operation
	StateOpen     CircuitState = "open"      // Blocking requests
	StateHalfOpen CircuitState = "half-open" // Testing if the backend recovered
)

const (
	defaultMaxFailures       = 5
	defaultOpenTimeout       = 30 * time.Second
	defaultHalfOpenSuccesses = 3
)

// CircuitBreaker guards calls to the marketplace backend
type CircuitBreaker struct {
	name              string
	maxFailures       int           // Max consecutive failures before opening
	timeout           time.Duration // Time to wait before attempting recovery
	halfOpenSuccesses int           // Successes needed in half-open before closing
	state             CircuitState
	failures          int
	successCount      int
	lastFailureTime   time.Time
	lastStateChange   time.Time
	now               func() time.Time
	mu                sync.Mutex
}

// NewCircuitBreaker creates a circuit breaker; zero values fall back to
// 5 failures and a 30s open timeout.
func NewCircuitBreaker(name string, maxFailures int, timeout time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if timeout <= 0 {
		timeout = defaultOpenTimeout
	}
	return &CircuitBreaker{
		name:              name,
		maxFailures:       maxFailures,
		timeout:           timeout,
		halfOpenSuccesses: defaultHalfOpenSuccesses,
		state:             StateClosed,
		lastStateChange:   time.Now(),
		now:               time.Now,
	}
}

// Call executes fn with circuit breaker protection
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == StateOpen && cb.now().Sub(cb.lastStateChange) > cb.timeout {
		cb.transition(StateHalfOpen)
		cb.successCount = 0
		logger.Logger.Info().
			Str("circuit", cb.name).
			Msg("Circuit breaker transitioning to half-open")
	}
	currentState := cb.state
	cb.mu.Unlock()

	if currentState == StateOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
	return err
}

func (cb *CircuitBreaker) onFailure() {
	cb.failures++
	cb.lastFailureTime = cb.now()

	if cb.state == StateHalfOpen {
		cb.transition(StateOpen)
		logger.Logger.Warn().
			Str("circuit", cb.name).
			Msg("Circuit breaker reopened after half-open failure")
	} else if cb.failures >= cb.maxFailures {
		cb.transition(StateOpen)
		logger.Logger.Error().
			Str("circuit", cb.name).
			Int("failures", cb.failures).
			Int("threshold", cb.maxFailures).
			Msg("Circuit breaker opened")
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.halfOpenSuccesses {
			cb.transition(StateClosed)
			cb.failures = 0
			cb.successCount = 0
			logger.Logger.Info().
				Str("circuit", cb.name).
				Msg("Circuit breaker closed after successful recovery")
		}
	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) transition(state CircuitState) {
	cb.state = state
	cb.lastStateChange = cb.now()
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns circuit breaker statistics for the health endpoint
func (cb *CircuitBreaker) Stats() map[string]interface{} {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return map[string]interface{}{
		"name":              cb.name,
		"state":             cb.state,
		"failures":          cb.failures,
		"max_failures":      cb.maxFailures,
		"last_failure_time": cb.lastFailureTime,
		"last_state_change": cb.lastStateChange,
	}
}
