package catalog

import (
	"context"
	"sync"
	"time"
)

// RotationInterval is how often every carousel column advances
const RotationInterval = 3 * time.Second

// Carousel tracks the visible position of each grid column. Columns with
// one item or none never move.
type Carousel struct {
	mu      sync.Mutex
	lengths []int
	indices []int
}

// NewCarousel starts every column at its first item
func NewCarousel(lengths ...int) *Carousel {
	return &Carousel{
		lengths: append([]int(nil), lengths...),
		indices: make([]int, len(lengths)),
	}
}

// NewCarouselFor builds a carousel for grid columns
func NewCarouselFor[T any](columns [][]T) *Carousel {
	lengths := make([]int, len(columns))
	for i, column := range columns {
		lengths[i] = len(column)
	}
	return NewCarousel(lengths...)
}

// Next advances every column by one, wrapping at its length
func (c *Carousel) Next() {
	c.Advance(1)
}

// Advance moves every column by steps ticks
func (c *Carousel) Advance(steps int) {
	if steps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, length := range c.lengths {
		if length <= 1 {
			continue
		}
		c.indices[i] = (c.indices[i] + steps) % length
	}
}

// Indices returns the current position of every column
func (c *Carousel) Indices() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.indices...)
}

// Run advances the carousel every interval until ctx is done, calling
// onTick with the new positions.
func (c *Carousel) Run(ctx context.Context, interval time.Duration, onTick func([]int)) {
	if interval <= 0 {
		interval = RotationInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Next()
			if onTick != nil {
				onTick(c.Indices())
			}
		}
	}
}
