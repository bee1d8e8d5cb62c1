package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	localDateLayout     = "2006-01-02"
	localDateTimeLayout = "2006-01-02T15:04:05"
)

// LocalDate is a calendar date the backend sends either as [y,m,d] or "YYYY-MM-DD".
// It is always written back as [y,m,d].
type LocalDate struct {
	Year  int
	Month int
	Day   int
}

// NewLocalDate returns the date part of t in its own location
func NewLocalDate(t time.Time) LocalDate {
	return LocalDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Time returns midnight UTC of the date
func (d LocalDate) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether the date was never set
func (d LocalDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Before reports whether d is earlier than other
func (d LocalDate) Before(other LocalDate) bool {
	return d.Time().Before(other.Time())
}

func (d LocalDate) String() string {
	return d.Time().Format(localDateLayout)
}

func (d LocalDate) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{d.Year, d.Month, d.Day})
}

func (d *LocalDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = LocalDate{}
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var parts []int
		if err := json.Unmarshal(data, &parts); err != nil {
			return fmt.Errorf("invalid date parts: %w", err)
		}
		if len(parts) < 3 {
			return fmt.Errorf("invalid date parts: expected 3 values, got %d", len(parts))
		}
		*d = LocalDate{Year: parts[0], Month: parts[1], Day: parts[2]}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	t, err := time.Parse(localDateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = NewLocalDate(t)
	return nil
}

// LocalDateTime is a timestamp without zone, sent as an ISO string or as
// [y,m,d,h,mi,s,nanos] depending on the backend serializer.
type LocalDateTime struct {
	time.Time
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(localDateTimeLayout))
}

func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var parts []int
		if err := json.Unmarshal(data, &parts); err != nil {
			return fmt.Errorf("invalid timestamp parts: %w", err)
		}
		if len(parts) < 3 {
			return fmt.Errorf("invalid timestamp parts: expected at least 3 values, got %d", len(parts))
		}
		for len(parts) < 7 {
			parts = append(parts, 0)
		}
		t.Time = time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], time.UTC)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}
	for _, layout := range []string{time.RFC3339Nano, localDateTimeLayout, "2006-01-02T15:04:05.999999999", localDateLayout} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}
