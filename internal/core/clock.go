package core

import "time"

// Clock supplies "now" for streak and staleness computations. Injecting it
// lets tests pin arbitrary dates without real-time delays.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant. For tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// ClockAt returns a FixedClock pinned to the given YYYY-MM-DD date at noon
// UTC. Panics on a malformed date; intended for test setup.
func ClockAt(date string) FixedClock {
	t, err := time.Parse(DateFmt, date)
	if err != nil {
		panic(err)
	}
	return FixedClock{T: t.Add(12 * time.Hour)}
}
