package service

import (
	"sync"
	"time"
)

// DailyCounter numbers orders from 1 each local day.
type DailyCounter struct {
	mu  sync.Mutex
	loc *time.Location
	day string
	n   int
}

// NewDailyCounter returns a counter that resets at midnight in loc.
func NewDailyCounter(loc *time.Location) *DailyCounter {
	if loc == nil {
		loc = time.Local
	}
	return &DailyCounter{loc: loc}
}

// Next returns the next number for the day containing now.
func (c *DailyCounter) Next(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollover(now)
	c.n++
	return c.n
}

// Current returns how many numbers were issued on the day containing now.
func (c *DailyCounter) Current(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollover(now)
	return c.n
}

func (c *DailyCounter) rollover(now time.Time) {
	if d := now.In(c.loc).Format("2006-01-02"); d != c.day {
		c.day = d
		c.n = 0
	}
}
