// Package query tracks how often the same statement runs, to surface
// N+1 access patterns (one query per row of a previous result).
package query

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultThreshold is the number of executions inside the window that
	// raises an alert
	DefaultThreshold = 20
	// DefaultWindow is the observation window for one statement
	DefaultWindow = time.Second
	// DefaultMaxStatements bounds the statements tracked at once
	DefaultMaxStatements = 1000

	maxPatternLen = 120
)

// Alert reports a statement executed Count times within Window.
type Alert struct {
	Statement string
	Count     int
	Window    time.Duration
}

func (a Alert) String() string {
	return fmt.Sprintf("possible N+1: %q executed %d times in %v", a.Statement, a.Count, a.Window.Round(time.Millisecond))
}

type entry struct {
	count     int
	firstSeen time.Time
	alerted   bool
}

// RepeatDetector counts executions per statement text. Built statements
// carry placeholders instead of values, so one text stands for every call
// of the same query shape. It is safe for concurrent use.
type RepeatDetector struct {
	mu        sync.Mutex
	entries   map[string]*entry
	threshold int
	window    time.Duration
	maxSize   int
	now       func() time.Time
}

// NewRepeatDetector creates a detector. Non-positive arguments take the
// defaults.
func NewRepeatDetector(threshold int, window time.Duration) *RepeatDetector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RepeatDetector{
		entries:   make(map[string]*entry),
		threshold: threshold,
		window:    window,
		maxSize:   DefaultMaxStatements,
		now:       time.Now,
	}
}

// Record counts one execution of statement. It returns an alert the first
// time the statement reaches the threshold inside its window.
func (d *RepeatDetector) Record(statement string) (Alert, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	e, ok := d.entries[statement]
	if ok && now.Sub(e.firstSeen) > d.window {
		// window expired, start over
		e.count, e.firstSeen, e.alerted = 0, now, false
	}
	if !ok {
		if len(d.entries) >= d.maxSize {
			d.evictOldest()
		}
		e = &entry{firstSeen: now}
		d.entries[statement] = e
	}

	e.count++
	if e.count < d.threshold || e.alerted {
		return Alert{}, false
	}
	e.alerted = true
	return Alert{Statement: truncate(statement), Count: e.count, Window: now.Sub(e.firstSeen)}, true
}

// Len returns the number of statements currently tracked.
func (d *RepeatDetector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *RepeatDetector) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, e := range d.entries {
		if oldestKey == "" || e.firstSeen.Before(oldest) {
			oldestKey, oldest = key, e.firstSeen
		}
	}
	delete(d.entries, oldestKey)
}

func truncate(s string) string {
	if len(s) > maxPatternLen {
		return s[:maxPatternLen] + "..."
	}
	return s
}
