// Package eventtiming provides a minimal Begin/End event with a fmt-based
// summary printer for timing the CLI's mapping runs, matching plain
// fmt.Printf logging rather than pulling in a structured-logging library
// for a handful of duration reports.
package eventtiming

import (
	"fmt"
	"time"

	"github.com/notargets/rbfmap/utils"
)

// Event records the wall-clock duration of one named phase.
type Event struct {
	Name     string
	start    time.Time
	Duration time.Duration
	done     bool
}

// Begin starts timing a named event.
func Begin(name string) *Event {
	return &Event{Name: name, start: time.Now()}
}

// End stops the timer and records the elapsed duration. Calling End more
// than once is a no-op after the first call.
func (e *Event) End() {
	if e.done {
		return
	}
	e.Duration = time.Since(e.start)
	e.done = true
}

// Log is an ordered collection of completed events, printed as a summary.
type Log struct {
	events []*Event
}

// Record appends a completed event to the log. If it has not been ended
// yet, Record ends it first.
func (l *Log) Record(e *Event) {
	e.End()
	l.events = append(l.events, e)
}

// Print writes a one-line-per-event timing summary directly to stdout via
// fmt.Printf, followed by a memory usage line for the whole run.
func (l *Log) Print() {
	var total time.Duration
	for _, e := range l.events {
		fmt.Printf("%-32s %10s\n", e.Name, e.Duration)
		total += e.Duration
	}
	fmt.Printf("%-32s %10s\n", "total", total)
	fmt.Println(utils.GetMemUsage())
}
