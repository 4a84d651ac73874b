// Package metrics defines the observer the pipeline components report into.
// Implementations export the events to a backend; NoOp drops them, which is
// what tests use.
package metrics

import (
	"time"
)

// Message settlement decisions reported by the queue worker.
const (
	DecisionAck    = "ack"
	DecisionRetain = "retain"
	DecisionPoison = "poison"
)

// Recorder receives pipeline events.
type Recorder interface {
	// RecordFileOutcome reports a file reaching a terminal status.
	RecordFileOutcome(status string, transactions int, duration time.Duration)

	// RecordBatch reports the size of one received queue batch.
	RecordBatch(messages int)

	// RecordDecision reports how a queue message was settled.
	RecordDecision(decision string)

	// RecordNotification reports a notification delivery and how many
	// attempts it took.
	RecordNotification(delivered bool, attempts int)

	// RecordDLQReplay reports one dead-letter replay cycle.
	RecordDLQReplay(delivered bool)
}

// NoOp is a Recorder that drops every event.
type NoOp struct{}

func (NoOp) RecordFileOutcome(status string, transactions int, duration time.Duration) {}

func (NoOp) RecordBatch(messages int) {}

func (NoOp) RecordDecision(decision string) {}

func (NoOp) RecordNotification(delivered bool, attempts int) {}

func (NoOp) RecordDLQReplay(delivered bool) {}
