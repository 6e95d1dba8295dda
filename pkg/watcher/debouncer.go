package watcher

import (
	"context"
	"time"

	"github.com/ritzau/annotator/pkg/logging"
)

// Debouncer collapses rapid change batches into one, so that a burst of saves
// causes a single reload
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run emits the accumulated batch after quietPeriod without events, or after
// maxWait since the first event of the batch, whichever comes first
func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet       = time.NewTimer(d.quietPeriod)
		deadline    = time.NewTimer(d.maxWait)
		accumulated []string
		lastType    ChangeType
		eventCount  int
	)
	quiet.Stop()
	deadline.Stop()

	flush := func() {
		quiet.Stop()
		deadline.Stop()
		if eventCount == 0 {
			return
		}

		logging.Debug("flushing accumulated events", "count", eventCount, "type", lastType.String())
		select {
		case d.output <- ChangeEvent{Type: lastType, Paths: accumulated, Timestamp: time.Now()}:
		case <-ctx.Done():
		}

		accumulated = nil
		eventCount = 0
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			if eventCount == 0 {
				deadline.Reset(d.maxWait)
			}
			accumulated = append(accumulated, event.Paths...)
			lastType = event.Type
			eventCount++
			quiet.Reset(d.quietPeriod)

		case <-quiet.C:
			flush()

		case <-deadline.C:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
