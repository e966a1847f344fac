package sequencer

import (
	"context"

	"github.com/hupe1980/playback/core"
)

// dismissToken is consumed by the first qualifying gesture observed after it
// is armed. Non-qualifying gestures are ignored. The watcher stops when the
// context passed to armDismiss is done.
type dismissToken struct {
	consumed chan struct{}
}

func armDismiss(ctx context.Context, g core.Gestures) *dismissToken {
	t := &dismissToken{consumed: make(chan struct{})}
	go func() {
		for {
			gesture, err := g.NextGesture(ctx)
			if err != nil {
				return
			}
			if gesture.Dismisses() {
				close(t.consumed)
				return
			}
		}
	}()
	return t
}

// Consumed is closed once a qualifying gesture arrived.
func (t *dismissToken) Consumed() <-chan struct{} { return t.consumed }
