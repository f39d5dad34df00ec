// Package narrator plays the progress narration shown while a transfer is
// in flight. The narration is cosmetic: nothing waits on it for
// correctness, and it can be cancelled at any point.
package narrator

import (
	"context"
	"sync"
	"time"
)

// Step is one phase of the narration.
type Step struct {
	// Label replaces the current caption. Empty keeps the previous one.
	Label    string
	Percent  int
	Duration time.Duration
}

// Timeline is an ordered list of steps.
type Timeline []Step

// DefaultTimeline returns the standard narration, about 9 seconds long.
func DefaultTimeline() Timeline {
	return Timeline{
		{Label: "INITIALIZING GHOST NODES...", Percent: 15, Duration: 2 * time.Second},
		{Label: "FRAGMENTING DATA SHARDS [3/3]...", Percent: 45, Duration: 2 * time.Second},
		{Label: "ROUTING THROUGH DARK POOL...", Percent: 75, Duration: 2 * time.Second},
		{Label: "VERIFYING ZERO-KNOWLEDGE PROOFS...", Percent: 90, Duration: 2500 * time.Millisecond},
		{Percent: 100, Duration: 500 * time.Millisecond},
	}
}

// Total returns the unscaled length of the timeline.
func (t Timeline) Total() time.Duration {
	var d time.Duration
	for _, s := range t {
		d += s.Duration
	}
	return d
}

// Renderer displays the narration. Calls come from a single goroutine.
type Renderer interface {
	// Begin is called once before the first step.
	Begin(steps int)
	// Step shows step index of the timeline.
	Step(index int, step Step)
	// Done is called after the last step has elapsed.
	Done()
	// Abort is called instead of Done when the narration is cancelled.
	Abort()
}

// Narrator plays a timeline at a given speed.
type Narrator struct {
	Timeline Timeline

	// Speed divides every step duration. Zero or less plays instantly.
	Speed float64
}

// New returns a narrator for the default timeline.
func New(speed float64) *Narrator {
	return &Narrator{Timeline: DefaultTimeline(), Speed: speed}
}

func (n *Narrator) scale(d time.Duration) time.Duration {
	if n.Speed <= 0 {
		return 0
	}
	return time.Duration(float64(d) / n.Speed)
}

// Run plays the whole timeline from step one. It returns ctx.Err() if
// cancelled, after telling the renderer to abort.
func (n *Narrator) Run(ctx context.Context, r Renderer) error {
	r.Begin(len(n.Timeline))

	for i, step := range n.Timeline {
		if err := ctx.Err(); err != nil {
			r.Abort()
			return err
		}

		r.Step(i, step)

		if err := sleep(ctx, n.scale(step.Duration)); err != nil {
			r.Abort()
			return err
		}
	}

	r.Done()
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Task is a narration running in its own goroutine.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	err    error
}

// Start runs the narration in the background under a child of ctx.
func (n *Narrator) Start(ctx context.Context, r Renderer) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		t.err = n.Run(ctx, r)
	}()

	return t
}

// Wait blocks until the narration finishes and returns its result.
func (t *Task) Wait() error {
	<-t.done
	t.once.Do(t.cancel)
	return t.err
}

// Cancel stops the narration and waits for the renderer to be released.
func (t *Task) Cancel() {
	t.once.Do(t.cancel)
	<-t.done
}
