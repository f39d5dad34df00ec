package narrator

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// BarRenderer draws the narration as a terminal progress bar.
type BarRenderer struct {
	w     io.Writer
	color bool
	bar   *progressbar.ProgressBar
}

// NewBarRenderer returns a renderer writing to w.
func NewBarRenderer(w io.Writer, color bool) *BarRenderer {
	return &BarRenderer{w: w, color: color}
}

// Begin implements Renderer.
func (b *BarRenderer) Begin(int) {
	theme := progressbar.Theme{
		Saucer:        "=",
		SaucerHead:    ">",
		SaucerPadding: " ",
		BarStart:      "[",
		BarEnd:        "]",
	}
	if b.color {
		theme.Saucer = "[cyan]█[reset]"
		theme.SaucerHead = "[cyan]█[reset]"
	}

	b.bar = progressbar.NewOptions(100,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(b.color),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetTheme(theme),
	)
}

// Step implements Renderer.
func (b *BarRenderer) Step(_ int, step Step) {
	if b.bar == nil {
		return
	}
	if step.Label != "" {
		b.bar.Describe(step.Label)
	}
	_ = b.bar.Set(step.Percent)
}

// Done implements Renderer.
func (b *BarRenderer) Done() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Finish()
	_, _ = fmt.Fprintln(b.w)
	b.bar = nil
}

// Abort implements Renderer.
func (b *BarRenderer) Abort() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Exit()
	_, _ = fmt.Fprintln(b.w)
	b.bar = nil
}

// Discard renders nothing. It is used for JSON output.
type Discard struct{}

// Begin implements Renderer.
func (Discard) Begin(int) {}

// Step implements Renderer.
func (Discard) Step(int, Step) {}

// Done implements Renderer.
func (Discard) Done() {}

// Abort implements Renderer.
func (Discard) Abort() {}

// Event is one call recorded by Recorder.
type Event struct {
	Kind    string
	Index   int
	Label   string
	Percent int
}

// Recorder keeps every renderer call. Safe for concurrent reads.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Begin implements Renderer.
func (r *Recorder) Begin(steps int) { r.add(Event{Kind: "begin", Index: steps}) }

// Step implements Renderer.
func (r *Recorder) Step(index int, step Step) {
	r.add(Event{Kind: "step", Index: index, Label: step.Label, Percent: step.Percent})
}

// Done implements Renderer.
func (r *Recorder) Done() { r.add(Event{Kind: "done"}) }

// Abort implements Renderer.
func (r *Recorder) Abort() { r.add(Event{Kind: "abort"}) }

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded calls.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Steps returns the indexes of the recorded Step calls.
func (r *Recorder) Steps() []int {
	var idx []int
	for _, e := range r.Events() {
		if e.Kind == "step" {
			idx = append(idx, e.Index)
		}
	}
	return idx
}

// Last returns the kind of the last call, or "".
func (r *Recorder) Last() string {
	events := r.Events()
	if len(events) == 0 {
		return ""
	}
	return events[len(events)-1].Kind
}

// Reset forgets every recorded call.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
