// Package extern implements the named, typed, queue-backed channels through
// which the host environment injects values into a running graph.
//
// Each queue is a FIFO of values. Readers peek the head without popping;
// the engine pops every head once per step, after all nodes have been fed.
// A value pushed between steps is therefore visible to every wired reader
// for exactly one step. Pushing faster than the engine consumes builds a
// backlog that drains one element per step.
//
// The registry is owned exclusively by the audio goroutine. Host writes
// arrive as commands on the control channel, so no locking is needed here.
package extern

import (
	"fmt"

	"github.com/vk/synthgrid/internal/value"
)

// Canonical input names used by the host integrations.
const (
	TrackAudio = "TrackAudio"
	Midi       = "Midi"
)

// Queue is one named input's FIFO.
type Queue struct {
	name   string
	kind   value.Kind
	values []value.Value
}

// Name returns the name the queue was defined under.
func (q *Queue) Name() string { return q.name }

// Kind returns the value kind declared at definition time.
func (q *Queue) Kind() value.Kind { return q.kind }

// Read peeks the head of the queue without popping it. It returns false if
// the queue is empty this step.
func (q *Queue) Read() (value.Value, bool) {
	if len(q.values) == 0 {
		return value.None(), false
	}
	return q.values[0], true
}

// Push appends one value to the back of the queue.
func (q *Queue) Push(v value.Value) {
	q.values = append(q.values, v)
}

// Extend appends a batch of values to the back of the queue.
func (q *Queue) Extend(vs []value.Value) {
	q.values = append(q.values, vs...)
}

// Len returns the backlog length.
func (q *Queue) Len() int { return len(q.values) }

func (q *Queue) pop() {
	if len(q.values) > 0 {
		// Shift rather than re-slice so the backing array is reused.
		copy(q.values, q.values[1:])
		q.values = q.values[:len(q.values)-1]
	}
}

// Inputs is the registry of extern input queues, keyed by name.
type Inputs struct {
	queues map[string]*Queue
}

// NewInputs returns an empty registry.
func NewInputs() *Inputs {
	return &Inputs{queues: make(map[string]*Queue)}
}

// Define allocates a new queue under name. Redefining a name is an error:
// nodes may already hold reads against the existing queue.
func (in *Inputs) Define(name string, kind value.Kind) (*Queue, error) {
	if _, ok := in.queues[name]; ok {
		return nil, fmt.Errorf("extern input %q: %w", name, ErrRedefined)
	}
	q := &Queue{name: name, kind: kind}
	in.queues[name] = q
	return q, nil
}

// Get returns the queue defined under name, if any.
func (in *Inputs) Get(name string) (*Queue, bool) {
	q, ok := in.queues[name]
	return q, ok
}

// Step pops the head of every queue. Values not consumed by any reader this
// step are gone; each element is visible for exactly one step.
func (in *Inputs) Step() {
	for _, q := range in.queues {
		q.pop()
	}
}

// Clone returns a registry with the same defined names and kinds but empty
// queues. Snapshots of a running graph do not carry host backlogs.
func (in *Inputs) Clone() *Inputs {
	c := NewInputs()
	for name, q := range in.queues {
		c.queues[name] = &Queue{name: name, kind: q.kind}
	}
	return c
}
