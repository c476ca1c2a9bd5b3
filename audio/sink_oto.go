//go:build !headless

// sink_oto.go - oto v3 audio output: plays the SID's pulled sample stream.

package audio

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoSink buffers signed-16-bit PCM frames handed to it by the orchestrator
// and streams them to the host's audio device through oto. It implements
// c64.SampleSink.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player

	mu  sync.Mutex
	buf []int16 // pending samples not yet read by oto's callback
}

// NewOtoSink opens an oto context at the given sample rate, mono, 16-bit.
func NewOtoSink(sampleRate int) (*OtoSink, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   0,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, err
	}
	<-ready

	s := &OtoSink{ctx: ctx}
	s.player = ctx.NewPlayer(s)
	s.player.Play()
	return s, nil
}

// Write implements c64.SampleSink: append one frame's worth of samples to
// the ring the oto callback drains from.
func (s *OtoSink) Write(samples []int16) error {
	s.mu.Lock()
	s.buf = append(s.buf, samples...)
	s.mu.Unlock()
	return nil
}

// Read implements io.Reader for oto.NewPlayer: drains pending samples as
// little-endian bytes, padding with silence if the emulator falls behind.
func (s *OtoSink) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(p) / 2
	if n > len(s.buf) {
		n = len(s.buf)
	}
	for i := 0; i < n; i++ {
		v := uint16(s.buf[i])
		p[i*2] = byte(v)
		p[i*2+1] = byte(v >> 8)
	}
	s.buf = s.buf[n:]

	for i := n * 2; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

func (s *OtoSink) Close() error {
	if s.player != nil {
		return s.player.Close()
	}
	return nil
}
