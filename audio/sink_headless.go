//go:build headless

// sink_headless.go - headless audio sink: counts samples, no device I/O.

package audio

import "sync/atomic"

// OtoSink is a headless stand-in with the same surface as the real
// oto-backed sink, for CI and test builds without an audio device.
type OtoSink struct {
	total uint64
}

func NewOtoSink(sampleRate int) (*OtoSink, error) {
	return &OtoSink{}, nil
}

func (s *OtoSink) Write(samples []int16) error {
	atomic.AddUint64(&s.total, uint64(len(samples)))
	return nil
}

func (s *OtoSink) Close() error { return nil }

func (s *OtoSink) TotalSamples() uint64 { return atomic.LoadUint64(&s.total) }
