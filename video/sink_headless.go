//go:build headless

// sink_headless.go - headless video sink: counts frames, keeps the last
// rendered RGBA image available for golden-image tests, no windowing.

package video

import "sync"

type KeyHandler func(row, col int, pressed bool)

// EbitenSink is a headless stand-in with the same surface as the real
// ebiten-backed sink, for CI and test builds without a display.
type EbitenSink struct {
	mu         sync.Mutex
	rgba       []byte
	frameCount uint64
	onKey      KeyHandler
}

func NewEbitenSink(scale int, title string) (*EbitenSink, error) {
	return &EbitenSink{rgba: make([]byte, frameWidth*frameHeight*4)}, nil
}

const (
	frameWidth  = 320
	frameHeight = 200
)

func (s *EbitenSink) SetKeyHandler(fn KeyHandler) {
	s.mu.Lock()
	s.onKey = fn
	s.mu.Unlock()
}

func (s *EbitenSink) EnableClipboardPaste() {}

func (s *EbitenSink) Present(frame *[frameHeight][frameWidth]byte) error {
	RGBAFrame(frame, s.rgba)
	s.mu.Lock()
	s.frameCount++
	s.mu.Unlock()
	return nil
}

func (s *EbitenSink) Run() error { return nil }

func (s *EbitenSink) FrameCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameCount
}
