//go:build !headless

// sink_ebiten.go - ebiten window sink for the VIC-II frame buffer.

package video

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
)

const (
	frameWidth  = 320
	frameHeight = 200
)

// KeyHandler receives C64 keyboard-matrix (row, col) coordinates translated
// from host key events, matching spec.md §6's "mapping table translates
// each into (row, col) matrix coordinates".
type KeyHandler func(row, col int, pressed bool)

// EbitenSink opens a real window and renders the VIC-II's 320x200 indexed
// frame upscaled through the Pepto palette, forwarding key events into a
// KeyHandler (normally CIA1's SetKey). It implements c64.FrameSink.
type EbitenSink struct {
	mu     sync.RWMutex
	img    *ebiten.Image
	rgba   []byte
	scale  int
	onKey  KeyHandler
	paste  bool
	cbOnce sync.Once
	cbOK   bool

	started bool
}

// NewEbitenSink opens an upscaled ebiten window. scale must be >= 1.
func NewEbitenSink(scale int, title string) (*EbitenSink, error) {
	if scale < 1 {
		scale = 2
	}
	s := &EbitenSink{
		img:   ebiten.NewImage(frameWidth, frameHeight),
		rgba:  make([]byte, frameWidth*frameHeight*4),
		scale: scale,
	}
	ebiten.SetWindowSize(frameWidth*scale, frameHeight*scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	return s, nil
}

// SetKeyHandler installs the callback that receives matrix (row, col)
// events translated from host key presses/releases.
func (s *EbitenSink) SetKeyHandler(fn KeyHandler) {
	s.mu.Lock()
	s.onKey = fn
	s.mu.Unlock()
}

// EnableClipboardPaste enables Ctrl+Shift+V to type clipboard text through
// the same matrix path as physical keys (adapted from the teacher's
// handleClipboardPaste).
func (s *EbitenSink) EnableClipboardPaste() { s.paste = true }

// Present implements c64.FrameSink: expand the indexed frame to RGBA and
// hand it to the ebiten image for the next Draw call.
func (s *EbitenSink) Present(frame *[frameHeight][frameWidth]byte) error {
	RGBAFrame(frame, s.rgba)
	s.mu.Lock()
	s.img.WritePixels(s.rgba)
	s.mu.Unlock()
	return nil
}

// Run blocks in ebiten's game loop until the window is closed. Call it from
// the host's main goroutine; RunFrame drives the machine from elsewhere.
func (s *EbitenSink) Run() error {
	s.started = true
	return ebiten.RunGame(s)
}

func (s *EbitenSink) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	s.handleKeys()
	return nil
}

func (s *EbitenSink) Draw(screen *ebiten.Image) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(s.scale), float64(s.scale))
	screen.DrawImage(s.img, op)
}

func (s *EbitenSink) Layout(_, _ int) (int, int) {
	return frameWidth * s.scale, frameHeight * s.scale
}

func (s *EbitenSink) handleKeys() {
	s.mu.RLock()
	handler := s.onKey
	s.mu.RUnlock()
	if handler == nil {
		return
	}

	for key, rc := range keyMatrix {
		if inpututil.IsKeyJustPressed(key) {
			handler(rc.row, rc.col, true)
		}
		if inpututil.IsKeyJustReleased(key) {
			handler(rc.row, rc.col, false)
		}
	}

	if s.paste {
		ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
		shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
		if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
			s.handleClipboardPaste(handler)
		}
	}
}

// handleClipboardPaste reads clipboard text and types it through the
// matrix path one PETSCII byte at a time, each byte held for one Update
// tick rather than latched with the real key state.
func (s *EbitenSink) handleClipboardPaste(handler KeyHandler) {
	s.cbOnce.Do(func() { s.cbOK = clipboard.Init() == nil })
	if !s.cbOK {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	for _, b := range data {
		if rc, ok := asciiKeyMatrix[b]; ok {
			handler(rc.row, rc.col, true)
			handler(rc.row, rc.col, false)
		}
	}
}
