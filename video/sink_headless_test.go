//go:build headless

package video

import "testing"

func TestEbitenSink_Present_CountsFrames(t *testing.T) {
	sink, err := NewEbitenSink(2, "test")
	if err != nil {
		t.Fatalf("NewEbitenSink: %v", err)
	}

	var frame [frameHeight][frameWidth]byte
	frame[0][0] = 6
	if err := sink.Present(&frame); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if got := sink.FrameCount(); got != 1 {
		t.Fatalf("FrameCount = %d, want 1", got)
	}
}

func TestEbitenSink_SetKeyHandler_ReceivesEvents(t *testing.T) {
	sink, _ := NewEbitenSink(1, "test")
	var gotRow, gotCol int
	var gotPressed bool
	sink.SetKeyHandler(func(row, col int, pressed bool) {
		gotRow, gotCol, gotPressed = row, col, pressed
	})
	sink.onKey(1, 2, true)
	if gotRow != 1 || gotCol != 2 || !gotPressed {
		t.Fatalf("handler did not receive the forwarded event")
	}
}
