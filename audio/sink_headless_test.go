//go:build headless

package audio

import "testing"

func TestOtoSink_Write_CountsSamples(t *testing.T) {
	sink, err := NewOtoSink(44100)
	if err != nil {
		t.Fatalf("NewOtoSink: %v", err)
	}
	if err := sink.Write(make([]int16, 735)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Write(make([]int16, 735)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := sink.TotalSamples(); got != 1470 {
		t.Fatalf("TotalSamples = %d, want 1470", got)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
