package c64

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type nullIRQ struct{}

func (nullIRQ) IRQ() {}
func (nullIRQ) NMI() {}

func TestBus_DefaultBanking_ROMsVisible(t *testing.T) {
	bus := NewBus(nullIRQ{})
	bus.LoadBasicROM([]byte{0xAA})
	bus.LoadKernalROM([]byte{0xBB})
	assert.Equal(t, byte(0xAA), bus.Read(0xA000))
	assert.Equal(t, byte(0xBB), bus.Read(0xE000))
}

func TestBus_ProcessorPort_SwitchesBASICOutForRAM(t *testing.T) {
	bus := NewBus(nullIRQ{})
	bus.LoadBasicROM([]byte{0xAA})
	bus.Write(0xA000, 0x11) // dropped: BASIC ROM window is read-only while mapped
	assert.Equal(t, byte(0xAA), bus.Read(0xA000))

	bus.Write(0x0001, 0x00) // clear LORAM/HIRAM/CHAREN: map RAM everywhere
	bus.Write(0xA000, 0x11)
	assert.Equal(t, byte(0x11), bus.Read(0xA000), "with LORAM cleared, $A000 is plain RAM")
}

func TestBus_IOWindow_DispatchesToVICAndCIA(t *testing.T) {
	bus := NewBus(nullIRQ{})
	bus.Write(0xD020, 0x05) // VIC border color register
	assert.Equal(t, byte(0x05)&0x0F, bus.Read(0xD020)&0x0F)

	bus.Write(0xDC0D, 0x81) // CIA1 ICR: enable timer A interrupt
	_ = bus.Read(0xDC0D)    // read-clear; just confirm it doesn't panic
}

func TestBus_CHARENLow_MapsCharROMInsteadOfIO(t *testing.T) {
	bus := NewBus(nullIRQ{})
	bus.LoadCharROM(make([]byte, charROMSize))
	bus.charROM[0] = 0x7E
	bus.Write(0x0001, portLORAM|portHIRAM) // CHAREN low
	assert.Equal(t, byte(0x7E), bus.Read(0xD000))
}

func TestBus_ColorRAM_MasksToLowNibble(t *testing.T) {
	bus := NewBus(nullIRQ{})
	bus.Write(0xD800, 0xFF)
	assert.Equal(t, byte(0x0F), bus.Read(0xD800))
}

func TestBus_DirtySet_TracksRAMWrites(t *testing.T) {
	bus := NewBus(nullIRQ{})
	bus.Write(0x0001, 0x00) // map RAM everywhere; $1000 is plain RAM under any port value
	bus.Write(0x1000, 0x99)
	_, ok := bus.dirty[0x1000]
	assert.True(t, ok)
}
