package c64

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVICII_RasterCompare_RaisesIRQWhenUnmasked(t *testing.T) {
	rec := &recordingIRQ{}
	bus := NewBus(rec)
	bus.VIC.Write(0x1A, 0x01) // unmask raster IRQ
	bus.VIC.Write(0x12, 0x01) // raster compare = 1 (reached after the first line wrap)

	for i := 0; i < vicCyclesPerLine*2; i++ {
		bus.VIC.Tick()
	}
	assert.GreaterOrEqual(t, rec.irqs, 1)
}

func TestVICII_CollisionLatch_ClearsOnRead(t *testing.T) {
	rec := &recordingIRQ{}
	bus := NewBus(rec)
	bus.VIC.sprSprColl = 0x03

	first := bus.VIC.Read(0x1E)
	assert.Equal(t, byte(0x03), first)
	second := bus.VIC.Read(0x1E)
	assert.Zero(t, second, "collision latch clears itself on read")
}

func TestVICII_SpriteSpriteCollision_SetsBothBitsAndRaisesIRQ(t *testing.T) {
	rec := &recordingIRQ{}
	bus := NewBus(rec)
	bus.VIC.Write(0x1A, 0x04) // unmask sprite-sprite IRQ

	bus.VIC.Write(0x15, 0x03) // enable sprites 0 and 1
	bus.VIC.Write(0x00, 50)   // sprite 0 X
	bus.VIC.Write(0x01, 100)  // sprite 0 Y
	bus.VIC.Write(0x02, 52)   // sprite 1 X, overlapping column
	bus.VIC.Write(0x03, 100)  // sprite 1 Y
	bus.ram[0] = 0xFF // sprite pointer (ram[$07F8/$07F9]) defaults to 0 for both -> shared data at $0000..; all 8 pixels of byte 0 lit

	bus.VIC.renderSpritesOnScanline(100)

	assert.NotZero(t, bus.VIC.sprSprColl&0x01)
	assert.NotZero(t, bus.VIC.sprSprColl&0x02)
	assert.Equal(t, 1, rec.irqs)
}

func TestVICII_IsBadline_DisplayEnabledAndRasterInWindow(t *testing.T) {
	bus := NewBus(&recordingIRQ{})
	bus.VIC.Write(0x11, 0x1B) // display enabled, vscroll = 3
	bus.VIC.rasterLine = 51   // 51 & 7 == 3
	assert.True(t, bus.VIC.IsBadline())

	bus.VIC.rasterLine = 52 // 52 & 7 == 4, != vscroll
	assert.False(t, bus.VIC.IsBadline())
}

func TestVICII_IsBadline_EnabledSpriteYMatch(t *testing.T) {
	bus := NewBus(&recordingIRQ{})
	bus.VIC.Write(0x11, 0x08) // display disabled, but sprite Y match still forces a badline
	bus.VIC.Write(0x15, 0x01)
	bus.VIC.Write(0x01, 10)
	bus.VIC.rasterLine = 10
	assert.True(t, bus.VIC.IsBadline())
}

func TestVICII_IRQFlag_TopBitReflectsMaskedPending(t *testing.T) {
	bus := NewBus(&recordingIRQ{})
	bus.VIC.irqFlags = irqRaster
	bus.VIC.Write(0x1A, 0x00) // mask everything off

	val := bus.VIC.Read(0x19)
	assert.Zero(t, val&0x80, "top bit clear when no enabled source is pending")

	bus.VIC.irqFlags = irqRaster
	bus.VIC.Write(0x1A, irqRaster)
	val = bus.VIC.Read(0x19)
	assert.NotZero(t, val&0x80)
}

func TestVICII_TextMode_RendersForegroundFromColorRAM(t *testing.T) {
	bus := NewBus(&recordingIRQ{})
	bus.VIC.Write(0x18, 0x15) // screen at $0400, char rom

	bus.ram[0x0400] = 0x01 // character code 1
	bus.colorRAM[0] = 0x0E // light blue
	bus.charROM[0x01*8] = 0xFF // all 8 bits set on the top row

	bus.VIC.renderPixel(4, 0) // x=4 lands on sx=0 given the default hscroll of 0
	assert.Equal(t, byte(0x0E), bus.VIC.Frame[0][4])
}
