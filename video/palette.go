// Package video adapts the VIC-II's indexed frame buffer to a host window.
package video

// Pepto is the commonly used "Pepto" RGB palette for the 16 C64 color
// codes, in hardware color-code order (spec.md §6: "Screen surface: 320x200
// indexed into a fixed 16-entry palette (the 'Pepto' palette ... same order
// as the C64 color codes)").
var Pepto = [16][3]byte{
	{0x00, 0x00, 0x00}, // 0 black
	{0xFF, 0xFF, 0xFF}, // 1 white
	{0x68, 0x37, 0x2B}, // 2 red
	{0x70, 0xA4, 0xB2}, // 3 cyan
	{0x6F, 0x3D, 0x86}, // 4 purple
	{0x58, 0x8D, 0x43}, // 5 green
	{0x35, 0x28, 0x79}, // 6 blue
	{0xB8, 0xC7, 0x6F}, // 7 yellow
	{0x6F, 0x4F, 0x25}, // 8 orange
	{0x43, 0x39, 0x00}, // 9 brown
	{0x9A, 0x67, 0x59}, // 10 light red
	{0x44, 0x44, 0x44}, // 11 dark grey
	{0x6C, 0x6C, 0x6C}, // 12 grey
	{0x9A, 0xD2, 0x84}, // 13 light green
	{0x6C, 0x5E, 0xB5}, // 14 light blue
	{0x95, 0x95, 0x95}, // 15 light grey
}

// RGBAFrame expands a 320x200 byte-indexed VIC-II frame into a tightly
// packed RGBA buffer, the pixel format EbitenSink uploads to its image.
func RGBAFrame(frame *[200][320]byte, dst []byte) {
	for y := 0; y < 200; y++ {
		row := &frame[y]
		base := y * 320 * 4
		for x := 0; x < 320; x++ {
			c := Pepto[row[x]&0x0F]
			o := base + x*4
			dst[o] = c[0]
			dst[o+1] = c[1]
			dst[o+2] = c[2]
			dst[o+3] = 0xFF
		}
	}
}
