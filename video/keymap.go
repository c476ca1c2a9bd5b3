//go:build !headless

package video

import "github.com/hajimehoshi/ebiten/v2"

type matrixPos struct{ row, col int }

// keyMatrix maps host keys to the C64 keyboard matrix's (row, col)
// coordinates, standard hardware layout (spec.md §6).
var keyMatrix = map[ebiten.Key]matrixPos{
	ebiten.KeyDelete:       {0, 0},
	ebiten.KeyEnter:        {0, 1},
	ebiten.KeyArrowRight:   {0, 2},
	ebiten.KeyF7:           {0, 3},
	ebiten.KeyF1:           {0, 4},
	ebiten.KeyF3:           {0, 5},
	ebiten.KeyF5:           {0, 6},
	ebiten.KeyArrowDown:    {0, 7},
	ebiten.Key3:            {1, 0},
	ebiten.KeyW:            {1, 1},
	ebiten.KeyA:            {1, 2},
	ebiten.Key4:            {1, 3},
	ebiten.KeyZ:            {1, 4},
	ebiten.KeyS:            {1, 5},
	ebiten.KeyE:            {1, 6},
	ebiten.KeyShiftLeft:    {1, 7},
	ebiten.Key5:            {2, 0},
	ebiten.KeyR:            {2, 1},
	ebiten.KeyD:            {2, 2},
	ebiten.Key6:            {2, 3},
	ebiten.KeyC:            {2, 4},
	ebiten.KeyF:            {2, 5},
	ebiten.KeyT:            {2, 6},
	ebiten.KeyX:            {2, 7},
	ebiten.Key7:            {3, 0},
	ebiten.KeyY:            {3, 1},
	ebiten.KeyG:            {3, 2},
	ebiten.Key8:            {3, 3},
	ebiten.KeyB:            {3, 4},
	ebiten.KeyH:            {3, 5},
	ebiten.KeyU:            {3, 6},
	ebiten.KeyV:            {3, 7},
	ebiten.Key9:            {4, 0},
	ebiten.KeyI:            {4, 1},
	ebiten.KeyJ:            {4, 2},
	ebiten.Key0:            {4, 3},
	ebiten.KeyM:            {4, 4},
	ebiten.KeyK:            {4, 5},
	ebiten.KeyO:            {4, 6},
	ebiten.KeyN:            {4, 7},
	ebiten.KeyEqual:        {5, 0}, // +
	ebiten.KeyP:            {5, 1},
	ebiten.KeyL:            {5, 2},
	ebiten.KeyMinus:        {5, 3}, // -
	ebiten.KeyPeriod:       {5, 4},
	ebiten.KeySemicolon:    {5, 5}, // :
	ebiten.KeyQuote:        {5, 6}, // @
	ebiten.KeyComma:        {5, 7},
	ebiten.KeyBackslash:    {6, 0}, // GBP
	ebiten.KeyBackquote:    {6, 1}, // *
	ebiten.KeyApostrophe:   {6, 2}, // ;
	ebiten.KeyHome:         {6, 3},
	ebiten.KeyShiftRight:   {6, 4},
	ebiten.KeySlash:        {6, 6}, // / (^ shares hw key 6,5 on real keyboards, omitted)
	ebiten.KeyArrowUp:      {6, 7},
	ebiten.Key1:            {7, 0},
	ebiten.KeyBackspace:    {7, 1}, // <-
	ebiten.KeyControlLeft:  {7, 2},
	ebiten.Key2:            {7, 3},
	ebiten.KeySpace:        {7, 4},
	ebiten.KeyAltLeft:      {7, 5}, // Commodore key
	ebiten.KeyQ:            {7, 6},
	ebiten.KeyEscape:       {7, 7}, // RUN/STOP
}

// asciiKeyMatrix maps a printable PETSCII/ASCII byte to the (row, col) that
// types it, for clipboard-paste convenience. Only unshifted letters/digits
// and space are covered; anything else is dropped.
var asciiKeyMatrix = buildASCIIKeyMatrix()

func buildASCIIKeyMatrix() map[byte]matrixPos {
	m := make(map[byte]matrixPos)
	letterKeys := []ebiten.Key{
		ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE,
		ebiten.KeyF, ebiten.KeyG, ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ,
		ebiten.KeyK, ebiten.KeyL, ebiten.KeyM, ebiten.KeyN, ebiten.KeyO,
		ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR, ebiten.KeyS, ebiten.KeyT,
		ebiten.KeyU, ebiten.KeyV, ebiten.KeyW, ebiten.KeyX, ebiten.KeyY,
		ebiten.KeyZ,
	}
	for i, k := range letterKeys {
		if rc, ok := keyMatrix[k]; ok {
			m['a'+byte(i)] = rc
			m['A'+byte(i)] = rc
		}
	}
	digitKeys := []ebiten.Key{
		ebiten.Key0, ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
		ebiten.Key5, ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
	}
	for i, k := range digitKeys {
		if rc, ok := keyMatrix[k]; ok {
			m['0'+byte(i)] = rc
		}
	}
	if rc, ok := keyMatrix[ebiten.KeySpace]; ok {
		m[' '] = rc
	}
	return m
}
