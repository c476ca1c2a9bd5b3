// cia.go - MOS 6526 CIA: timers, keyboard matrix, joystick, IRQ/NMI

package c64

// CIA models one 6526 Complex Interface Adapter. CIA1 additionally owns the
// keyboard matrix and joystick 2 wiring on Port A; CIA2 is otherwise
// identical but routes its interrupt to NMI instead of IRQ (spec §4.4).
type CIA struct {
	irq InterruptReceiver
	is1 bool // true for CIA1, false for CIA2

	// Port A/B data and direction registers.
	pra, prb   byte
	ddra, ddrb byte

	// Keyboard matrix: matrix[row][col], 0 = pressed, matches spec's PETSCII-
	// row/col convention. Only meaningful on CIA1.
	matrix [8][8]byte

	joystick2 byte // active-low, bits 0-3 up/down/left/right, bit 4 fire

	timerALatch, timerACounter uint16
	timerBLatch, timerBCounter uint16
	timerAStarted, timerBStarted bool
	cra, crb byte

	tod [4]byte // TOD clock registers, not clocked: read-back of last write
	sdr byte

	mask byte // ICR write-side interrupt mask
	ifr  byte // pending interrupt flag bits (bit7 synthesized on read)
}

// NewCIA constructs a CIA with all matrix cells unpressed (1) and the
// joystick idle (all bits high, active-low).
func NewCIA(irq InterruptReceiver, isCIA1 bool) *CIA {
	c := &CIA{irq: irq, is1: isCIA1, joystick2: 0xFF}
	for r := range c.matrix {
		for k := range c.matrix[r] {
			c.matrix[r][k] = 1
		}
	}
	return c
}

// SetKey updates the keyboard matrix cell for (row, col): 0 when pressed,
// 1 when released. Only meaningful on CIA1.
func (c *CIA) SetKey(row, col int, pressed bool) {
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return
	}
	if pressed {
		c.matrix[row][col] = 0
	} else {
		c.matrix[row][col] = 1
	}
}

// SetJoystick2 sets the raw active-low joystick-2 byte sitting in parallel
// on Port A's low 5 bits (bits 0-3 directions, bit 4 fire).
func (c *CIA) SetJoystick2(state byte) { c.joystick2 = state }

func (c *CIA) Read(addr uint16) byte {
	switch addr & 0x0F {
	case 0x00: // PRA
		if !c.is1 {
			return c.pra
		}
		return c.readKeyboardPortA()
	case 0x01: // PRB
		return c.prb
	case 0x02:
		return c.ddra
	case 0x03:
		return c.ddrb
	case 0x04:
		return byte(c.timerACounter)
	case 0x05:
		return byte(c.timerACounter >> 8)
	case 0x06:
		return byte(c.timerBCounter)
	case 0x07:
		return byte(c.timerBCounter >> 8)
	case 0x08, 0x09, 0x0A, 0x0B:
		return c.tod[addr&0x0F-0x08]
	case 0x0C:
		return c.sdr
	case 0x0D: // ICR: atomic read-and-clear (spec §3, §8)
		val := c.ifr
		if c.ifr&c.mask != 0 {
			val |= 0x80
		}
		c.ifr = 0
		return val
	case 0x0E:
		return c.cra
	default:
		return c.crb
	}
}

// readKeyboardPortA computes the row byte for the columns currently
// selected in the Port A output latch, ANDs in the joystick state, then
// masks by DDRA so that output-direction bits reflect the latch instead of
// the matrix (spec §4.4).
func (c *CIA) readKeyboardPortA() byte {
	result := byte(0xFF)
	for col := 0; col < 8; col++ {
		if (c.pra>>uint(col))&1 != 0 {
			continue // column not selected (active low)
		}
		var rowBits byte = 0xFF
		for row := 0; row < 8; row++ {
			if c.matrix[row][col] == 0 {
				rowBits &^= 1 << uint(row)
			}
		}
		result &= rowBits
	}
	result &= c.joystick2
	return (result &^ c.ddra) | (c.pra & c.ddra)
}

func (c *CIA) Write(addr uint16, v byte) {
	switch addr & 0x0F {
	case 0x00:
		c.pra = v
	case 0x01:
		c.prb = v
	case 0x02:
		c.ddra = v
	case 0x03:
		c.ddrb = v
	case 0x04:
		c.timerALatch = (c.timerALatch &^ 0x00FF) | uint16(v)
	case 0x05:
		c.timerALatch = (c.timerALatch &^ 0xFF00) | uint16(v)<<8
		if !c.timerAStarted {
			c.timerACounter = c.timerALatch
		}
	case 0x06:
		c.timerBLatch = (c.timerBLatch &^ 0x00FF) | uint16(v)
	case 0x07:
		c.timerBLatch = (c.timerBLatch &^ 0xFF00) | uint16(v)<<8
		if !c.timerBStarted {
			c.timerBCounter = c.timerBLatch
		}
	case 0x08, 0x09, 0x0A, 0x0B:
		c.tod[addr&0x0F-0x08] = v
	case 0x0C:
		c.sdr = v
	case 0x0D: // ICR write: bit7 set ORs the mask, clear ANDs its complement
		if v&0x80 != 0 {
			c.mask |= v &^ 0x80
		} else {
			c.mask &^= v
		}
	case 0x0E:
		c.cra = v
		c.timerAStarted = v&0x01 != 0
	default:
		c.crb = v
		c.timerBStarted = v&0x01 != 0
	}
}

const (
	ciaCRStart    = 0x01
	ciaCROneShot  = 0x08
)

// Tick decrements each started timer by one and handles underflow: sets the
// matching ifr bit, optionally raises IRQ (CIA1) or NMI (CIA2), and reloads
// from the latch — stopping in one-shot mode, continuing otherwise.
func (c *CIA) Tick() {
	if c.timerAStarted {
		c.timerACounter--
		if c.timerACounter == 0xFFFF {
			c.underflow(0x01, c.cra)
		}
	}
	if c.timerBStarted {
		c.timerBCounter--
		if c.timerBCounter == 0xFFFF {
			c.underflow(0x02, c.crb)
		}
	}
}

func (c *CIA) underflow(flagBit byte, ctrl byte) {
	c.ifr |= flagBit
	if c.mask&flagBit != 0 {
		c.ifr |= 0x80
		if c.is1 {
			c.irq.IRQ()
		} else {
			c.irq.NMI()
		}
	}
	if flagBit == 0x01 {
		c.timerACounter = c.timerALatch
		if ctrl&ciaCROneShot != 0 {
			c.timerAStarted = false
		}
	} else {
		c.timerBCounter = c.timerBLatch
		if ctrl&ciaCROneShot != 0 {
			c.timerBStarted = false
		}
	}
}
