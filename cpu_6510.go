// cpu_6510.go - MOS 6510: NMOS 6502 instruction set, interrupts, KERNAL traps

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package c64

import "log"

const (
	flagC byte = 0x01
	flagZ byte = 0x02
	flagI byte = 0x04
	flagD byte = 0x08
	flagB byte = 0x10
	flagU byte = 0x20
	flagV byte = 0x40
	flagN byte = 0x80
)

const (
	vectorNMI   = 0xFFFA
	vectorReset = 0xFFFC
	vectorIRQ   = 0xFFFE

	kernalLoadTrap = 0xFFD5
	kernalSaveTrap = 0xFFD8
)

type addrMode int

const (
	modeImplied addrMode = iota
	modeAccumulator
	modeImmediate
	modeZeroPage
	modeZeroPageX
	modeZeroPageY
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirect
	modeIndirectX
	modeIndirectY
	modeRelative
)

type opInfo struct {
	name   string
	mode   addrMode
	length byte
	cycles byte
}

// opcodes is the static 256-entry decode table from spec §4.1: documented
// NMOS 6502 instructions plus SLO, RLA, SAX, LAX, DCP and the undocumented
// NOPs in all six required encodings. Entries left zero-valued trigger
// UnknownOpcodeError.
var opcodes [256]opInfo

func op(code byte, name string, mode addrMode, length, cycles byte) {
	opcodes[code] = opInfo{name: name, mode: mode, length: length, cycles: cycles}
}

func init() {
	op(0x69, "ADC", modeImmediate, 2, 2)
	op(0x65, "ADC", modeZeroPage, 2, 3)
	op(0x75, "ADC", modeZeroPageX, 2, 4)
	op(0x6D, "ADC", modeAbsolute, 3, 4)
	op(0x7D, "ADC", modeAbsoluteX, 3, 4)
	op(0x79, "ADC", modeAbsoluteY, 3, 4)
	op(0x61, "ADC", modeIndirectX, 2, 6)
	op(0x71, "ADC", modeIndirectY, 2, 5)

	op(0x29, "AND", modeImmediate, 2, 2)
	op(0x25, "AND", modeZeroPage, 2, 3)
	op(0x35, "AND", modeZeroPageX, 2, 4)
	op(0x2D, "AND", modeAbsolute, 3, 4)
	op(0x3D, "AND", modeAbsoluteX, 3, 4)
	op(0x39, "AND", modeAbsoluteY, 3, 4)
	op(0x21, "AND", modeIndirectX, 2, 6)
	op(0x31, "AND", modeIndirectY, 2, 5)

	op(0x0A, "ASL", modeAccumulator, 1, 2)
	op(0x06, "ASL", modeZeroPage, 2, 5)
	op(0x16, "ASL", modeZeroPageX, 2, 6)
	op(0x0E, "ASL", modeAbsolute, 3, 6)
	op(0x1E, "ASL", modeAbsoluteX, 3, 7)

	op(0x90, "BCC", modeRelative, 2, 2)
	op(0xB0, "BCS", modeRelative, 2, 2)
	op(0xF0, "BEQ", modeRelative, 2, 2)
	op(0x30, "BMI", modeRelative, 2, 2)
	op(0xD0, "BNE", modeRelative, 2, 2)
	op(0x10, "BPL", modeRelative, 2, 2)
	op(0x50, "BVC", modeRelative, 2, 2)
	op(0x70, "BVS", modeRelative, 2, 2)

	op(0x24, "BIT", modeZeroPage, 2, 3)
	op(0x2C, "BIT", modeAbsolute, 3, 4)

	op(0x00, "BRK", modeImplied, 1, 7)

	op(0x18, "CLC", modeImplied, 1, 2)
	op(0xD8, "CLD", modeImplied, 1, 2)
	op(0x58, "CLI", modeImplied, 1, 2)
	op(0xB8, "CLV", modeImplied, 1, 2)
	op(0x38, "SEC", modeImplied, 1, 2)
	op(0xF8, "SED", modeImplied, 1, 2)
	op(0x78, "SEI", modeImplied, 1, 2)

	op(0xC9, "CMP", modeImmediate, 2, 2)
	op(0xC5, "CMP", modeZeroPage, 2, 3)
	op(0xD5, "CMP", modeZeroPageX, 2, 4)
	op(0xCD, "CMP", modeAbsolute, 3, 4)
	op(0xDD, "CMP", modeAbsoluteX, 3, 4)
	op(0xD9, "CMP", modeAbsoluteY, 3, 4)
	op(0xC1, "CMP", modeIndirectX, 2, 6)
	op(0xD1, "CMP", modeIndirectY, 2, 5)

	op(0xE0, "CPX", modeImmediate, 2, 2)
	op(0xE4, "CPX", modeZeroPage, 2, 3)
	op(0xEC, "CPX", modeAbsolute, 3, 4)
	op(0xC0, "CPY", modeImmediate, 2, 2)
	op(0xC4, "CPY", modeZeroPage, 2, 3)
	op(0xCC, "CPY", modeAbsolute, 3, 4)

	op(0xC6, "DEC", modeZeroPage, 2, 5)
	op(0xD6, "DEC", modeZeroPageX, 2, 6)
	op(0xCE, "DEC", modeAbsolute, 3, 6)
	op(0xDE, "DEC", modeAbsoluteX, 3, 7)
	op(0xCA, "DEX", modeImplied, 1, 2)
	op(0x88, "DEY", modeImplied, 1, 2)
	op(0xE8, "INX", modeImplied, 1, 2)
	op(0xC8, "INY", modeImplied, 1, 2)
	op(0xE6, "INC", modeZeroPage, 2, 5)
	op(0xF6, "INC", modeZeroPageX, 2, 6)
	op(0xEE, "INC", modeAbsolute, 3, 6)
	op(0xFE, "INC", modeAbsoluteX, 3, 7)

	op(0x49, "EOR", modeImmediate, 2, 2)
	op(0x45, "EOR", modeZeroPage, 2, 3)
	op(0x55, "EOR", modeZeroPageX, 2, 4)
	op(0x4D, "EOR", modeAbsolute, 3, 4)
	op(0x5D, "EOR", modeAbsoluteX, 3, 4)
	op(0x59, "EOR", modeAbsoluteY, 3, 4)
	op(0x41, "EOR", modeIndirectX, 2, 6)
	op(0x51, "EOR", modeIndirectY, 2, 5)

	op(0x4C, "JMP", modeAbsolute, 3, 3)
	op(0x6C, "JMP", modeIndirect, 3, 5)
	op(0x20, "JSR", modeAbsolute, 3, 6)
	op(0x40, "RTI", modeImplied, 1, 6)
	op(0x60, "RTS", modeImplied, 1, 6)

	op(0xA9, "LDA", modeImmediate, 2, 2)
	op(0xA5, "LDA", modeZeroPage, 2, 3)
	op(0xB5, "LDA", modeZeroPageX, 2, 4)
	op(0xAD, "LDA", modeAbsolute, 3, 4)
	op(0xBD, "LDA", modeAbsoluteX, 3, 4)
	op(0xB9, "LDA", modeAbsoluteY, 3, 4)
	op(0xA1, "LDA", modeIndirectX, 2, 6)
	op(0xB1, "LDA", modeIndirectY, 2, 5)

	op(0xA2, "LDX", modeImmediate, 2, 2)
	op(0xA6, "LDX", modeZeroPage, 2, 3)
	op(0xB6, "LDX", modeZeroPageY, 2, 4)
	op(0xAE, "LDX", modeAbsolute, 3, 4)
	op(0xBE, "LDX", modeAbsoluteY, 3, 4)

	op(0xA0, "LDY", modeImmediate, 2, 2)
	op(0xA4, "LDY", modeZeroPage, 2, 3)
	op(0xB4, "LDY", modeZeroPageX, 2, 4)
	op(0xAC, "LDY", modeAbsolute, 3, 4)
	op(0xBC, "LDY", modeAbsoluteX, 3, 4)

	op(0x4A, "LSR", modeAccumulator, 1, 2)
	op(0x46, "LSR", modeZeroPage, 2, 5)
	op(0x56, "LSR", modeZeroPageX, 2, 6)
	op(0x4E, "LSR", modeAbsolute, 3, 6)
	op(0x5E, "LSR", modeAbsoluteX, 3, 7)

	op(0xEA, "NOP", modeImplied, 1, 2)

	op(0x09, "ORA", modeImmediate, 2, 2)
	op(0x05, "ORA", modeZeroPage, 2, 3)
	op(0x15, "ORA", modeZeroPageX, 2, 4)
	op(0x0D, "ORA", modeAbsolute, 3, 4)
	op(0x1D, "ORA", modeAbsoluteX, 3, 4)
	op(0x19, "ORA", modeAbsoluteY, 3, 4)
	op(0x01, "ORA", modeIndirectX, 2, 6)
	op(0x11, "ORA", modeIndirectY, 2, 5)

	op(0x48, "PHA", modeImplied, 1, 3)
	op(0x08, "PHP", modeImplied, 1, 3)
	op(0x68, "PLA", modeImplied, 1, 4)
	op(0x28, "PLP", modeImplied, 1, 4)

	op(0x2A, "ROL", modeAccumulator, 1, 2)
	op(0x26, "ROL", modeZeroPage, 2, 5)
	op(0x36, "ROL", modeZeroPageX, 2, 6)
	op(0x2E, "ROL", modeAbsolute, 3, 6)
	op(0x3E, "ROL", modeAbsoluteX, 3, 7)
	op(0x6A, "ROR", modeAccumulator, 1, 2)
	op(0x66, "ROR", modeZeroPage, 2, 5)
	op(0x76, "ROR", modeZeroPageX, 2, 6)
	op(0x6E, "ROR", modeAbsolute, 3, 6)
	op(0x7E, "ROR", modeAbsoluteX, 3, 7)

	op(0xE9, "SBC", modeImmediate, 2, 2)
	op(0xE5, "SBC", modeZeroPage, 2, 3)
	op(0xF5, "SBC", modeZeroPageX, 2, 4)
	op(0xED, "SBC", modeAbsolute, 3, 4)
	op(0xFD, "SBC", modeAbsoluteX, 3, 4)
	op(0xF9, "SBC", modeAbsoluteY, 3, 4)
	op(0xE1, "SBC", modeIndirectX, 2, 6)
	op(0xF1, "SBC", modeIndirectY, 2, 5)

	op(0x85, "STA", modeZeroPage, 2, 3)
	op(0x95, "STA", modeZeroPageX, 2, 4)
	op(0x8D, "STA", modeAbsolute, 3, 4)
	op(0x9D, "STA", modeAbsoluteX, 3, 5)
	op(0x99, "STA", modeAbsoluteY, 3, 5)
	op(0x81, "STA", modeIndirectX, 2, 6)
	op(0x91, "STA", modeIndirectY, 2, 6)
	op(0x86, "STX", modeZeroPage, 2, 3)
	op(0x96, "STX", modeZeroPageY, 2, 4)
	op(0x8E, "STX", modeAbsolute, 3, 4)
	op(0x84, "STY", modeZeroPage, 2, 3)
	op(0x94, "STY", modeZeroPageX, 2, 4)
	op(0x8C, "STY", modeAbsolute, 3, 4)

	op(0xAA, "TAX", modeImplied, 1, 2)
	op(0xA8, "TAY", modeImplied, 1, 2)
	op(0xBA, "TSX", modeImplied, 1, 2)
	op(0x8A, "TXA", modeImplied, 1, 2)
	op(0x9A, "TXS", modeImplied, 1, 2)
	op(0x98, "TYA", modeImplied, 1, 2)

	// Undocumented opcodes required by spec §4.1.
	op(0x07, "SLO", modeZeroPage, 2, 5)
	op(0x17, "SLO", modeZeroPageX, 2, 6)
	op(0x0F, "SLO", modeAbsolute, 3, 6)
	op(0x1F, "SLO", modeAbsoluteX, 3, 7)
	op(0x1B, "SLO", modeAbsoluteY, 3, 7)
	op(0x03, "SLO", modeIndirectX, 2, 8)
	op(0x13, "SLO", modeIndirectY, 2, 8)

	op(0x27, "RLA", modeZeroPage, 2, 5)
	op(0x37, "RLA", modeZeroPageX, 2, 6)
	op(0x2F, "RLA", modeAbsolute, 3, 6)
	op(0x3F, "RLA", modeAbsoluteX, 3, 7)
	op(0x3B, "RLA", modeAbsoluteY, 3, 7)
	op(0x23, "RLA", modeIndirectX, 2, 8)
	op(0x33, "RLA", modeIndirectY, 2, 8)

	op(0x87, "SAX", modeZeroPage, 2, 3)
	op(0x97, "SAX", modeZeroPageY, 2, 4)
	op(0x8F, "SAX", modeAbsolute, 3, 4)
	op(0x83, "SAX", modeIndirectX, 2, 6)

	op(0xA7, "LAX", modeZeroPage, 2, 3)
	op(0xB7, "LAX", modeZeroPageY, 2, 4)
	op(0xAF, "LAX", modeAbsolute, 3, 4)
	op(0xBF, "LAX", modeAbsoluteY, 3, 4)
	op(0xA3, "LAX", modeIndirectX, 2, 6)
	op(0xB3, "LAX", modeIndirectY, 2, 5)

	op(0xC7, "DCP", modeZeroPage, 2, 5)
	op(0xD7, "DCP", modeZeroPageX, 2, 6)
	op(0xCF, "DCP", modeAbsolute, 3, 6)
	op(0xDF, "DCP", modeAbsoluteX, 3, 7)
	op(0xDB, "DCP", modeAbsoluteY, 3, 7)
	op(0xC3, "DCP", modeIndirectX, 2, 8)
	op(0xD3, "DCP", modeIndirectY, 2, 8)

	// Undocumented NOPs, every required length/addressing combination.
	for _, code := range []byte{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		op(code, "NOP", modeImplied, 1, 2)
	}
	for _, code := range []byte{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		op(code, "NOP", modeImmediate, 2, 2)
	}
	for _, code := range []byte{0x04, 0x44, 0x64} {
		op(code, "NOP", modeZeroPage, 2, 3)
	}
	for _, code := range []byte{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		op(code, "NOP", modeZeroPageX, 2, 4)
	}
	op(0x0C, "NOP", modeAbsolute, 3, 4)
	for _, code := range []byte{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		op(code, "NOP", modeAbsoluteX, 3, 4)
	}
}

// CPU is the 6510: state exactly as enumerated in spec §3. It holds a
// non-owning back-reference to the Bus, set once by AttachBus after both
// have been constructed (spec §9's cyclic-ownership note).
type CPU struct {
	A, X, Y byte
	PC      uint16
	SP      byte
	flags   byte

	cyclesRemaining int
	totalCycles     uint64
	stolenCycles    int

	irqPending bool
	nmiPending bool

	breakpoints map[uint16]struct{}
	trace       bool

	// preFetchHook and decodeHook are the debugger integration points named
	// in spec §9: the interactive shell is out of scope, but a host can
	// observe every fetch and every decoded instruction through these.
	preFetchHook func(pc uint16)
	decodeHook   func(pc uint16, opcode byte, mnemonic string)

	bus *Bus
}

func NewCPU() *CPU {
	return &CPU{breakpoints: make(map[uint16]struct{})}
}

// AttachBus wires the CPU to its Bus and performs a hardware reset.
func (c *CPU) AttachBus(b *Bus) {
	c.bus = b
	c.Reset()
}

// Reset reloads PC from the reset vector and sets the documented post-reset
// register state: SP = $FD, I set, U always set.
func (c *CPU) Reset() {
	c.SP = 0xFD
	c.flags = flagU | flagI
	c.PC = c.readWord(vectorReset)
	c.cyclesRemaining = 0
	c.stolenCycles = 0
	c.totalCycles = 0
}

// IRQ and NMI implement InterruptReceiver: peripherals set a pending flag,
// observed synchronously on the CPU's own next pre-fetch gate (spec §5).
func (c *CPU) IRQ() { c.irqPending = true }
func (c *CPU) NMI() { c.nmiPending = true }

func (c *CPU) getFlag(mask byte) bool { return c.flags&mask != 0 }

func (c *CPU) setFlag(mask byte, on bool) {
	if on {
		c.flags |= mask
	} else {
		c.flags &^= mask
	}
}

func (c *CPU) setNZ(v byte) {
	c.setFlag(flagZ, v == 0)
	c.setFlag(flagN, v&0x80 != 0)
}

func (c *CPU) push(v byte) {
	c.bus.Write(0x0100+uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pull() byte {
	c.SP++
	return c.bus.Read(0x0100 + uint16(c.SP))
}

func (c *CPU) fetchByte() byte {
	v := c.bus.Read(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetchWord() uint16 {
	lo := c.fetchByte()
	hi := c.fetchByte()
	return uint16(lo) | uint16(hi)<<8
}

func (c *CPU) readWord(addr uint16) uint16 {
	lo := c.bus.Read(addr)
	hi := c.bus.Read(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// readWordZP wraps within zero page: the high byte comes from (zp+1)&0xFF.
func (c *CPU) readWordZP(zp byte) uint16 {
	lo := c.bus.Read(uint16(zp))
	hi := c.bus.Read(uint16(zp + 1))
	return uint16(lo) | uint16(hi)<<8
}

// readWordIndirectBug replicates the 6502's JMP ($xxFF) page-wrap bug: when
// the pointer's low byte is $FF, the high byte is fetched from the start of
// the same page instead of the next one (spec §4.1, implementation choice:
// replicate the bug).
func (c *CPU) readWordIndirectBug(ptr uint16) uint16 {
	lo := c.bus.Read(ptr)
	var hiAddr uint16
	if ptr&0x00FF == 0x00FF {
		hiAddr = ptr &^ 0x00FF
	} else {
		hiAddr = ptr + 1
	}
	hi := c.bus.Read(hiAddr)
	return uint16(lo) | uint16(hi)<<8
}

// resolveAddress computes the effective address for every mode except
// Immediate and Accumulator, which callers special-case. pageCrossed is
// only meaningful for AbsoluteX, AbsoluteY and IndirectY.
func (c *CPU) resolveAddress(mode addrMode) (addr uint16, pageCrossed bool) {
	switch mode {
	case modeZeroPage:
		addr = uint16(c.fetchByte())
	case modeZeroPageX:
		addr = uint16(c.fetchByte() + c.X)
	case modeZeroPageY:
		addr = uint16(c.fetchByte() + c.Y)
	case modeAbsolute:
		addr = c.fetchWord()
	case modeAbsoluteX:
		base := c.fetchWord()
		addr = base + uint16(c.X)
		pageCrossed = base&0xFF00 != addr&0xFF00
	case modeAbsoluteY:
		base := c.fetchWord()
		addr = base + uint16(c.Y)
		pageCrossed = base&0xFF00 != addr&0xFF00
	case modeIndirect:
		ptr := c.fetchWord()
		addr = c.readWordIndirectBug(ptr)
	case modeIndirectX:
		zp := c.fetchByte() + c.X
		addr = c.readWordZP(zp)
	case modeIndirectY:
		zp := c.fetchByte()
		base := c.readWordZP(zp)
		addr = base + uint16(c.Y)
		pageCrossed = base&0xFF00 != addr&0xFF00
	case modeRelative:
		offset := int8(c.fetchByte())
		addr = uint16(int32(c.PC) + int32(offset))
	}
	return addr, pageCrossed
}

// readOperand returns a read-only operand's value, handling Immediate and
// Accumulator inline since neither has a bus address.
func (c *CPU) readOperand(mode addrMode) (value byte, pageCrossed bool) {
	switch mode {
	case modeImmediate:
		return c.fetchByte(), false
	case modeAccumulator:
		return c.A, false
	default:
		addr, pc := c.resolveAddress(mode)
		return c.bus.Read(addr), pc
	}
}

// Step advances the machine by exactly one CPU clock cycle, implementing
// the ordering contract from spec §5: VIC-II tick, badline accounting, both
// CIA ticks, NMI check, IRQ check, KERNAL trap check, instruction progress.
func (c *CPU) Step() {
	c.bus.VIC.Tick()
	if c.bus.VIC.cycle == 0 && c.bus.VIC.IsBadline() {
		c.stolenCycles += 40
	}
	c.bus.CIA1.Tick()
	c.bus.CIA2.Tick()

	if c.stolenCycles > 0 {
		c.stolenCycles--
		c.totalCycles++
		return
	}

	if c.cyclesRemaining > 0 {
		c.cyclesRemaining--
		c.totalCycles++
		return
	}

	if c.nmiPending {
		c.serviceInterrupt(vectorNMI, false)
		c.nmiPending = false
		c.totalCycles++
		return
	}
	if c.irqPending && !c.getFlag(flagI) {
		c.serviceInterrupt(vectorIRQ, false)
		c.totalCycles++
		return
	}

	if c.checkTrap() {
		c.totalCycles++
		return
	}

	c.executeNext()
	c.totalCycles++
}

// serviceInterrupt pushes PC and status (B cleared for hardware interrupts,
// set only by BRK) and loads PC from the given vector. cyclesRemaining is
// set to 6 since this call already consumes the current cycle.
func (c *CPU) serviceInterrupt(vector uint16, brk bool) {
	c.push(byte(c.PC >> 8))
	c.push(byte(c.PC))
	status := c.flags | flagU
	if brk {
		status |= flagB
	} else {
		status &^= flagB
	}
	c.push(status)
	c.setFlag(flagI, true)
	c.PC = c.readWord(vector)
	c.cyclesRemaining = 6
}

// checkTrap implements the KERNAL LOAD/SAVE traps from spec §4.5: if no
// disk is attached, execution falls through to the ROM routine untouched.
func (c *CPU) checkTrap() bool {
	if !c.bus.Disk.Attached() {
		return false
	}
	switch c.PC {
	case kernalLoadTrap:
		c.doLoadTrap()
		return true
	case kernalSaveTrap:
		c.doSaveTrap()
		return true
	}
	return false
}

func (c *CPU) trapFilename() string {
	length := c.bus.Read(0x00B8)
	ptr := uint16(c.bus.Read(0x00BB)) | uint16(c.bus.Read(0x00BC))<<8
	raw := make([]byte, length)
	for i := range raw {
		raw[i] = c.bus.Read(ptr + uint16(i))
	}
	return petToASCII(raw)
}

func (c *CPU) doLoadTrap() {
	name := c.trapFilename()
	data, ok := c.bus.Disk.Load(name)
	if !ok || len(data) < 2 {
		c.setFlag(flagC, true)
		c.returnFromTrap()
		return
	}
	addr := uint16(data[0]) | uint16(data[1])<<8
	for i, v := range data[2:] {
		c.bus.Write(addr+uint16(i), v)
	}
	c.setFlag(flagC, false)
	c.returnFromTrap()
}

func (c *CPU) doSaveTrap() {
	name := c.trapFilename()
	start := uint16(c.bus.Read(0x002B)) | uint16(c.bus.Read(0x002C))<<8
	end := uint16(c.bus.Read(0x002D)) | uint16(c.bus.Read(0x002E))<<8

	payload := make([]byte, 2, 2+int(end-start))
	payload[0], payload[1] = byte(start), byte(start>>8)
	for a := start; a < end; a++ {
		payload = append(payload, c.bus.Read(a))
	}

	if err := c.bus.Disk.Save(name, payload); err != nil {
		log.Printf("c64: save trap: %v", err)
		c.setFlag(flagC, true)
	} else {
		c.setFlag(flagC, false)
	}
	c.returnFromTrap()
}

// returnFromTrap behaves like RTS: the JSR that dispatched into the trapped
// KERNAL entry point already pushed a return address.
func (c *CPU) returnFromTrap() {
	lo := c.pull()
	hi := c.pull()
	c.PC = uint16(hi)<<8 | uint16(lo)
	c.PC++
}

// executeNext fetches, decodes and executes exactly one instruction,
// charging its base cycle cost (minus the one already spent this Step) plus
// any page-crossing or branch penalty.
func (c *CPU) executeNext() {
	pc := c.PC
	if c.preFetchHook != nil {
		c.preFetchHook(pc)
	}
	opcode := c.fetchByte()
	info := opcodes[opcode]
	if info.name == "" {
		panic(&UnknownOpcodeError{PC: pc, Opcode: opcode})
	}
	if c.decodeHook != nil {
		c.decodeHook(pc, opcode, info.name)
	}

	extra := c.execute(info.name, info.mode)
	c.cyclesRemaining = int(info.cycles) - 1 + extra
}

// execute dispatches one decoded instruction and returns any extra cycles
// earned (page-crossing on indexed reads, taken/page-crossed branches).
func (c *CPU) execute(name string, mode addrMode) int {
	switch name {
	case "ADC":
		v, pc := c.readOperand(mode)
		c.adc(v)
		return boolToInt(pc)
	case "SBC":
		v, pc := c.readOperand(mode)
		c.sbc(v)
		return boolToInt(pc)
	case "AND":
		v, pc := c.readOperand(mode)
		c.A &= v
		c.setNZ(c.A)
		return boolToInt(pc)
	case "ORA":
		v, pc := c.readOperand(mode)
		c.A |= v
		c.setNZ(c.A)
		return boolToInt(pc)
	case "EOR":
		v, pc := c.readOperand(mode)
		c.A ^= v
		c.setNZ(c.A)
		return boolToInt(pc)
	case "CMP":
		v, pc := c.readOperand(mode)
		c.compare(c.A, v)
		return boolToInt(pc)
	case "CPX":
		v, _ := c.readOperand(mode)
		c.compare(c.X, v)
	case "CPY":
		v, _ := c.readOperand(mode)
		c.compare(c.Y, v)
	case "BIT":
		v, _ := c.readOperand(mode)
		c.setFlag(flagZ, c.A&v == 0)
		c.setFlag(flagN, v&0x80 != 0)
		c.setFlag(flagV, v&0x40 != 0)
	case "LDA":
		v, pc := c.readOperand(mode)
		c.A = v
		c.setNZ(c.A)
		return boolToInt(pc)
	case "LDX":
		v, pc := c.readOperand(mode)
		c.X = v
		c.setNZ(c.X)
		return boolToInt(pc)
	case "LDY":
		v, pc := c.readOperand(mode)
		c.Y = v
		c.setNZ(c.Y)
		return boolToInt(pc)
	case "LAX":
		v, pc := c.readOperand(mode)
		c.A = v
		c.X = v
		c.setNZ(v)
		return boolToInt(pc)
	case "STA":
		addr, _ := c.resolveAddress(mode)
		c.bus.Write(addr, c.A)
	case "STX":
		addr, _ := c.resolveAddress(mode)
		c.bus.Write(addr, c.X)
	case "STY":
		addr, _ := c.resolveAddress(mode)
		c.bus.Write(addr, c.Y)
	case "SAX":
		addr, _ := c.resolveAddress(mode)
		c.bus.Write(addr, c.A&c.X)
	case "ASL":
		c.readModifyWrite(mode, func(v byte) byte {
			c.setFlag(flagC, v&0x80 != 0)
			return v << 1
		})
	case "LSR":
		c.readModifyWrite(mode, func(v byte) byte {
			c.setFlag(flagC, v&0x01 != 0)
			return v >> 1
		})
	case "ROL":
		c.readModifyWrite(mode, func(v byte) byte {
			carryIn := byte(0)
			if c.getFlag(flagC) {
				carryIn = 1
			}
			c.setFlag(flagC, v&0x80 != 0)
			return v<<1 | carryIn
		})
	case "ROR":
		c.readModifyWrite(mode, func(v byte) byte {
			carryIn := byte(0)
			if c.getFlag(flagC) {
				carryIn = 0x80
			}
			c.setFlag(flagC, v&0x01 != 0)
			return v>>1 | carryIn
		})
	case "INC":
		c.readModifyWrite(mode, func(v byte) byte { return v + 1 })
	case "DEC":
		c.readModifyWrite(mode, func(v byte) byte { return v - 1 })
	case "SLO":
		c.readModifyWrite(mode, func(v byte) byte {
			c.setFlag(flagC, v&0x80 != 0)
			v <<= 1
			c.A |= v
			c.setNZ(c.A)
			return v
		})
	case "RLA":
		c.readModifyWrite(mode, func(v byte) byte {
			carryIn := byte(0)
			if c.getFlag(flagC) {
				carryIn = 1
			}
			c.setFlag(flagC, v&0x80 != 0)
			v = v<<1 | carryIn
			c.A &= v
			c.setNZ(c.A)
			return v
		})
	case "DCP":
		c.readModifyWrite(mode, func(v byte) byte {
			v--
			c.compare(c.A, v)
			return v
		})
	case "INX":
		c.X++
		c.setNZ(c.X)
	case "INY":
		c.Y++
		c.setNZ(c.Y)
	case "DEX":
		c.X--
		c.setNZ(c.X)
	case "DEY":
		c.Y--
		c.setNZ(c.Y)
	case "TAX":
		c.X = c.A
		c.setNZ(c.X)
	case "TAY":
		c.Y = c.A
		c.setNZ(c.Y)
	case "TXA":
		c.A = c.X
		c.setNZ(c.A)
	case "TYA":
		c.A = c.Y
		c.setNZ(c.A)
	case "TSX":
		c.X = c.SP
		c.setNZ(c.X)
	case "TXS":
		c.SP = c.X
	case "CLC":
		c.setFlag(flagC, false)
	case "SEC":
		c.setFlag(flagC, true)
	case "CLI":
		c.setFlag(flagI, false)
	case "SEI":
		c.setFlag(flagI, true)
	case "CLD":
		c.setFlag(flagD, false)
	case "SED":
		c.setFlag(flagD, true)
	case "CLV":
		c.setFlag(flagV, false)
	case "PHA":
		c.push(c.A)
	case "PHP":
		c.push(c.flags | flagB | flagU)
	case "PLA":
		c.A = c.pull()
		c.setNZ(c.A)
	case "PLP":
		c.flags = (c.pull() &^ flagB) | flagU
	case "JMP":
		addr, _ := c.resolveAddress(mode)
		c.PC = addr
	case "JSR":
		addr := c.fetchWord()
		ret := c.PC - 1
		c.push(byte(ret >> 8))
		c.push(byte(ret))
		c.PC = addr
	case "RTS":
		lo := c.pull()
		hi := c.pull()
		c.PC = uint16(hi)<<8 | uint16(lo)
		c.PC++
	case "RTI":
		c.flags = (c.pull() &^ flagB) | flagU
		lo := c.pull()
		hi := c.pull()
		c.PC = uint16(hi)<<8 | uint16(lo)
	case "BRK":
		c.PC++ // per spec §4.1: BRK pushes PC+2, the operand byte is skipped
		c.serviceInterrupt(vectorIRQ, true)
	case "NOP":
		switch mode {
		case modeImmediate, modeZeroPage, modeZeroPageX:
			c.readOperand(mode)
		case modeAbsolute:
			c.resolveAddress(mode)
		case modeAbsoluteX:
			_, pc := c.resolveAddress(mode)
			return boolToInt(pc)
		}
	case "BCC":
		return c.branch(mode, !c.getFlag(flagC))
	case "BCS":
		return c.branch(mode, c.getFlag(flagC))
	case "BEQ":
		return c.branch(mode, c.getFlag(flagZ))
	case "BNE":
		return c.branch(mode, !c.getFlag(flagZ))
	case "BMI":
		return c.branch(mode, c.getFlag(flagN))
	case "BPL":
		return c.branch(mode, !c.getFlag(flagN))
	case "BVC":
		return c.branch(mode, !c.getFlag(flagV))
	case "BVS":
		return c.branch(mode, c.getFlag(flagV))
	}
	return 0
}

func (c *CPU) readModifyWrite(mode addrMode, fn func(byte) byte) {
	if mode == modeAccumulator {
		c.A = fn(c.A)
		c.setNZ(c.A)
		return
	}
	addr, _ := c.resolveAddress(mode)
	v := c.bus.Read(addr)
	result := fn(v)
	c.bus.Write(addr, result)
	c.setNZ(result)
}

func (c *CPU) compare(reg, v byte) {
	c.setFlag(flagC, reg >= v)
	c.setNZ(reg - v)
}

// branch resolves the relative target, and when taken charges +1 cycle,
// +1 more if the branch crosses a page (spec §6, §7).
func (c *CPU) branch(mode addrMode, taken bool) int {
	target, _ := c.resolveAddress(mode)
	if !taken {
		return 0
	}
	oldPC := c.PC
	pageCrossed := oldPC&0xFF00 != target&0xFF00
	c.PC = target
	if pageCrossed {
		return 2
	}
	return 1
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// adc implements ADC including the BCD path; in decimal mode N and V are
// approximations per spec §4.1 ("N and V flags need not match NMOS exactly
// in decimal mode; C and the BCD-corrected result must").
func (c *CPU) adc(v byte) {
	carryIn := 0
	if c.getFlag(flagC) {
		carryIn = 1
	}
	if c.getFlag(flagD) {
		lo := int(c.A&0x0F) + int(v&0x0F) + carryIn
		hi := int(c.A>>4) + int(v>>4)
		if lo > 9 {
			lo += 6
			hi++
		}
		binSum := int(c.A) + int(v) + carryIn
		c.setFlag(flagZ, byte(binSum) == 0)
		c.setFlag(flagN, hi&0x08 != 0)
		c.setFlag(flagV, (^(int(c.A)^int(v))&(int(c.A)^(hi<<4)))&0x80 != 0)
		if hi > 9 {
			hi += 6
		}
		c.setFlag(flagC, hi > 15)
		c.A = byte(hi<<4&0xF0 | lo&0x0F)
		return
	}
	sum := int(c.A) + int(v) + carryIn
	result := byte(sum)
	c.setFlag(flagV, (^(c.A^v)&(c.A^result)&0x80) != 0)
	c.setFlag(flagC, sum > 0xFF)
	c.A = result
	c.setNZ(c.A)
}

func (c *CPU) sbc(v byte) {
	carryIn := 0
	if c.getFlag(flagC) {
		carryIn = 1
	}
	if c.getFlag(flagD) {
		lo := int(c.A&0x0F) - int(v&0x0F) - (1 - carryIn)
		hi := int(c.A>>4) - int(v>>4)
		if lo < 0 {
			lo -= 6
			hi--
		}
		if hi < 0 {
			hi -= 6
		}
		binDiff := int(c.A) - int(v) - (1 - carryIn)
		result := byte(binDiff)
		c.setFlag(flagC, binDiff >= 0)
		c.setFlag(flagV, ((c.A^v)&(c.A^result)&0x80) != 0)
		c.setFlag(flagZ, result == 0)
		c.setFlag(flagN, result&0x80 != 0)
		c.A = byte(hi<<4&0xF0 | lo&0x0F)
		return
	}
	borrow := 0
	if !c.getFlag(flagC) {
		borrow = 1
	}
	diff := int(c.A) - int(v) - borrow
	result := byte(diff)
	c.setFlag(flagV, ((c.A^v)&(c.A^result)&0x80) != 0)
	c.setFlag(flagC, diff >= 0)
	c.A = result
	c.setNZ(c.A)
}

// SetBreakpoint and ClearBreakpoint manage the debugger's PC breakpoint set
// (spec §3's breakpoint set field), consulted by the orchestrator's run
// loop rather than by Step itself.
func (c *CPU) SetBreakpoint(addr uint16) { c.breakpoints[addr] = struct{}{} }

func (c *CPU) ClearBreakpoint(addr uint16) { delete(c.breakpoints, addr) }

func (c *CPU) AtBreakpoint() bool {
	_, ok := c.breakpoints[c.PC]
	return ok
}

func (c *CPU) SetTrace(on bool) { c.trace = on }

func (c *CPU) TotalCycles() uint64 { return c.totalCycles }

// Flags returns the packed processor status byte (NV-BDIZC).
func (c *CPU) Flags() byte { return c.flags }

// SetFlags overwrites the packed processor status byte, forcing the
// always-set unused bit per spec §4.1's PHP/BRK convention.
func (c *CPU) SetFlags(v byte) { c.flags = v | flagU }

// ReadMemory reads n bytes through the bus starting at addr, for debugger
// inspection; it has the same bank-switching visibility as the CPU itself.
func (c *CPU) ReadMemory(addr uint16, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = c.bus.Read(addr + uint16(i))
	}
	return out
}

// WriteMemory writes data through the bus starting at addr.
func (c *CPU) WriteMemory(addr uint16, data []byte) {
	for i, v := range data {
		c.bus.Write(addr+uint16(i), v)
	}
}

// SetPreFetchHook installs a callback invoked with PC immediately before
// every opcode fetch. Pass nil to remove it.
func (c *CPU) SetPreFetchHook(fn func(pc uint16)) { c.preFetchHook = fn }

// SetDecodeHook installs a callback invoked with the decoded opcode and its
// mnemonic right after fetch, before execution. Pass nil to remove it.
func (c *CPU) SetDecodeHook(fn func(pc uint16, opcode byte, mnemonic string)) {
	c.decodeHook = fn
}
