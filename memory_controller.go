// memory_controller.go - bank-switched memory map and system bus

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package c64

import "log"

const (
	ramSize      = 0x10000
	basicROMSize = 0x2000
	kernalROMSize = 0x2000
	charROMSize  = 0x1000
	colorRAMSize = 0x0400

	// Processor port bits at $0001.
	portLORAM  = 0x01
	portHIRAM  = 0x02
	portCHAREN = 0x04

	processorPortReadValue = 0x2F // fixed DDR readback at $0000, per spec
)

// InterruptReceiver is the capability peripherals use to raise interrupts on
// the CPU. It is handed to each peripheral at construction rather than
// modelled as an owning reference: the Bus owns the peripherals, the CPU
// owns the Bus, and peripherals only ever reach back through this narrow,
// synchronous, non-reentrant interface (design note in §9).
type InterruptReceiver interface {
	IRQ()
	NMI()
}

// Bus is the system bus: it owns the memory controller's storage and all
// peripherals, and dispatches every CPU read/write through the bank-switched
// address decoder described in spec §4.2.
type Bus struct {
	ram      [ramSize]byte
	basicROM [basicROMSize]byte
	kernal   [kernalROMSize]byte
	charROM  [charROMSize]byte
	colorRAM [colorRAMSize]byte

	port byte // latched processor port byte at $0001

	cart *Cartridge // nil if none attached

	VIC  *VICII
	CIA1 *CIA
	CIA2 *CIA
	SID  *SID
	Disk *Disk

	dirty map[uint16]struct{} // every address ever written to RAM; Save does not clear it, Restore replaces it
}

// NewBus wires up a fresh bus and all five peripherals, giving each of
// VIC-II/CIA1/CIA2 the interrupt receiver capability described in §9.
func NewBus(irq InterruptReceiver) *Bus {
	b := &Bus{
		port:  portLORAM | portHIRAM | portCHAREN,
		dirty: make(map[uint16]struct{}),
	}
	b.VIC = NewVICII(b, irq)
	b.CIA1 = NewCIA(irq, true)
	b.CIA2 = NewCIA(irq, false)
	b.SID = NewSID(sidClockPAL, audioSampleRate)
	b.Disk = NewDisk()
	return b
}

func (b *Bus) loram() bool  { return b.port&portLORAM != 0 }
func (b *Bus) hiram() bool  { return b.port&portHIRAM != 0 }
func (b *Bus) charen() bool { return b.port&portCHAREN != 0 }

// AttachCartridge installs a parsed CRT image. Passing nil detaches it.
func (b *Bus) AttachCartridge(c *Cartridge) { b.cart = c }

// LoadBasicROM, LoadKernalROM and LoadCharROM copy boot ROM images into place,
// zero-filling and warning on a short read per spec's InvalidRomSize class.
func (b *Bus) LoadBasicROM(data []byte) { loadROMInto(b.basicROM[:], data, "basic") }
func (b *Bus) LoadKernalROM(data []byte) { loadROMInto(b.kernal[:], data, "kernal") }
func (b *Bus) LoadCharROM(data []byte)   { loadROMInto(b.charROM[:], data, "char") }

func loadROMInto(dst []byte, data []byte, name string) {
	for i := range dst {
		dst[i] = 0
	}
	n := copy(dst, data)
	if n < len(dst) {
		log.Printf("c64: %s rom: short image (%d of %d bytes), zero-filling remainder", name, n, len(dst))
	}
}

// Read implements the priority-ordered decode table from spec §4.2.
func (b *Bus) Read(addr uint16) byte {
	if addr == 0x0000 {
		return processorPortReadValue
	}
	if addr == 0x0001 {
		return b.port
	}

	if b.cart != nil {
		if addr >= 0x8000 && addr <= 0x9FFF && b.cart.GAME && b.cart.hasChipAt(0x8000) {
			return b.cart.read(0x8000, addr)
		}
		if addr >= 0xA000 && addr <= 0xBFFF && !b.cart.EXROM && b.cart.hasChipAt(0xA000) {
			return b.cart.read(0xA000, addr)
		}
	}

	if addr >= 0xA000 && addr <= 0xBFFF && b.loram() && b.hiram() {
		return b.basicROM[addr-0xA000]
	}

	if addr >= 0xD000 && addr <= 0xDFFF && (b.loram() || b.hiram()) {
		if b.charen() {
			switch {
			case addr <= 0xD3FF:
				return b.VIC.Read(addr)
			case addr <= 0xD7FF:
				return b.SID.Read(addr)
			case addr <= 0xDBFF:
				return b.colorRAM[addr-0xD800] & 0x0F
			case addr <= 0xDCFF:
				return b.CIA1.Read(addr)
			default:
				return b.CIA2.Read(addr)
			}
		}
		return b.charROM[addr-0xD000]
	}

	if addr >= 0xE000 {
		if b.cart != nil && b.cart.GAME && !b.cart.EXROM && b.cart.hasChipAt(0xE000) {
			return b.cart.read(0xE000, addr)
		}
		if b.hiram() {
			return b.kernal[addr-0xE000]
		}
	}

	return b.ram[addr]
}

// Write mirrors the read map: ROM-backed ranges silently drop the store,
// I/O windows dispatch to the owning peripheral, color RAM masks to the low
// nibble, and everything else lands in RAM and is recorded as dirty.
func (b *Bus) Write(addr uint16, value byte) {
	if addr == 0x0001 {
		b.port = value
		b.ram[addr] = value
		b.dirty[addr] = struct{}{}
		return
	}

	if b.cart != nil {
		if addr >= 0x8000 && addr <= 0x9FFF && b.cart.GAME && b.cart.hasChipAt(0x8000) {
			return // cart ROM: drop
		}
		if addr >= 0xA000 && addr <= 0xBFFF && !b.cart.EXROM && b.cart.hasChipAt(0xA000) {
			return
		}
	}

	if addr >= 0xA000 && addr <= 0xBFFF && b.loram() && b.hiram() {
		return // BASIC ROM: drop
	}

	if addr >= 0xD000 && addr <= 0xDFFF && (b.loram() || b.hiram()) {
		if b.charen() {
			switch {
			case addr <= 0xD3FF:
				b.VIC.Write(addr, value)
			case addr <= 0xD7FF:
				b.SID.Write(addr, value)
			case addr <= 0xDBFF:
				b.colorRAM[addr-0xD800] = value & 0x0F
			case addr <= 0xDCFF:
				b.CIA1.Write(addr, value)
			default:
				b.CIA2.Write(addr, value)
			}
			return
		}
		return // character ROM window: drop
	}

	if addr >= 0xE000 {
		if b.cart != nil && b.cart.GAME && !b.cart.EXROM && b.cart.hasChipAt(0xE000) {
			return
		}
		if b.hiram() {
			return // KERNAL ROM: drop
		}
	}

	b.ram[addr] = value
	b.dirty[addr] = struct{}{}
}

