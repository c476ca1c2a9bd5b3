// prg.go - PRG program file loading

package c64

// LoadPRG writes a PRG image into RAM. The first two little-endian bytes
// are the load address; the remainder is written sequentially from there
// (spec §6). Returns the load address.
func (b *Bus) LoadPRG(data []byte) (uint16, error) {
	if len(data) < 2 {
		return 0, &RomError{Operation: "prg", Details: "file too short for load address"}
	}
	addr := uint16(data[0]) | uint16(data[1])<<8
	for i, v := range data[2:] {
		b.ram[addr+uint16(i)] = v
		b.dirty[addr+uint16(i)] = struct{}{}
	}
	return addr, nil
}
