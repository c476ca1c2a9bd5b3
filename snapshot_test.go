package c64

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_SaveRestore_RoundTripsCPUAndRAM(t *testing.T) {
	cpu := NewCPU()
	bus := NewBus(cpu)
	cpu.AttachBus(bus)
	m := &Machine{CPU: cpu, Bus: bus}

	bus.Write(0x0001, 0x00) // map RAM at $A000 too, for good measure
	bus.Write(0x1000, 0x42)
	cpu.A, cpu.X, cpu.Y = 0x11, 0x22, 0x33
	cpu.PC = 0xC000
	cpu.totalCycles = 12345

	data, err := m.Save()
	require.NoError(t, err)

	cpu2 := NewCPU()
	bus2 := NewBus(cpu2)
	cpu2.AttachBus(bus2)
	m2 := &Machine{CPU: cpu2, Bus: bus2}
	require.NoError(t, m2.Restore(data))

	assert.Equal(t, byte(0x11), cpu2.A)
	assert.Equal(t, byte(0x22), cpu2.X)
	assert.Equal(t, byte(0x33), cpu2.Y)
	assert.Equal(t, uint16(0xC000), cpu2.PC)
	assert.Equal(t, uint64(12345), cpu2.totalCycles)
	assert.Equal(t, byte(0x42), bus2.Read(0x1000))
}

func TestSnapshot_RestoreRejectsUnknownVersion(t *testing.T) {
	cpu := NewCPU()
	bus := NewBus(cpu)
	cpu.AttachBus(bus)
	m := &Machine{CPU: cpu, Bus: bus}

	data, err := m.Save()
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	snap.Version = 99
	bad, err := json.Marshal(&snap)
	require.NoError(t, err)

	err = m.Restore(bad)
	require.Error(t, err)
	var snapErr *SnapshotError
	require.ErrorAs(t, err, &snapErr)
}

func TestSnapshot_RoundTrips_SIDEnvelopeState(t *testing.T) {
	cpu := NewCPU()
	bus := NewBus(cpu)
	cpu.AttachBus(bus)
	m := &Machine{CPU: cpu, Bus: bus}

	bus.SID.Write(0x04, 0x01) // voice 1 gate on -> attack
	bus.SID.voices[0].envCounter = 0x77

	data, err := m.Save()
	require.NoError(t, err)

	cpu2 := NewCPU()
	bus2 := NewBus(cpu2)
	cpu2.AttachBus(bus2)
	m2 := &Machine{CPU: cpu2, Bus: bus2}
	require.NoError(t, m2.Restore(data))

	assert.Equal(t, envAttack, bus2.SID.voices[0].state)
	assert.Equal(t, byte(0x77), bus2.SID.voices[0].envCounter)
}
