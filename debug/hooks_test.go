package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttach_InstallsHooksAndUnconditionalBreakpoint(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.WriteMemory(0xC000, []byte{0xEA}) // NOP
	cpu.PC = 0xC000

	dbg := Attach(cpu)
	var hit bool
	dbg.SetBreakHandler(func(bp *Breakpoint) { hit = true })
	dbg.SetBreakpoint(0xC000)

	cpu.Step()
	assert.True(t, hit)
	assert.Contains(t, dbg.Breakpoints(), uint16(0xC000))
}

func TestConditionalBreakpoint_OnlyFiresWhenConditionHolds(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.WriteMemory(0xC000, []byte{0xEA})
	cpu.PC = 0xC000
	cpu.X = 0x01

	dbg := Attach(cpu)
	require.NoError(t, dbg.SetConditionalBreakpoint(0xC000, "X==$99"))
	var hit bool
	dbg.SetBreakHandler(func(bp *Breakpoint) { hit = true })

	cpu.Step()
	assert.False(t, hit, "condition X==$99 does not hold when X is 1")
}

func TestClearBreakpoint_RemovesIt(t *testing.T) {
	cpu := newTestCPU(t)
	dbg := Attach(cpu)
	dbg.SetBreakpoint(0xC000)
	dbg.ClearBreakpoint(0xC000)
	assert.NotContains(t, dbg.Breakpoints(), uint16(0xC000))
}

func TestTraceHandler_FiresOnDecode(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.WriteMemory(0xC000, []byte{0xEA})
	cpu.PC = 0xC000

	dbg := Attach(cpu)
	var gotMnemonic string
	dbg.SetTraceHandler(func(pc uint16, opcode byte, mnemonic string) { gotMnemonic = mnemonic })

	cpu.Step()
	assert.Equal(t, "NOP", gotMnemonic)
}
