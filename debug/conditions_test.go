package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrostack/c64vm"
)

func newTestCPU(t *testing.T) *c64.CPU {
	t.Helper()
	cpu := c64.NewCPU()
	bus := c64.NewBus(cpu)
	cpu.AttachBus(bus)
	return cpu
}

func TestParseCondition_Register(t *testing.T) {
	cond, err := ParseCondition("X==$10")
	require.NoError(t, err)
	assert.Equal(t, SourceRegister, cond.Source)
	assert.Equal(t, "X", cond.Reg)
	assert.Equal(t, OpEqual, cond.Op)
	assert.Equal(t, uint64(0x10), cond.Value)
}

func TestParseCondition_Memory(t *testing.T) {
	cond, err := ParseCondition("[$D020]!=0")
	require.NoError(t, err)
	assert.Equal(t, SourceMemory, cond.Source)
	assert.Equal(t, uint16(0xD020), cond.MemAddr)
	assert.Equal(t, OpNotEqual, cond.Op)
}

func TestParseCondition_HitCount(t *testing.T) {
	cond, err := ParseCondition("hitcount>=5")
	require.NoError(t, err)
	assert.Equal(t, SourceHitCount, cond.Source)
	assert.Equal(t, OpGreaterEqual, cond.Op)
	assert.Equal(t, uint64(5), cond.Value)
}

func TestParseCondition_RejectsMissingOperator(t *testing.T) {
	_, err := ParseCondition("X 10")
	assert.Error(t, err)
}

func TestEvaluate_RegisterCondition(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.X = 0x10
	cond, err := ParseCondition("X==$10")
	require.NoError(t, err)
	assert.True(t, Evaluate(cond, cpu, 0))

	cpu.X = 0x11
	assert.False(t, Evaluate(cond, cpu, 0))
}

func TestEvaluate_MemoryCondition(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.WriteMemory(0xD020, []byte{0x05})
	cond, err := ParseCondition("[$D020]==5")
	require.NoError(t, err)
	assert.True(t, Evaluate(cond, cpu, 0))
}

func TestEvaluate_HitCountCondition(t *testing.T) {
	cond, err := ParseCondition("hitcount>=3")
	require.NoError(t, err)
	cpu := newTestCPU(t)
	assert.False(t, Evaluate(cond, cpu, 2))
	assert.True(t, Evaluate(cond, cpu, 3))
}

func TestEvaluate_NilConditionAlwaysHolds(t *testing.T) {
	cpu := newTestCPU(t)
	assert.True(t, Evaluate(nil, cpu, 0))
}
