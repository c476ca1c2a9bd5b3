// script.go - Lua conditional-breakpoint evaluator (spec.md §9's hooks,
// grounded on the teacher's debug_conditions.go comparison machinery but
// backed by a real scripting engine instead of a hand-rolled parser).

package debug

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/retrostack/c64vm"
)

// ScriptEngine evaluates Lua boolean expressions with access to the 6510's
// registers (A, X, Y, PC, SP, P) and a mem(addr) reader, for conditional
// breakpoints the register/memory mini-language in conditions.go can't
// express (e.g. "mem(0xD020) == A" or "PC >= 0xC000 and PC < 0xD000").
// Expressions are Lua 5.1, which has no bitwise operators.
type ScriptEngine struct {
	cpu *c64.CPU
}

func NewScriptEngine(cpu *c64.CPU) *ScriptEngine { return &ScriptEngine{cpu: cpu} }

// Eval runs expr as `return (<expr>)` in a fresh Lua state seeded with the
// CPU's current register values and a mem() function, and returns whether
// the result is truthy.
func (s *ScriptEngine) Eval(expr string) (bool, error) {
	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("A", lua.LNumber(s.cpu.A))
	L.SetGlobal("X", lua.LNumber(s.cpu.X))
	L.SetGlobal("Y", lua.LNumber(s.cpu.Y))
	L.SetGlobal("PC", lua.LNumber(s.cpu.PC))
	L.SetGlobal("SP", lua.LNumber(s.cpu.SP))
	L.SetGlobal("P", lua.LNumber(s.cpu.Flags()))
	L.SetGlobal("mem", L.NewFunction(func(L *lua.LState) int {
		addr := uint16(L.CheckNumber(1))
		L.Push(lua.LNumber(s.cpu.ReadMemory(addr, 1)[0]))
		return 1
	}))

	if err := L.DoString("return (" + expr + ")"); err != nil {
		return false, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret), nil
}
