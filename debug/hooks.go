// hooks.go - breakpoint set and pre-fetch/decode hook wiring over a CPU.

package debug

import (
	"fmt"

	"github.com/retrostack/c64vm"
)

// Breakpoint pairs an address with an optional condition (register, memory
// or hit-count comparison, or a Lua expression via LuaExpr) and a running
// hit count of how often execution has reached Address (the current arrival
// included when the condition is evaluated), adapted from the teacher's
// ConditionalBreakpoint.
type Breakpoint struct {
	Address  uint16
	Cond     *Condition
	LuaExpr  string
	HitCount uint64
}

// Debugger wraps a CPU with the hooks spec.md §9 names instead of an
// interactive shell: a breakpoint set, a trace callback and a Lua
// conditional-breakpoint evaluator (debug/script.go).
type Debugger struct {
	cpu         *c64.CPU
	breakpoints map[uint16]*Breakpoint
	lua         *ScriptEngine

	onBreak func(bp *Breakpoint)
	onTrace func(pc uint16, opcode byte, mnemonic string)
}

// Attach installs the pre-fetch and decode hooks on cpu and returns a
// Debugger that owns the breakpoint set.
func Attach(cpu *c64.CPU) *Debugger {
	d := &Debugger{cpu: cpu, breakpoints: make(map[uint16]*Breakpoint), lua: NewScriptEngine(cpu)}
	cpu.SetPreFetchHook(d.preFetch)
	cpu.SetDecodeHook(d.decode)
	return d
}

// SetBreakHandler installs the callback fired when a breakpoint's condition
// (or its absence) is satisfied at the pre-fetch gate.
func (d *Debugger) SetBreakHandler(fn func(bp *Breakpoint)) { d.onBreak = fn }

// SetTraceHandler installs the callback fired on every decoded instruction.
func (d *Debugger) SetTraceHandler(fn func(pc uint16, opcode byte, mnemonic string)) {
	d.onTrace = fn
}

// SetBreakpoint arms an unconditional breakpoint at addr.
func (d *Debugger) SetBreakpoint(addr uint16) {
	d.breakpoints[addr] = &Breakpoint{Address: addr}
	d.cpu.SetBreakpoint(addr)
}

// SetConditionalBreakpoint arms addr with a register/memory/hit-count
// condition parsed by ParseCondition.
func (d *Debugger) SetConditionalBreakpoint(addr uint16, expr string) error {
	cond, err := ParseCondition(expr)
	if err != nil {
		return fmt.Errorf("conditional breakpoint: %w", err)
	}
	d.breakpoints[addr] = &Breakpoint{Address: addr, Cond: cond}
	d.cpu.SetBreakpoint(addr)
	return nil
}

// SetLuaBreakpoint arms addr with a Lua boolean expression evaluated
// against the CPU's registers and memory (debug/script.go).
func (d *Debugger) SetLuaBreakpoint(addr uint16, luaExpr string) {
	d.breakpoints[addr] = &Breakpoint{Address: addr, LuaExpr: luaExpr}
	d.cpu.SetBreakpoint(addr)
}

// ClearBreakpoint disarms addr.
func (d *Debugger) ClearBreakpoint(addr uint16) {
	delete(d.breakpoints, addr)
	d.cpu.ClearBreakpoint(addr)
}

// Breakpoints lists every armed address.
func (d *Debugger) Breakpoints() []uint16 {
	out := make([]uint16, 0, len(d.breakpoints))
	for addr := range d.breakpoints {
		out = append(out, addr)
	}
	return out
}

func (d *Debugger) preFetch(pc uint16) {
	bp, ok := d.breakpoints[pc]
	if !ok {
		return
	}
	bp.HitCount++
	if !d.conditionHolds(bp) {
		return
	}
	if d.onBreak != nil {
		d.onBreak(bp)
	}
}

func (d *Debugger) conditionHolds(bp *Breakpoint) bool {
	if bp.LuaExpr != "" {
		ok, err := d.lua.Eval(bp.LuaExpr)
		return err == nil && ok
	}
	return Evaluate(bp.Cond, d.cpu, bp.HitCount)
}

func (d *Debugger) decode(pc uint16, opcode byte, mnemonic string) {
	if d.onTrace != nil {
		d.onTrace(pc, opcode, mnemonic)
	}
}
