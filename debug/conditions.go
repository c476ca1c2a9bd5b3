// Package debug implements the hooks spec.md §9 asks for in place of an
// interactive shell: pre-fetch/decode callbacks, a breakpoint set, and a
// small conditional-breakpoint language, adapted from the teacher's
// debug_conditions.go/debug_monitor.go condition machinery.
package debug

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retrostack/c64vm"
)

// ConditionOp mirrors the teacher's ConditionOp enum, narrowed to the
// operators a breakpoint condition can use.
type ConditionOp int

const (
	OpEqual ConditionOp = iota
	OpNotEqual
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
)

// ConditionSource says what a condition reads: a CPU register, a memory
// byte, or the breakpoint's own hit count.
type ConditionSource int

const (
	SourceRegister ConditionSource = iota
	SourceMemory
	SourceHitCount
)

// Condition is a single comparison: source OP value.
type Condition struct {
	Source  ConditionSource
	Reg     string // "A", "X", "Y", "PC", "SP", "P"
	MemAddr uint16
	Op      ConditionOp
	Value   uint64
}

// ParseCondition parses strings like "X==$10", "[$D020]!=0", "hitcount>=5".
func ParseCondition(text string) (*Condition, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty condition")
	}

	var op ConditionOp
	var opStr string
	var opIdx int
	for _, candidate := range []string{"==", "!=", "<=", ">=", "<", ">"} {
		if idx := strings.Index(text, candidate); idx >= 0 {
			opStr, opIdx = candidate, idx
			break
		}
	}
	if opStr == "" {
		return nil, fmt.Errorf("no operator in %q (use ==, !=, <, >, <=, >=)", text)
	}
	switch opStr {
	case "==":
		op = OpEqual
	case "!=":
		op = OpNotEqual
	case "<":
		op = OpLess
	case ">":
		op = OpGreater
	case "<=":
		op = OpLessEqual
	case ">=":
		op = OpGreaterEqual
	}

	lhs := strings.TrimSpace(text[:opIdx])
	rhs := strings.TrimSpace(text[opIdx+len(opStr):])

	value, ok := parseNumber(rhs)
	if !ok {
		return nil, fmt.Errorf("invalid value %q", rhs)
	}

	if strings.HasPrefix(lhs, "[") && strings.HasSuffix(lhs, "]") {
		addr, ok := parseNumber(lhs[1 : len(lhs)-1])
		if !ok {
			return nil, fmt.Errorf("invalid memory address %q", lhs)
		}
		return &Condition{Source: SourceMemory, MemAddr: uint16(addr), Op: op, Value: value}, nil
	}
	if strings.EqualFold(lhs, "hitcount") {
		return &Condition{Source: SourceHitCount, Op: op, Value: value}, nil
	}
	return &Condition{Source: SourceRegister, Reg: strings.ToUpper(lhs), Op: op, Value: value}, nil
}

func parseNumber(s string) (uint64, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "$"):
		v, err := strconv.ParseUint(s[1:], 16, 64)
		return v, err == nil
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		v, err := strconv.ParseUint(s[2:], 16, 64)
		return v, err == nil
	case strings.HasPrefix(s, "%"):
		v, err := strconv.ParseUint(s[1:], 2, 64)
		return v, err == nil
	default:
		v, err := strconv.ParseUint(s, 10, 64)
		return v, err == nil
	}
}

// registerValue reads a named 6510 register from a CPU.
func registerValue(cpu *c64.CPU, name string) (uint64, bool) {
	switch name {
	case "A":
		return uint64(cpu.A), true
	case "X":
		return uint64(cpu.X), true
	case "Y":
		return uint64(cpu.Y), true
	case "PC":
		return uint64(cpu.PC), true
	case "SP":
		return uint64(cpu.SP), true
	case "P":
		return uint64(cpu.Flags()), true
	}
	return 0, false
}

// Evaluate reports whether cond holds against cpu's current state. hitCount
// is the breakpoint's accumulated hit count, used only by SourceHitCount.
func Evaluate(cond *Condition, cpu *c64.CPU, hitCount uint64) bool {
	if cond == nil {
		return true
	}
	var actual uint64
	switch cond.Source {
	case SourceRegister:
		v, ok := registerValue(cpu, cond.Reg)
		if !ok {
			return false
		}
		actual = v
	case SourceMemory:
		actual = uint64(cpu.ReadMemory(cond.MemAddr, 1)[0])
	case SourceHitCount:
		actual = hitCount
	}
	return compare(actual, cond.Op, cond.Value)
}

func compare(actual uint64, op ConditionOp, expected uint64) bool {
	switch op {
	case OpEqual:
		return actual == expected
	case OpNotEqual:
		return actual != expected
	case OpLess:
		return actual < expected
	case OpGreater:
		return actual > expected
	case OpLessEqual:
		return actual <= expected
	case OpGreaterEqual:
		return actual >= expected
	}
	return false
}
