// monitor.go - minimal raw-terminal REPL: breakpoint hit, step, continue.
// Adapted from the teacher's debug_monitor.go freeze/resume state machine;
// the full scrollback/hex-edit machine monitor is out of scope per
// spec.md §1 ("the interactive debugger shell" is a host-side sink).

package debug

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/retrostack/c64vm"
)

// Monitor is a line-oriented REPL over a raw terminal, driving a Machine
// one CPU clock cycle ("step") or one breakpoint-to-breakpoint run
// ("continue") at a time.
type Monitor struct {
	machine *c64.Machine
	dbg     *Debugger
	term    *term.Terminal
	restore func() error
}

// NewMonitor puts fd (normally int(os.Stdin.Fd())) into raw mode and wires
// a line-editing terminal over rw (normally os.Stdin/os.Stdout combined).
func NewMonitor(machine *c64.Machine, dbg *Debugger, rw io.ReadWriter, fd int) (*Monitor, error) {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	t := term.NewTerminal(rw, "(c64) ")
	return &Monitor{
		machine: machine,
		dbg:     dbg,
		term:    t,
		restore: func() error { return term.Restore(fd, oldState) },
	}, nil
}

// Close restores the terminal's original mode.
func (m *Monitor) Close() error {
	if m.restore != nil {
		return m.restore()
	}
	return nil
}

// RunREPL reads commands until EOF or "quit". Each line is one command;
// see dispatch for the supported set.
func (m *Monitor) RunREPL() error {
	for {
		line, err := m.term.ReadLine()
		if err != nil {
			return err
		}
		if m.dispatch(strings.TrimSpace(line)) {
			return nil
		}
	}
}

func (m *Monitor) dispatch(line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToLower(fields[0]) {
	case "quit", "q":
		return true
	case "step", "s":
		m.machine.CPU.Step()
		m.printRegs()
	case "continue", "c":
		m.machine.Resume()
	case "break", "b":
		if len(fields) >= 2 {
			if addr, ok := parseNumber(fields[1]); ok {
				m.dbg.SetBreakpoint(uint16(addr))
				fmt.Fprintf(m.term, "breakpoint set at $%04X\n", addr)
			}
		}
	case "regs", "r":
		m.printRegs()
	case "mem", "m":
		if len(fields) >= 3 {
			addr, ok1 := parseNumber(fields[1])
			n, ok2 := strconv.Atoi(fields[2])
			if ok1 && ok2 == nil {
				data := m.machine.CPU.ReadMemory(uint16(addr), n)
				fmt.Fprintf(m.term, "%04X: % X\n", addr, data)
			}
		}
	default:
		fmt.Fprintf(m.term, "unknown command %q\n", fields[0])
	}
	return false
}

func (m *Monitor) printRegs() {
	c := m.machine.CPU
	fmt.Fprintf(m.term, "A=%02X X=%02X Y=%02X SP=%02X PC=%04X P=%02X cycles=%d\n",
		c.A, c.X, c.Y, c.SP, c.PC, c.Flags(), c.TotalCycles())
}
