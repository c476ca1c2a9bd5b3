// snapshot.go - save/restore of full machine state (spec §6, §4.7)

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package c64

import "encoding/json"

const snapshotSchemaVersion = 1

// Snapshot is the versioned, text-serialized save-state record. RAM is
// stored sparsely, keyed on every address the Bus has ever observed a
// write to (the dirty set is never cleared outside of restore, so a
// snapshot always reflects every divergence from the zero-filled power-on
// image, not just changes since the previous snapshot).
type Snapshot struct {
	Version     int    `json:"version"`
	TotalCycles uint64 `json:"total_cycles"`

	CPU CPUSnapshot `json:"cpu"`

	RAM      map[uint16]byte `json:"ram"`
	Port     byte            `json:"port"`
	ColorRAM [colorRAMSize]byte `json:"color_ram"`

	VIC  VICSnapshot  `json:"vic"`
	CIA1 CIASnapshot  `json:"cia1"`
	CIA2 CIASnapshot  `json:"cia2"`
	SID  SIDSnapshot  `json:"sid"`
}

type CPUSnapshot struct {
	A     byte   `json:"a"`
	X     byte   `json:"x"`
	Y     byte   `json:"y"`
	PC    uint16 `json:"pc"`
	SP    byte   `json:"sp"`
	Flags byte   `json:"flags"`

	CyclesRemaining int  `json:"cycles_remaining"`
	StolenCycles    int  `json:"stolen_cycles"`
	IRQPending      bool `json:"irq_pending"`
	NMIPending      bool `json:"nmi_pending"`
}

type VICSnapshot struct {
	Regs       [0x2F]byte `json:"regs"`
	RasterLine int        `json:"raster_line"`
	Cycle      int        `json:"cycle"`

	IRQFlags    byte `json:"irq_flags"`
	SprSprColl  byte `json:"sprite_sprite_collision"`
	SprDataColl byte `json:"sprite_data_collision"`
}

type CIASnapshot struct {
	PRA       byte       `json:"pra"`
	PRB       byte       `json:"prb"`
	DDRA      byte       `json:"ddra"`
	DDRB      byte       `json:"ddrb"`
	Matrix    [8][8]byte `json:"matrix"`
	Joystick2 byte       `json:"joystick2"`

	TimerALatch   uint16 `json:"timer_a_latch"`
	TimerACounter uint16 `json:"timer_a_counter"`
	TimerBLatch   uint16 `json:"timer_b_latch"`
	TimerBCounter uint16 `json:"timer_b_counter"`
	TimerAStarted bool   `json:"timer_a_started"`
	TimerBStarted bool   `json:"timer_b_started"`
	CRA           byte   `json:"cra"`
	CRB           byte   `json:"crb"`

	TOD [4]byte `json:"tod"`
	SDR byte    `json:"sdr"`

	Mask byte `json:"mask"`
	IFR  byte `json:"ifr"`
}

type VoiceSnapshot struct {
	Phase uint32 `json:"phase"`
	Noise uint32 `json:"noise"`

	Freq           uint16 `json:"freq"`
	PulseWidth     uint16 `json:"pulse_width"`
	Control        byte   `json:"control"`
	AttackDecay    byte   `json:"attack_decay"`
	SustainRelease byte   `json:"sustain_release"`

	State       int  `json:"state"`
	EnvCounter  byte `json:"env_counter"`
	RateCounter int  `json:"rate_counter"`
	PrevGate    bool `json:"prev_gate"`
}

type SIDSnapshot struct {
	Voices [3]VoiceSnapshot `json:"voices"`
	Regs   [32]byte         `json:"regs"`

	FilterCutoff    uint16  `json:"filter_cutoff"`
	FilterResonance float64 `json:"filter_resonance"`
	FilterRoute     byte    `json:"filter_route"`
	FilterMode      byte    `json:"filter_mode"`
	Voice3Off       bool    `json:"voice3_off"`

	LowPass  float64 `json:"low_pass"`
	BandPass float64 `json:"band_pass"`
}

// Save serializes the full machine state to JSON. Reading it back with
// Restore MUST fully restore execution (spec §6).
func (m *Machine) Save() ([]byte, error) {
	s := Snapshot{
		Version:     snapshotSchemaVersion,
		TotalCycles: m.CPU.totalCycles,
		CPU: CPUSnapshot{
			A: m.CPU.A, X: m.CPU.X, Y: m.CPU.Y,
			PC: m.CPU.PC, SP: m.CPU.SP, Flags: m.CPU.flags,
			CyclesRemaining: m.CPU.cyclesRemaining,
			StolenCycles:    m.CPU.stolenCycles,
			IRQPending:      m.CPU.irqPending,
			NMIPending:      m.CPU.nmiPending,
		},
		RAM:      m.Bus.ramSnapshot(),
		Port:     m.Bus.port,
		ColorRAM: m.Bus.colorRAM,
		VIC:      m.Bus.VIC.snapshot(),
		CIA1:     m.Bus.CIA1.snapshot(),
		CIA2:     m.Bus.CIA2.snapshot(),
		SID:      m.Bus.SID.snapshot(),
	}
	return json.MarshalIndent(&s, "", "  ")
}

// Restore decodes a save-state and applies it in place. On any schema error
// the running machine is left untouched (spec §7's SnapshotSchemaError:
// "abandon restore, keep running state").
func (m *Machine) Restore(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return &SnapshotError{Operation: "restore", Details: "malformed json", Err: err}
	}
	if s.Version != snapshotSchemaVersion {
		return &SnapshotError{Operation: "restore", Details: "unsupported schema version"}
	}

	m.CPU.A, m.CPU.X, m.CPU.Y = s.CPU.A, s.CPU.X, s.CPU.Y
	m.CPU.PC, m.CPU.SP, m.CPU.flags = s.CPU.PC, s.CPU.SP, s.CPU.Flags
	m.CPU.cyclesRemaining = s.CPU.CyclesRemaining
	m.CPU.stolenCycles = s.CPU.StolenCycles
	m.CPU.irqPending = s.CPU.IRQPending
	m.CPU.nmiPending = s.CPU.NMIPending
	m.CPU.totalCycles = s.TotalCycles

	m.Bus.port = s.Port
	m.Bus.colorRAM = s.ColorRAM
	m.Bus.dirty = make(map[uint16]struct{}, len(s.RAM))
	for addr, v := range s.RAM {
		m.Bus.ram[addr] = v
		m.Bus.dirty[addr] = struct{}{}
	}

	m.Bus.VIC.restore(s.VIC)
	m.Bus.CIA1.restore(s.CIA1)
	m.Bus.CIA2.restore(s.CIA2)
	m.Bus.SID.restore(s.SID)
	return nil
}

func (b *Bus) ramSnapshot() map[uint16]byte {
	out := make(map[uint16]byte, len(b.dirty))
	for a := range b.dirty {
		out[a] = b.ram[a]
	}
	return out
}

func (v *VICII) snapshot() VICSnapshot {
	return VICSnapshot{
		Regs: v.regs, RasterLine: v.rasterLine, Cycle: v.cycle,
		IRQFlags: v.irqFlags, SprSprColl: v.sprSprColl, SprDataColl: v.sprDataColl,
	}
}

func (v *VICII) restore(s VICSnapshot) {
	v.regs = s.Regs
	v.rasterLine, v.cycle = s.RasterLine, s.Cycle
	v.irqFlags, v.sprSprColl, v.sprDataColl = s.IRQFlags, s.SprSprColl, s.SprDataColl
	v.syncSprites()
}

func (c *CIA) snapshot() CIASnapshot {
	return CIASnapshot{
		PRA: c.pra, PRB: c.prb, DDRA: c.ddra, DDRB: c.ddrb,
		Matrix: c.matrix, Joystick2: c.joystick2,
		TimerALatch: c.timerALatch, TimerACounter: c.timerACounter,
		TimerBLatch: c.timerBLatch, TimerBCounter: c.timerBCounter,
		TimerAStarted: c.timerAStarted, TimerBStarted: c.timerBStarted,
		CRA: c.cra, CRB: c.crb, TOD: c.tod, SDR: c.sdr,
		Mask: c.mask, IFR: c.ifr,
	}
}

func (c *CIA) restore(s CIASnapshot) {
	c.pra, c.prb, c.ddra, c.ddrb = s.PRA, s.PRB, s.DDRA, s.DDRB
	c.matrix = s.Matrix
	c.joystick2 = s.Joystick2
	c.timerALatch, c.timerACounter = s.TimerALatch, s.TimerACounter
	c.timerBLatch, c.timerBCounter = s.TimerBLatch, s.TimerBCounter
	c.timerAStarted, c.timerBStarted = s.TimerAStarted, s.TimerBStarted
	c.cra, c.crb = s.CRA, s.CRB
	c.tod, c.sdr = s.TOD, s.SDR
	c.mask, c.ifr = s.Mask, s.IFR
}

func (s *SID) snapshot() SIDSnapshot {
	out := SIDSnapshot{
		Regs: s.regs,
		FilterCutoff: s.filterCutoff, FilterResonance: s.filterResonance,
		FilterRoute: s.filterRoute, FilterMode: s.filterMode, Voice3Off: s.voice3Off,
		LowPass: s.lowPass, BandPass: s.bandPass,
	}
	for i, v := range s.voices {
		out.Voices[i] = VoiceSnapshot{
			Phase: v.phase, Noise: v.noise,
			Freq: v.freq, PulseWidth: v.pulseWidth, Control: v.control,
			AttackDecay: v.attackDecay, SustainRelease: v.sustainRelease,
			State: int(v.state), EnvCounter: v.envCounter,
			RateCounter: v.rateCounter, PrevGate: v.prevGate,
		}
	}
	return out
}

func (s *SID) restore(snap SIDSnapshot) {
	s.regs = snap.Regs
	s.filterCutoff, s.filterResonance = snap.FilterCutoff, snap.FilterResonance
	s.filterRoute, s.filterMode, s.voice3Off = snap.FilterRoute, snap.FilterMode, snap.Voice3Off
	s.lowPass, s.bandPass = snap.LowPass, snap.BandPass
	for i, vs := range snap.Voices {
		v := s.voices[i]
		v.phase, v.noise = vs.Phase, vs.Noise
		v.freq, v.pulseWidth, v.control = vs.Freq, vs.PulseWidth, vs.Control
		v.attackDecay, v.sustainRelease = vs.AttackDecay, vs.SustainRelease
		v.state = envelopeState(vs.State)
		v.envCounter, v.rateCounter, v.prevGate = vs.EnvCounter, vs.RateCounter, vs.PrevGate
	}
}
