// machine.go - orchestrator: drives CPU/VIC-II/CIA/SID in lock-step per frame

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package c64

const (
	cyclesPerSecond = 985248
	framesPerSecond = 60
	cyclesPerFrame  = cyclesPerSecond / framesPerSecond // ~16,420
	samplesPerFrame = audioSampleRate / framesPerSecond  // 735
)

// FrameSink receives one completed 320x200 frame buffer per RunFrame call.
type FrameSink interface {
	Present(frame *[screenHeight][screenWidth]byte) error
}

// SampleSink receives one frame's worth of signed-16-bit PCM samples.
type SampleSink interface {
	Write(samples []int16) error
}

// Machine is the orchestrator (component F's caller in spec §3): it owns
// the CPU, which owns the non-owning Bus back-reference; the Bus owns the
// memory controller and every peripheral. The orchestrator is the only
// thing that knows about wall-clock frame batching and swappable sinks —
// the core emulation is entirely single-threaded and cooperative (spec §5).
type Machine struct {
	CPU *CPU
	Bus *Bus

	video FrameSink
	audio SampleSink

	paused     bool
	frameCount uint64

	// skipBreakpointOnce lets Resume step past a breakpoint the CPU is
	// currently sitting on instead of re-triggering it immediately.
	skipBreakpointOnce bool
}

// NewMachine wires a fresh CPU and Bus together per the cyclic-ownership
// pattern in spec §9: the CPU is built first so it can be handed to the Bus
// as the InterruptReceiver capability, then attached back to the Bus.
func NewMachine(video FrameSink, audio SampleSink) *Machine {
	cpu := NewCPU()
	bus := NewBus(cpu)
	cpu.AttachBus(bus)
	return &Machine{CPU: cpu, Bus: bus, video: video, audio: audio}
}

func (m *Machine) Pause() { m.paused = true }

func (m *Machine) Resume() {
	m.paused = false
	m.skipBreakpointOnce = true
}

func (m *Machine) Paused() bool { return m.paused }
func (m *Machine) FrameCount() uint64 { return m.frameCount }

// RunFrame advances the machine by one batch of cyclesPerFrame CPU cycles,
// then hands the completed video frame and a frame's worth of audio samples
// to the attached sinks. Returns an error on a fatal UnknownOpcodeError or
// when a sink's Present/Write fails; reaching a breakpoint pauses the
// machine and returns nil.
func (m *Machine) RunFrame() error {
	if m.paused {
		return nil
	}

	for i := 0; i < cyclesPerFrame; i++ {
		if m.CPU.AtBreakpoint() && !m.skipBreakpointOnce {
			m.paused = true
			return nil
		}
		m.skipBreakpointOnce = false
		if err := m.stepOne(); err != nil {
			return err
		}
	}

	if m.video != nil {
		if err := m.video.Present(&m.Bus.VIC.Frame); err != nil {
			return err
		}
	}

	if m.audio != nil {
		samples := make([]int16, samplesPerFrame)
		for i := range samples {
			samples[i] = m.Bus.SID.GenerateSample()
		}
		if err := m.audio.Write(samples); err != nil {
			return err
		}
	}

	m.frameCount++
	return nil
}

// stepOne recovers CPU.Step's UnknownOpcodeError panic into a normal error;
// any other panic is a programming bug and propagates.
func (m *Machine) stepOne() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ue, ok := r.(*UnknownOpcodeError); ok {
				err = ue
				return
			}
			panic(r)
		}
	}()
	m.CPU.Step()
	return nil
}

// SetKey forwards a host keyboard event to CIA1's matrix.
func (m *Machine) SetKey(row, col int, pressed bool) { m.Bus.CIA1.SetKey(row, col, pressed) }

// SetJoystick2 forwards the active-low joystick byte to CIA1's Port A.
func (m *Machine) SetJoystick2(state byte) { m.Bus.CIA1.SetJoystick2(state) }

// AttachDisk parses and mounts a .d64 image.
func (m *Machine) AttachDisk(image []byte) { m.Bus.Disk.Attach(image) }

// LoadPRG injects a PRG image directly into RAM, bypassing the disk trap.
func (m *Machine) LoadPRG(data []byte) (uint16, error) { return m.Bus.LoadPRG(data) }

// AttachCartridge parses and installs a CRT image.
func (m *Machine) AttachCartridge(data []byte) error {
	cart, err := ParseCRT(data)
	if err != nil {
		return err
	}
	m.Bus.AttachCartridge(cart)
	return nil
}
