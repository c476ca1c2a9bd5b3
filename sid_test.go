package c64

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSID_GateOn_EntersAttack(t *testing.T) {
	sid := NewSID(sidClockPAL, audioSampleRate)
	sid.Write(0x04, 0x01) // voice 1 gate on
	assert.Equal(t, envAttack, sid.voices[0].state)
}

func TestSID_GateOff_EntersRelease(t *testing.T) {
	sid := NewSID(sidClockPAL, audioSampleRate)
	sid.Write(0x04, 0x01)
	sid.Write(0x04, 0x00)
	assert.Equal(t, envRelease, sid.voices[0].state)
}

func TestSID_Envelope_AttacksTowardFullScale(t *testing.T) {
	sid := NewSID(sidClockPAL, audioSampleRate)
	sid.Write(0x05, 0x00) // fastest attack/decay rates
	sid.Write(0x04, 0x01) // gate on

	for i := 0; i < 5000 && sid.voices[0].state == envAttack; i++ {
		sid.voices[0].tickEnvelope()
	}
	assert.Equal(t, envDecay, sid.voices[0].state, "envelope counter reaches $FF and transitions to decay")
}

func TestSID_Envelope_DecaysToSustainLevel(t *testing.T) {
	sid := NewSID(sidClockPAL, audioSampleRate)
	sid.Write(0x05, 0x00) // fast attack/decay
	sid.Write(0x06, 0x80) // sustain nibble = 8 -> level 0x88
	sid.Write(0x04, 0x01)

	v := sid.voices[0]
	for i := 0; i < 20000 && v.state != envSustain; i++ {
		v.tickEnvelope()
	}
	assert.Equal(t, envSustain, v.state)
	assert.Equal(t, v.sustainLevel(), v.envCounter)
}

func TestSID_Envelope_LoweringSustainWhileHeldDecaysAtDecayRate(t *testing.T) {
	sid := NewSID(sidClockPAL, audioSampleRate)
	sid.Write(0x05, 0x00) // fast attack/decay
	sid.Write(0x06, 0xF0) // sustain nibble = 15 -> level 0xFF, holds right after attack
	sid.Write(0x04, 0x01)

	v := sid.voices[0]
	for i := 0; i < 20000 && v.state != envSustain; i++ {
		v.tickEnvelope()
	}
	assert.Equal(t, envSustain, v.state)
	assert.Equal(t, byte(0xFF), v.envCounter)

	sid.Write(0x06, 0x00) // drop sustain nibble to 0 while the voice is held
	for i := 0; i < 20000 && v.envCounter > v.sustainLevel(); i++ {
		v.tickEnvelope()
	}
	assert.Equal(t, byte(0x00), v.envCounter, "lowering sustain while held must decay down to the new level, not stall")
}

func TestSID_OSC3ENV3_ReadSynthesizedValues(t *testing.T) {
	sid := NewSID(sidClockPAL, audioSampleRate)
	sid.voices[2].envCounter = 0x42
	assert.Equal(t, byte(0x42), sid.Read(0x1C))
}

func TestSID_VoiceThreeOff_SilencesMix(t *testing.T) {
	sid := NewSID(sidClockPAL, audioSampleRate)
	sid.Write(0x0E, 0x11) // voice 3 freq lo
	sid.Write(0x0F, 0x10) // voice 3 freq hi
	sid.Write(0x12, 0x41) // voice 3 gate + sawtooth
	sid.Write(0x18, 0x8F) // volume max, voice 3 off
	_ = sid.GenerateSample() // must not panic with voice 3 silenced
}

func TestSID_GenerateSample_StaysWithinInt16Range(t *testing.T) {
	sid := NewSID(sidClockPAL, audioSampleRate)
	sid.Write(0x00, 0xFF)
	sid.Write(0x01, 0x10)
	sid.Write(0x04, 0x41) // sawtooth, gate on
	sid.Write(0x18, 0x0F) // full volume, no filter routing
	for i := 0; i < 1000; i++ {
		sample := sid.GenerateSample()
		assert.GreaterOrEqual(t, int(sample), -32768)
		assert.LessOrEqual(t, int(sample), 32767)
	}
}
