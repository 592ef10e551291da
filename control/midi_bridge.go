package control

import "gitlab.com/gomidi/midi/v2"

// Standard MIDI CC numbers this bridge reacts to, matching the teacher's
// own mixer CC convention.
const (
	CCMasterVolume uint8 = 7
	CCTempo        uint8 = 20 // arbitrary unassigned CC, used for tempo nudges
	CCHush         uint8 = 123 // "all notes off" is conventionally CC 123
)

// MasterGainSetter is implemented by whatever node the engine wires as
// its final gain stage; the bridge only needs this much of it.
type MasterGainSetter interface {
	SetGain(linear float32)
}

// MIDIBridge decodes incoming Control Change messages (§4.5 external
// interfaces) and dispatches them onto an Engine, independent of which
// concrete MIDI driver decoded the raw bytes -- Dispatch only needs a
// parsed midi.Message.
type MIDIBridge struct {
	Engine  *Engine
	Gain    MasterGainSetter // optional; nil means master volume CC is ignored
	BaseCps float64          // tempo CC is interpreted relative to this
}

// NewMIDIBridge builds a bridge targeting engine, with tempo CC nudges
// interpreted relative to baseCps.
func NewMIDIBridge(engine *Engine, baseCps float64) *MIDIBridge {
	return &MIDIBridge{Engine: engine, BaseCps: baseCps}
}

// Dispatch decodes msg and, if it's a recognized Control Change, applies
// it to the engine. Returns true if msg was handled.
func (b *MIDIBridge) Dispatch(msg midi.Message) bool {
	var ch, cc, val uint8
	if !msg.GetControlChange(&ch, &cc, &val) {
		return false
	}
	norm := float64(val) / 127

	switch cc {
	case CCMasterVolume:
		if b.Gain != nil {
			b.Gain.SetGain(float32(norm))
		}
	case CCTempo:
		// Map 0..127 linearly to 0.5x..2x of BaseCps (1x falls near CC 42).
		mult := 0.5 + norm*1.5
		b.Engine.SetTempo(b.BaseCps * mult)
	case CCHush:
		if val == 0 {
			b.Engine.Hush()
		}
	default:
		return false
	}
	return true
}
