package protocol

import (
	"errors"
	"fmt"
)

// ErrInvalidState is returned when a patch or snapshot carries values
// outside the ranges the device accepts.
var ErrInvalidState = errors.New("protocol: invalid state value")

// RGB is an 8-bit-per-channel colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// StateSnapshot is a point-in-time device state. It serves both as live
// state (from getPilot) and as the restore point captured before a
// preview. Optional aspects are pointers: a nil Color means the device
// was not in colour mode, not "black".
type StateSnapshot struct {
	Power           bool   `json:"power"`
	Brightness      int    `json:"brightness"` // 0-100
	Color           *RGB   `json:"color,omitempty"`
	ColorTempKelvin *int   `json:"color_temp_kelvin,omitempty"`
	SceneID         *int   `json:"scene_id,omitempty"`
	SceneSpeed      int    `json:"scene_speed,omitempty"`
	RSSI            int    `json:"rssi,omitempty"`
}

// Clone returns an independent copy of the snapshot.
func (s StateSnapshot) Clone() StateSnapshot {
	cpy := s
	if s.Color != nil {
		c := *s.Color
		cpy.Color = &c
	}
	if s.ColorTempKelvin != nil {
		k := *s.ColorTempKelvin
		cpy.ColorTempKelvin = &k
	}
	if s.SceneID != nil {
		id := *s.SceneID
		cpy.SceneID = &id
	}
	return cpy
}

// StatePatch is a partial state mutation for setPilot. Nil fields are
// left untouched on the device.
type StatePatch struct {
	Power           *bool
	Brightness      *int
	Color           *RGB
	ColorTempKelvin *int
	SceneID         *int
	SceneSpeed      *int
}

// IsEmpty reports whether the patch mutates nothing.
func (p StatePatch) IsEmpty() bool {
	return p.Power == nil && p.Brightness == nil && p.Color == nil &&
		p.ColorTempKelvin == nil && p.SceneID == nil && p.SceneSpeed == nil
}

// Pilot converts the patch to the wire pilot parameters.
//
// Brightness is validated against 0-100 then clamped up to the firmware
// minimum of 10; colour temperature must be within 1000-10000 K.
func (p StatePatch) Pilot() (PilotParams, error) {
	var out PilotParams

	out.State = p.Power
	if p.Brightness != nil {
		b := *p.Brightness
		if b < 0 || b > 100 {
			return PilotParams{}, fmt.Errorf("%w: brightness %d out of range 0-100", ErrInvalidState, b)
		}
		if b < minDimming {
			b = minDimming
		}
		out.Dimming = &b
	}
	if p.Color != nil {
		r, g, b := int(p.Color.R), int(p.Color.G), int(p.Color.B)
		out.R, out.G, out.B = &r, &g, &b
	}
	if p.ColorTempKelvin != nil {
		k := *p.ColorTempKelvin
		if k < 1000 || k > 10000 {
			return PilotParams{}, fmt.Errorf("%w: color temperature %dK out of range 1000-10000", ErrInvalidState, k)
		}
		out.Temp = &k
	}
	if p.SceneID != nil {
		id := *p.SceneID
		// Scene id 0 is "no scene" on the wire and stops a running
		// effect; it is not part of the catalogue.
		if id != 0 {
			if _, ok := SceneName(id); !ok {
				return PilotParams{}, fmt.Errorf("%w: unknown scene id %d", ErrInvalidState, id)
			}
		}
		out.SceneID = &id
	}
	if p.SceneSpeed != nil {
		sp := *p.SceneSpeed
		if sp < 10 || sp > 200 {
			return PilotParams{}, fmt.Errorf("%w: scene speed %d out of range 10-200", ErrInvalidState, sp)
		}
		out.Speed = &sp
	}

	return out, nil
}

// Patch converts a full snapshot into a patch that reproduces it.
// Used by the preview controller to restore a captured state.
//
// A snapshot with no active scene produces a patch carrying scene id 0,
// since the restored device may be running an effect that a bare
// dimming/colour pilot would not stop.
func (s StateSnapshot) Patch() StatePatch {
	s = s.Clone()
	p := StatePatch{
		Power: &s.Power,
		Color: s.Color,
	}
	if s.Brightness > 0 {
		p.Brightness = &s.Brightness
	}
	p.ColorTempKelvin = s.ColorTempKelvin
	if s.SceneID != nil {
		p.SceneID = s.SceneID
	} else {
		off := 0
		p.SceneID = &off
	}
	if s.SceneSpeed > 0 {
		p.SceneSpeed = &s.SceneSpeed
	}
	return p
}

// SnapshotFromPilot converts a getPilot result into the typed snapshot.
//
// A sceneId of zero means "no scene active" on the wire and maps to a
// nil SceneID. Colour is only set when all three channels are present.
func SnapshotFromPilot(p PilotState) StateSnapshot {
	s := StateSnapshot{
		Power:      p.State,
		Brightness: p.Dimming,
		SceneSpeed: p.Speed,
		RSSI:       p.RSSI,
	}
	if p.R != nil && p.G != nil && p.B != nil {
		s.Color = &RGB{R: clampByte(*p.R), G: clampByte(*p.G), B: clampByte(*p.B)}
	}
	if p.Temp != nil {
		k := *p.Temp
		s.ColorTempKelvin = &k
	}
	if p.SceneID != 0 {
		id := p.SceneID
		s.SceneID = &id
	}
	return s
}

func clampByte(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
