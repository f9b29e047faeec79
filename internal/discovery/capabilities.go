package discovery

import (
	"strings"

	"github.com/nerrad567/wiz-local-core/internal/protocol"
)

// BulbClass is the hardware class encoded in the firmware module name.
type BulbClass string

// BulbClass constants.
const (
	// BulbClassRGB is full colour plus tunable white hardware.
	BulbClassRGB BulbClass = "rgb"

	// BulbClassTunableWhite has a tunable white spectrum, no colour.
	BulbClassTunableWhite BulbClass = "tw"

	// BulbClassDimmableWhite is fixed white, dimmable only.
	BulbClassDimmableWhite BulbClass = "dw"

	// BulbClassSocket is a smart plug: power switching only.
	BulbClassSocket BulbClass = "socket"

	// BulbClassUnknown is used when the module name cannot be parsed.
	// Unknown hardware is treated as dimmable-only to stay safe.
	BulbClassUnknown BulbClass = "unknown"
)

// ClassifyModule derives the hardware class from a module name.
//
// Module names look like "ESP01_SHRGB1C_31" or "ESP56_SHTW3_01": the
// middle token carries the class marker. SOCKET is checked before DW
// because socket modules also match no other marker.
func ClassifyModule(moduleName string) BulbClass {
	parts := strings.Split(moduleName, "_")
	if len(parts) < 2 {
		return BulbClassUnknown
	}
	marker := strings.ToUpper(parts[1])

	switch {
	case strings.Contains(marker, "RGB"):
		return BulbClassRGB
	case strings.Contains(marker, "SOCKET"):
		return BulbClassSocket
	case strings.Contains(marker, "TW"):
		return BulbClassTunableWhite
	case strings.Contains(marker, "DW"):
		return BulbClassDimmableWhite
	default:
		return BulbClassUnknown
	}
}

// CapabilitiesFor returns the capability set for a hardware class.
func CapabilitiesFor(class BulbClass) CapabilitySet {
	switch class {
	case BulbClassRGB:
		return CapabilitySet{
			Color:     true,
			ColorTemp: true,
			Effects:   true,
			SceneIDs:  protocol.AllSceneIDs(),
		}
	case BulbClassTunableWhite:
		return CapabilitySet{
			ColorTemp: true,
			Effects:   true,
			SceneIDs:  protocol.TunableWhiteSceneIDs(),
		}
	case BulbClassDimmableWhite:
		return CapabilitySet{
			Effects:  true,
			SceneIDs: protocol.DimmableWhiteSceneIDs(),
		}
	default:
		// Sockets and unknown hardware: no colour, no effects.
		return CapabilitySet{}
	}
}
