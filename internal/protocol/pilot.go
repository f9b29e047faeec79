package protocol

// Dimming bounds accepted by the device firmware. Values below 10 are
// rejected by the bulb, so brightness is clamped on encode.
const (
	minDimming = 10
	maxDimming = 100
)

// PilotParams are the mutable pilot fields for a setPilot call.
// Nil fields are omitted from the wire and left untouched by the device.
type PilotParams struct {
	State   *bool `json:"state,omitempty"`
	Dimming *int  `json:"dimming,omitempty"`
	R       *int  `json:"r,omitempty"`
	G       *int  `json:"g,omitempty"`
	B       *int  `json:"b,omitempty"`
	Temp    *int  `json:"temp,omitempty"`
	SceneID *int  `json:"sceneId,omitempty"`
	Speed   *int  `json:"speed,omitempty"`
}

// PilotState is the full pilot as reported by a getPilot result.
// Colour and temperature fields are pointers because a bulb reports
// only the fields relevant to its current mode.
type PilotState struct {
	Mac     string `json:"mac"`
	RSSI    int    `json:"rssi"`
	State   bool   `json:"state"`
	Dimming int    `json:"dimming"`
	R       *int   `json:"r,omitempty"`
	G       *int   `json:"g,omitempty"`
	B       *int   `json:"b,omitempty"`
	Temp    *int   `json:"temp,omitempty"`
	SceneID int    `json:"sceneId"`
	Speed   int    `json:"speed"`
}

// SetPilotResult is the result payload of a setPilot acknowledgement.
type SetPilotResult struct {
	Success bool `json:"success"`
}

// RegistrationParams is the params payload of the discovery broadcast.
// PhoneIP/PhoneMac identify the controller to the device; Register
// false means "answer but do not push state updates to me".
type RegistrationParams struct {
	PhoneIP  string `json:"phoneIp"`
	PhoneMac string `json:"phoneMac"`
	Register bool   `json:"register"`
}

// RegistrationResult is the result payload of a registration reply.
type RegistrationResult struct {
	Mac     string `json:"mac"`
	Success bool   `json:"success"`
}

// SystemConfig is the result payload of getSystemConfig. ModuleName
// encodes the hardware class (RGB, tunable white, dimmable white,
// socket) and drives capability derivation during discovery.
type SystemConfig struct {
	Mac        string `json:"mac"`
	HomeID     int    `json:"homeId"`
	RoomID     int    `json:"roomId"`
	GroupID    int    `json:"groupId"`
	ModuleName string `json:"moduleName"`
	FwVersion  string `json:"fwVersion"`
	TypeID     int    `json:"typeId"`
}
