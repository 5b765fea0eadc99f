package domain

// HardwareModel enumerates deployable hardware units. Served as metadata
// only; the fleet inventory lives in the external hardware database.
type HardwareModel string

const (
	HardwareModelStandard24 HardwareModel = "standard24"
	HardwareModelStandard32 HardwareModel = "standard32"
	HardwareModelPhoenix    HardwareModel = "phoenix"
	HardwareModelNeptun     HardwareModel = "neptun"
)

// HardwareModels maps display names to enum values.
func HardwareModels() map[string]HardwareModel {
	return map[string]HardwareModel{
		"Standard 24\"": HardwareModelStandard24,
		"Standard 32\"": HardwareModelStandard32,
		"Phoenix":       HardwareModelPhoenix,
		"Neptun":        HardwareModelNeptun,
	}
}
