package domain

// ChecklistFlag identifies one of the independent checklist steps recorded
// on a deployment as a nullable completed-at timestamp.
type ChecklistFlag string

const (
	ChecklistConstructionSitePreparation ChecklistFlag = "construction_site_preparation_feedback"
	ChecklistInternetConnection          ChecklistFlag = "internet_connection"
	ChecklistHardwareInstallation        ChecklistFlag = "hardware_installation"
)

// Valid reports whether the flag names a known checklist step.
func (f ChecklistFlag) Valid() bool {
	switch f {
	case ChecklistConstructionSitePreparation, ChecklistInternetConnection, ChecklistHardwareInstallation:
		return true
	}
	return false
}
