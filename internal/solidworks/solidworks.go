// package solidworks implements the converter.Automation boundary over the
// SolidWorks COM automation API.
//
// The COM-backed client only exists on Windows; elsewhere Connect fails and
// the rest of the tool (scanning, dry runs, history) still works. COM objects
// live in a single-threaded apartment, so every call after Connect must stay
// on the goroutine that connected.
package solidworks

// Automation API constants.
const (
	progID = "SldWorks.Application"

	// OpenDoc6 options
	swOpenDocOptionsSilent = 1

	// SaveAs3 arguments
	swSaveAsCurrentVersion = 0
	swSaveAsOptionsSilent  = 1
)
