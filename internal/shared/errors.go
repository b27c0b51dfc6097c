package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Format and input validation errors
	ErrInvalidFormat   = fmt.Errorf("invalid format specification")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrSessionUnavailable  = fmt.Errorf("SolidWorks unavailable")
	ErrRichSaveUnavailable = fmt.Errorf("rich save API unavailable")
)
