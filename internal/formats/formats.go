// package formats defines the export formats and source document types recognized by the converter.
package formats

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertthunder/swbatch/internal/shared"
)

// ExportFormat is a supported output format, identified by its canonical lowercase token.
type ExportFormat string

const (
	STL     ExportFormat = "stl"
	ThreeMF ExportFormat = "3mf"
)

// All returns every recognized export format in canonical order.
func All() []ExportFormat {
	return []ExportFormat{STL, ThreeMF}
}

// Extension returns the file extension for the format, including the leading dot.
func (f ExportFormat) Extension() string {
	return "." + string(f)
}

// DisplayName returns a human-readable name for the format.
func (f ExportFormat) DisplayName() string {
	switch f {
	case STL:
		return "STL (Stereolithography)"
	case ThreeMF:
		return "3MF (3D Manufacturing Format)"
	default:
		return strings.ToUpper(string(f))
	}
}

// ParseFormat converts a single token into an [ExportFormat].
func ParseFormat(token string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "stl":
		return STL, nil
	case "3mf", "threemf":
		return ThreeMF, nil
	default:
		return "", fmt.Errorf("%w: unsupported format '%s' (supported: stl, 3mf)", shared.ErrInvalidFormat, token)
	}
}

// ParseFormats parses a comma-separated, case-insensitive format spec into a
// deduplicated list of formats. The literal "all" expands to every recognized
// format, but only when allowAll is set; callers that do not support the
// wildcard reject it. An empty spec defaults to STL.
func ParseFormats(spec string, allowAll bool) ([]ExportFormat, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))

	if spec == "all" {
		if !allowAll {
			return nil, fmt.Errorf("%w: 'all' is not accepted here, list formats explicitly", shared.ErrInvalidFormat)
		}
		return All(), nil
	}

	if spec == "" {
		return []ExportFormat{STL}, nil
	}

	seen := make(map[ExportFormat]bool)
	var parsed []ExportFormat
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		format, err := ParseFormat(token)
		if err != nil {
			return nil, err
		}
		if !seen[format] {
			seen[format] = true
			parsed = append(parsed, format)
		}
	}

	if len(parsed) == 0 {
		return []ExportFormat{STL}, nil
	}
	return parsed, nil
}

// DocType is a SolidWorks document type constant from the automation API.
type DocType int

const (
	DocNone     DocType = 0
	DocPart     DocType = 1
	DocAssembly DocType = 2
	DocDrawing  DocType = 3
)

const (
	ExtPart     = ".sldprt"
	ExtAssembly = ".sldasm"
)

// SourceExtensions returns every source document extension eligible for conversion.
func SourceExtensions() map[string]bool {
	return map[string]bool{ExtPart: true, ExtAssembly: true}
}

// DocTypeForPath maps a source path to its SolidWorks document type by extension.
func DocTypeForPath(path string) (DocType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtPart:
		return DocPart, nil
	case ExtAssembly:
		return DocAssembly, nil
	default:
		return DocNone, fmt.Errorf("%w: unsupported source file type '%s'", shared.ErrInvalidInput, filepath.Ext(path))
	}
}

// ParseSourceExtensions parses an input-format spec ("sldprt", "sldasm",
// comma-separated, or "all") into the set of extensions to scan for.
// An empty spec defaults to parts only.
func ParseSourceExtensions(spec string) (map[string]bool, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))

	if spec == "" {
		return map[string]bool{ExtPart: true}, nil
	}
	if spec == "all" {
		return SourceExtensions(), nil
	}

	exts := make(map[string]bool)
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimPrefix(strings.TrimSpace(token), ".")
		switch token {
		case "":
		case "sldprt":
			exts[ExtPart] = true
		case "sldasm":
			exts[ExtAssembly] = true
		default:
			return nil, fmt.Errorf("%w: unsupported input format '%s' (supported: sldprt, sldasm, all)", shared.ErrInvalidFormat, token)
		}
	}

	if len(exts) == 0 {
		return map[string]bool{ExtPart: true}, nil
	}
	return exts, nil
}
