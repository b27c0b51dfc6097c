package formats

import (
	"errors"
	"testing"

	"github.com/desertthunder/swbatch/internal/shared"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		token   string
		want    ExportFormat
		wantErr bool
	}{
		{"stl", STL, false},
		{"STL", STL, false},
		{" stl ", STL, false},
		{"3mf", ThreeMF, false},
		{"threemf", ThreeMF, false},
		{"step", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := ParseFormat(tc.token)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error, got %v", tc.token, got)
			} else if !errors.Is(err, shared.ErrInvalidFormat) {
				t.Errorf("ParseFormat(%q) error should wrap ErrInvalidFormat, got %v", tc.token, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q) unexpected error: %v", tc.token, err)
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tc.token, got, tc.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	t.Run("comma separated list", func(t *testing.T) {
		got, err := ParseFormats("stl,3mf", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got[0] != STL || got[1] != ThreeMF {
			t.Errorf("expected [stl 3mf], got %v", got)
		}
	})

	t.Run("duplicates collapse keeping first occurrence", func(t *testing.T) {
		got, err := ParseFormats("3mf,stl,3mf,STL", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got[0] != ThreeMF || got[1] != STL {
			t.Errorf("expected [3mf stl], got %v", got)
		}
	})

	t.Run("empty spec defaults to stl", func(t *testing.T) {
		got, err := ParseFormats("", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0] != STL {
			t.Errorf("expected [stl], got %v", got)
		}
	})

	t.Run("only separators defaults to stl", func(t *testing.T) {
		got, err := ParseFormats(" , , ", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0] != STL {
			t.Errorf("expected [stl], got %v", got)
		}
	})

	t.Run("all expands when allowed", func(t *testing.T) {
		got, err := ParseFormats("all", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != len(All()) {
			t.Errorf("expected %d formats, got %v", len(All()), got)
		}
	})

	t.Run("all rejected when not allowed", func(t *testing.T) {
		_, err := ParseFormats("all", false)
		if err == nil {
			t.Fatal("expected error for 'all' when wildcard is disallowed")
		}
		if !errors.Is(err, shared.ErrInvalidFormat) {
			t.Errorf("error should wrap ErrInvalidFormat, got %v", err)
		}
	})

	t.Run("unknown token fails the whole spec", func(t *testing.T) {
		if _, err := ParseFormats("stl,obj", false); err == nil {
			t.Fatal("expected error for unknown format token")
		}
	})
}

func TestExtension(t *testing.T) {
	if STL.Extension() != ".stl" {
		t.Errorf("expected .stl, got %s", STL.Extension())
	}
	if ThreeMF.Extension() != ".3mf" {
		t.Errorf("expected .3mf, got %s", ThreeMF.Extension())
	}
}

func TestDocTypeForPath(t *testing.T) {
	cases := []struct {
		path    string
		want    DocType
		wantErr bool
	}{
		{"/models/bracket.sldprt", DocPart, false},
		{"/models/BRACKET.SLDPRT", DocPart, false},
		{"/models/frame.sldasm", DocAssembly, false},
		{"/models/drawing.slddrw", DocNone, true},
		{"/models/readme.txt", DocNone, true},
	}

	for _, tc := range cases {
		got, err := DocTypeForPath(tc.path)
		if tc.wantErr {
			if err == nil {
				t.Errorf("DocTypeForPath(%q) expected error", tc.path)
			}
			continue
		}
		if err != nil {
			t.Errorf("DocTypeForPath(%q) unexpected error: %v", tc.path, err)
		}
		if got != tc.want {
			t.Errorf("DocTypeForPath(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestParseSourceExtensions(t *testing.T) {
	t.Run("defaults to parts", func(t *testing.T) {
		got, err := ParseSourceExtensions("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || !got[ExtPart] {
			t.Errorf("expected parts only, got %v", got)
		}
	})

	t.Run("all includes parts and assemblies", func(t *testing.T) {
		got, err := ParseSourceExtensions("all")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got[ExtPart] || !got[ExtAssembly] {
			t.Errorf("expected parts and assemblies, got %v", got)
		}
	})

	t.Run("explicit list", func(t *testing.T) {
		got, err := ParseSourceExtensions("sldasm")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got[ExtPart] || !got[ExtAssembly] {
			t.Errorf("expected assemblies only, got %v", got)
		}
	})

	t.Run("leading dot accepted", func(t *testing.T) {
		got, err := ParseSourceExtensions(".sldprt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got[ExtPart] {
			t.Errorf("expected parts, got %v", got)
		}
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		if _, err := ParseSourceExtensions("slddrw"); err == nil {
			t.Fatal("expected error for drawing extension")
		}
	})
}
