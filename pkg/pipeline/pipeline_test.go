package pipeline

import (
	"testing"

	"github.com/matzehuels/stackbuilder/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		vizType string
		format  string
		wantErr errors.Code
	}{
		{"column", "svg", ""},
		{"column", "png", ""},
		{"column", "pdf", ""},
		{"column", "json", ""},
		{"column", "dot", errors.ErrCodeInvalidFormat},
		{"nodelink", "dot", ""},
		{"nodelink", "json", errors.ErrCodeInvalidFormat},
		{"column", "SVG", errors.ErrCodeInvalidFormat}, // case-sensitive
		{"column", "", errors.ErrCodeInvalidFormat},
		{"tower", "svg", errors.ErrCodeInvalidVizType},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.vizType, tt.format)
		if got := errors.GetCode(err); got != tt.wantErr {
			t.Errorf("ValidateFormat(%q, %q) code = %q, want %q", tt.vizType, tt.format, got, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats(VizTypeColumn, []string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats(VizTypeColumn, []string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(VizTypeNodelink, nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"simple", false},
		{"wire", false},
		{"", false}, // default
		{"handdrawn", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestValidateVizType(t *testing.T) {
	tests := []struct {
		vizType string
		wantErr bool
	}{
		{"column", false},
		{"nodelink", false},
		{"tower", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVizType(tt.vizType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizType(%q) error = %v, wantErr %v", tt.vizType, err, tt.wantErr)
		}
	}
}

func TestSetDefaults(t *testing.T) {
	opts := Options{}
	opts.SetDefaults()

	if opts.VizType != DefaultVizType {
		t.Errorf("VizType should be %s, got %s", DefaultVizType, opts.VizType)
	}
	if opts.Width != DefaultWidth {
		t.Errorf("Width should be %f, got %f", DefaultWidth, opts.Width)
	}
	if opts.Margin != DefaultMargin {
		t.Errorf("Margin should be %f, got %f", DefaultMargin, opts.Margin)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Style != DefaultStyle {
		t.Errorf("Style should be %s, got %s", DefaultStyle, opts.Style)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %f, got %f", DefaultScale, opts.Scale)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestValidateForRenderIdempotent(t *testing.T) {
	opts := Options{Formats: []string{"json"}, Style: "wire"}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	first := opts
	if err := opts.ValidateForRender(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.VizType != first.VizType || opts.Style != first.Style || opts.Width != first.Width {
		t.Error("Options changed on second call")
	}
}

func TestValidateForRenderRejectsNegative(t *testing.T) {
	opts := Options{Width: -1}
	if err := opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ValidateForRender() error = %v, want INVALID_INPUT", err)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	col := Options{VizType: VizTypeColumn, Style: "wire", Width: 400, Margin: 24, Scale: 2, Detailed: true}
	svg := col.ArtifactKeyOpts(FormatSVG)
	if svg.Style != "wire" || svg.Scale != 0 || svg.Detailed {
		t.Errorf("column svg key opts = %+v", svg)
	}
	if png := col.ArtifactKeyOpts(FormatPNG); png.Scale != 2 {
		t.Errorf("png key opts should carry scale, got %+v", png)
	}

	nl := Options{VizType: VizTypeNodelink, Style: "wire", Width: 400, Detailed: true}
	dot := nl.ArtifactKeyOpts(FormatDOT)
	if dot.Style != "" || dot.Width != 0 || !dot.Detailed {
		t.Errorf("nodelink key opts = %+v", dot)
	}
}
