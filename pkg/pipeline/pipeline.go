// Package pipeline orchestrates the full rendering path: merge records,
// build the frame tree, lay out, render, and cache the resulting artifact.
package pipeline

import (
	"strings"

	"github.com/esflame/esflame/pkg/errors"
	"github.com/esflame/esflame/pkg/flame/palette"
	"github.com/esflame/esflame/pkg/render/flame/layout"
)

// Output types.
const (
	TypeFlame = "flame"
	TypeGraph = "graph"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Options configures one pipeline run. Zero values are filled in by
// ValidateAndSetDefaults.
type Options struct {
	Title        string
	Width        int
	FrameHeight  int
	MinWidth     string
	Theme        palette.Theme
	CountName    string
	ShowSamples  bool
	SortByWeight bool
	Type         string
	Format       string
	NoCache      bool

	// PNGScale is the resolution multiplier for PNG conversion.
	PNGScale float64
}

// ValidateAndSetDefaults fills zero values with defaults and rejects
// unusable configuration before any parsing or rendering work happens.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Width == 0 {
		o.Width = layout.DefaultWidth
	}
	if o.FrameHeight == 0 {
		o.FrameHeight = layout.DefaultFrameHeight
	}
	if o.MinWidth == "" {
		o.MinWidth = layout.DefaultMinWidth
	}
	if o.Theme == "" {
		o.Theme = palette.ThemeHot
	}
	if o.CountName == "" {
		o.CountName = "ms"
	}
	if o.Type == "" {
		o.Type = TypeFlame
	}
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if o.PNGScale == 0 {
		o.PNGScale = 2.0
	}

	if err := errors.ValidateDimensions(o.Width, o.FrameHeight); err != nil {
		return err
	}
	if err := errors.ValidateMinWidth(o.MinWidth); err != nil {
		return err
	}
	theme, err := palette.ParseTheme(string(o.Theme))
	if err != nil {
		return err
	}
	o.Theme = theme

	o.Type = strings.ToLower(o.Type)
	if o.Type != TypeFlame && o.Type != TypeGraph {
		return errors.New(errors.ErrCodeInvalidInput, "unknown output type %q (valid: flame, graph)", o.Type)
	}

	o.Format = strings.ToLower(o.Format)
	switch o.Format {
	case FormatSVG, FormatPNG, FormatPDF:
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q (valid: svg, png, pdf)", o.Format)
	}
	return nil
}

// layoutConfig translates the options into layout geometry.
func (o *Options) layoutConfig() layout.Config {
	return layout.Config{
		Width:        o.Width,
		FrameHeight:  o.FrameHeight,
		XPad:         layout.DefaultXPad,
		MinWidth:     o.MinWidth,
		SortByWeight: o.SortByWeight,
	}
}
