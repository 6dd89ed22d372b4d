// Package sink turns laid-out frames into output artifacts: the interactive
// SVG flame graph, a Graphviz node-link view of the same tree, and PNG/PDF
// conversions of either.
package sink

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/esflame/esflame/pkg/flame/palette"
	"github.com/esflame/esflame/pkg/render/flame/layout"
)

// fontWidth approximates average glyph width as a fraction of font size for
// Verdana, used to decide how many characters fit inside a frame.
const fontWidth = 0.59

const framePad = 1

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title     string
	theme     palette.Theme
	countName string
	fontSize  int
	samples   bool
}

// WithTitle sets the heading rendered at the top of the graph.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithTheme selects the color theme.
func WithTheme(t palette.Theme) SVGOption { return func(r *svgRenderer) { r.theme = t } }

// WithCountName sets the unit shown in tooltips ("ms", "samples", "tasks").
func WithCountName(name string) SVGOption { return func(r *svgRenderer) { r.countName = name } }

// WithFontSize overrides the base font size.
func WithFontSize(px int) SVGOption { return func(r *svgRenderer) { r.fontSize = px } }

// WithSamples switches the tooltip metric from weight to sample count.
func WithSamples() SVGOption { return func(r *svgRenderer) { r.samples = true } }

// RenderSVG renders visible frames into a self-contained interactive SVG.
// The root row sits at the bottom of the canvas and flames grow upward.
func RenderSVG(frames []layout.Frame, cfg layout.Config, opts ...SVGOption) []byte {
	r := svgRenderer{
		title:     "Flame Graph",
		theme:     palette.ThemeHot,
		countName: "ms",
		fontSize:  12,
	}
	for _, opt := range opts {
		opt(&r)
	}

	ypadTop := r.fontSize * 3
	ypadBottom := r.fontSize*2 + 10
	imageHeight := layout.Rows(frames)*cfg.FrameHeight + ypadTop + ypadBottom

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" standalone="no"?>` + "\n")
	buf.WriteString(`<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd">` + "\n")
	fmt.Fprintf(&buf, `<svg version="1.1" width="%d" height="%d" onload="init(evt)" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">`+"\n",
		cfg.Width, imageHeight, cfg.Width, imageHeight)
	buf.WriteString("<!-- Flame graph stack visualization. See https://github.com/brendangregg/FlameGraph -->\n")

	buf.WriteString("<defs>\n")
	buf.WriteString(`  <linearGradient id="background" y1="0" y2="1" x1="0" x2="0">` + "\n")
	buf.WriteString(`    <stop stop-color="#eeeeee" offset="5%" />` + "\n")
	buf.WriteString(`    <stop stop-color="#eeeeb0" offset="95%" />` + "\n")
	buf.WriteString("  </linearGradient>\n")
	buf.WriteString("</defs>\n")

	r.writeStyle(&buf)

	buf.WriteString(`<script type="text/ecmascript"><![CDATA[` + "\n")
	fmt.Fprintf(&buf, "var svgCfg = { xpad: %d, width: %d, fontSize: %d, fontWidth: %g };\n",
		cfg.XPad, cfg.Width, r.fontSize, fontWidth)
	buf.WriteString(interactionJS)
	buf.WriteString("\n]]></script>\n")

	fmt.Fprintf(&buf, `<rect x="0" y="0" width="%d" height="%d" fill="url(#background)" />`+"\n", cfg.Width, imageHeight)
	fmt.Fprintf(&buf, `<text id="title" x="%d" y="%d">%s</text>`+"\n", cfg.Width/2, r.fontSize*2, escapeXML(r.title))
	fmt.Fprintf(&buf, `<text id="unzoom" x="%d" y="%d" class="hide">Reset Zoom</text>`+"\n", cfg.XPad, r.fontSize*2)
	fmt.Fprintf(&buf, `<text id="search" x="%d" y="%d">Search</text>`+"\n", cfg.Width-cfg.XPad-100, r.fontSize*2)
	fmt.Fprintf(&buf, `<text id="ignorecase" x="%d" y="%d">ic</text>`+"\n", cfg.Width-cfg.XPad-20, r.fontSize*2)
	fmt.Fprintf(&buf, `<text id="details" x="%d" y="%d"> </text>`+"\n", cfg.XPad, imageHeight-ypadBottom/2)

	buf.WriteString(`<g id="frames">` + "\n")
	for _, f := range frames {
		r.writeFrame(&buf, f, cfg, imageHeight, ypadBottom)
	}
	buf.WriteString("</g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) writeStyle(buf *bytes.Buffer) {
	buf.WriteString(`<style type="text/css">` + "\n")
	fmt.Fprintf(buf, "  text { font-family: Verdana; font-size: %dpx; fill: black; }\n", r.fontSize)
	buf.WriteString("  #search, #ignorecase { opacity: 0.1; cursor: pointer; }\n")
	buf.WriteString("  #search:hover, #search.show, #ignorecase:hover, #ignorecase.show { opacity: 1; }\n")
	fmt.Fprintf(buf, "  #title { text-anchor: middle; font-size: %dpx; }\n", r.fontSize+5)
	buf.WriteString("  #unzoom { cursor: pointer; }\n")
	buf.WriteString("  #frames > *:hover { stroke: black; stroke-width: 0.5; cursor: pointer; }\n")
	buf.WriteString("  .hide { display: none; }\n")
	buf.WriteString("  .parent { opacity: 0.5; }\n")
	buf.WriteString("</style>\n")
}

func (r *svgRenderer) writeFrame(buf *bytes.Buffer, f layout.Frame, cfg layout.Config, imageHeight, ypadBottom int) {
	y := float64(imageHeight-ypadBottom-(f.Depth+1)*cfg.FrameHeight) + framePad

	fmt.Fprintf(buf, `  <g class="frame" data-depth="%d" data-group="%s">`+"\n", f.Depth, escapeXML(f.Group))
	fmt.Fprintf(buf, "    <title>%s</title>\n", escapeXML(r.tooltip(f)))
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%d" fill="%s" rx="2" ry="2" />`+"\n",
		f.X, y, f.Width, cfg.FrameHeight-framePad, r.fill(f))

	if text := fitText(f.Label, f.Width, r.fontSize); text != "" {
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f">%s</text>`+"\n", f.X+3, y+float64(r.fontSize), escapeXML(text))
	}
	buf.WriteString("  </g>\n")
}

// fill picks the frame color. The cpu theme colors by weight share; every
// other theme colors by label. The root frame is always neutral.
func (r *svgRenderer) fill(f layout.Frame) string {
	if f.Depth == 0 {
		return "rgb(255,255,255)"
	}
	if r.theme == palette.ThemeCPU {
		return palette.ColorPercent(f.Percent)
	}
	return palette.Color(f.Label, r.theme)
}

// tooltip builds the hover text: "<label> (<metric> <unit>, <pct>%)".
func (r *svgRenderer) tooltip(f layout.Frame) string {
	var metric string
	if r.samples {
		metric = fmt.Sprintf("%s samples", groupDigits(f.Samples))
	} else {
		metric = fmt.Sprintf("%s %s", trimFloat(f.Weight), r.countName)
	}
	label := f.Label
	if f.Detail != "" {
		label += " " + f.Detail
	}
	return fmt.Sprintf("%s (%s, %s%%)", label, metric, formatPercent(f.Percent))
}

// formatPercent renders a share with one decimal, except an exact 100 which
// renders without one.
func formatPercent(pct float64) string {
	if pct == 100 {
		return "100"
	}
	return fmt.Sprintf("%.1f", pct)
}

// fitText returns the label text that fits inside a frame of the given pixel
// width, or "" when fewer than three characters fit. Truncation keeps the
// longest fitting prefix and appends "..".
func fitText(label string, width float64, fontSize int) string {
	chars := int(width / (float64(fontSize) * fontWidth))
	if chars < 3 {
		return ""
	}
	runes := []rune(label)
	if chars >= len(runes) {
		return label
	}
	return string(runes[:chars-2]) + ".."
}

// trimFloat renders a weight without trailing decimal noise. A value that
// rounds to an integer at two decimals loses the decimal point too, so 0.999
// renders as "1", not "1.".
func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return groupDigits(int(v))
	}
	s := strings.TrimRight(fmt.Sprintf("%.2f", v), "0")
	return strings.TrimSuffix(s, ".")
}

// groupDigits formats an integer with thousands separators.
func groupDigits(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

// escapeXML escapes text for use in SVG element content and attributes.
func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
