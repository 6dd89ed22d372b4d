package sink

import (
	"strings"
	"testing"

	"github.com/esflame/esflame/pkg/flame"
	"github.com/esflame/esflame/pkg/flame/palette"
	"github.com/esflame/esflame/pkg/profile"
	"github.com/esflame/esflame/pkg/render/flame/layout"
)

func testFrames(t *testing.T) ([]layout.Frame, layout.Config) {
	t.Helper()
	root := flame.Build(profile.Merge([]profile.Record{
		{GroupKey: "node1", GroupName: "node-1", Label: "elasticsearch[node-1][search][T#2]", Weight: 3.6, Samples: 10},
		{GroupKey: "node2", GroupName: "node-2", Label: "write-thread", Weight: 4.3, Samples: 10},
	}))
	cfg := layout.DefaultConfig()
	frames, err := layout.Compute(root, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return frames, cfg
}

func TestRenderSVGStructure(t *testing.T) {
	frames, cfg := testFrames(t)
	svg := string(RenderSVG(frames, cfg, WithTitle("Cluster Hot Threads")))

	for _, want := range []string{
		`<svg version="1.1" width="1200"`,
		`onload="init(evt)"`,
		`<linearGradient id="background"`,
		`stop-color="#eeeeee"`,
		`stop-color="#eeeeb0"`,
		`<text id="title"`,
		"Cluster Hot Threads",
		`<text id="unzoom"`,
		"Reset Zoom",
		`<text id="search"`,
		`<text id="ignorecase"`,
		`<text id="details"`,
		`<g id="frames">`,
		`<g class="frame" data-depth="0"`,
		`<g class="frame" data-depth="2" data-group=`,
		"function init(evt)",
		"</svg>",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}

func TestRenderSVGTooltipFormat(t *testing.T) {
	frames, cfg := testFrames(t)
	svg := string(RenderSVG(frames, cfg, WithCountName("ms")))

	// Root holds 100% and renders without a decimal.
	if !strings.Contains(svg, "(7.9 ms, 100%)") {
		t.Errorf("root tooltip missing exact-100 format:\n%s", firstLines(svg, "title"))
	}
	// Non-total shares carry one decimal.
	wantPct := "54.4" // 4.3 / 7.9
	if !strings.Contains(svg, wantPct+"%") {
		t.Errorf("tooltip missing one-decimal percentage %s%%", wantPct)
	}
}

func TestRenderSVGSamplesMetric(t *testing.T) {
	frames, cfg := testFrames(t)
	svg := string(RenderSVG(frames, cfg, WithSamples()))

	if !strings.Contains(svg, "samples,") {
		t.Error("samples metric missing from tooltips")
	}
}

func TestRenderSVGEscapesLabels(t *testing.T) {
	root := flame.Build(profile.Merge([]profile.Record{
		{GroupKey: "n<1>", GroupName: `node "one" & two`, Label: "search<main>", Weight: 1.0},
	}))
	cfg := layout.DefaultConfig()
	frames, err := layout.Compute(root, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	svg := string(RenderSVG(frames, cfg, WithTitle(`a < b & "c"`)))
	for _, raw := range []string{"search<main>", `node "one" & two`, `a < b & "c"`} {
		if strings.Contains(svg, raw) {
			t.Errorf("unescaped text %q leaked into SVG", raw)
		}
	}
	if !strings.Contains(svg, "search&lt;main&gt;") {
		t.Error("escaped label missing")
	}
}

func TestRenderSVGCPUThemeColorsByShare(t *testing.T) {
	root := flame.Build(profile.Merge([]profile.Record{
		{GroupKey: "n1", Label: "busy", Weight: 99.0},
		{GroupKey: "n1", Label: "idle", Weight: 1.0},
	}))
	cfg := layout.DefaultConfig()
	cfg.MinWidth = "0"
	frames, err := layout.Compute(root, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	svg := string(RenderSVG(frames, cfg, WithTheme(palette.ThemeCPU)))
	if !strings.Contains(svg, palette.ColorPercent(99.0)) {
		t.Error("busy frame not colored by its weight share")
	}
	if !strings.Contains(svg, palette.ColorPercent(1.0)) {
		t.Error("idle frame not colored by its weight share")
	}
}

func TestRenderSVGEmptyFrames(t *testing.T) {
	svg := string(RenderSVG(nil, layout.DefaultConfig()))
	if !strings.Contains(svg, `<g id="frames">`) || !strings.Contains(svg, "</svg>") {
		t.Error("empty render should still produce a complete document")
	}
}

func TestFitText(t *testing.T) {
	tests := []struct {
		label string
		width float64
		want  string
	}{
		{"short", 1000, "short"},
		{"ab", 1000, "ab"},
		{"abcdef", 10, ""},                                // fewer than 3 chars fit
		{"averyverylongthreadname", 71, "averyver.."}, // 10 chars fit
	}
	for _, tt := range tests {
		if got := fitText(tt.label, tt.width, 12); got != tt.want {
			t.Errorf("fitText(%q, %g) = %q, want %q", tt.label, tt.width, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{100, "100"},
		{99.95, "99.9"},
		{54.43, "54.4"},
		{0, "0.0"},
	}
	for _, tt := range tests {
		if got := formatPercent(tt.pct); got != tt.want {
			t.Errorf("formatPercent(%g) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestTrimFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{7.9, "7.9"},
		{7.90, "7.9"},
		{0.25, "0.25"},
		{0.999, "1"}, // rounds up at two decimals; no dangling point
		{1.004, "1"},
		{12, "12"},
		{1234, "1,234"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := trimFloat(tt.in); got != tt.want {
			t.Errorf("trimFloat(%g) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGroupDigits(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		if got := groupDigits(tt.in); got != tt.want {
			t.Errorf("groupDigits(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToDOT(t *testing.T) {
	root := flame.Build(profile.Merge([]profile.Record{
		{GroupKey: "node1", GroupName: "node-1", Label: "threadA", Weight: 2.0},
		{GroupKey: "node1", GroupName: "node-1", Label: "threadB", Weight: 2.0},
	}))

	dot := ToDOT(root, palette.ThemeHot, "ms")

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		"threadA",
		"50.0%",
		"->",
		"}",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="8pt" height="6pt" viewBox="0.00 0.00 150.50 80.25" xmlns="http://www.w3.org/2000/svg">rest</svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 150.50 80.25"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="151"`) && !strings.Contains(out, `width="150"`) {
		t.Errorf("pixel width missing: %s", out)
	}
}

// firstLines extracts lines containing a marker, for failure messages.
func firstLines(s, marker string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, marker) {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
