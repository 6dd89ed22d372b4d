package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/esflame/esflame/pkg/errors"
	"github.com/esflame/esflame/pkg/flame"
	"github.com/esflame/esflame/pkg/flame/palette"
)

// ToDOT converts a frame tree to Graphviz DOT for the node-link view: one
// box per frame labeled with its weight share, colored with the same theme
// as the flame view, edges from parent to child.
func ToDOT(root *flame.Node, theme palette.Theme, countName string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	total := root.Weight
	ids := map[*flame.Node]string{}
	seq := 0
	root.Walk(func(n *flame.Node) {
		id := fmt.Sprintf("n%d", seq)
		seq++
		ids[n] = id

		label := n.Label
		if total > 0 && n.Depth > 0 {
			label = fmt.Sprintf("%s\n%s %s (%s%%)", n.Label, trimFloat(n.Weight), countName, formatPercent(n.Weight/total*100))
		}
		fill := "white"
		if n.Depth > 0 {
			fill = dotColor(n, total, theme)
		}
		fmt.Fprintf(&buf, "  %s [label=%q, fillcolor=%q];\n", id, label, fill)
	})

	buf.WriteString("\n")
	root.Walk(func(n *flame.Node) {
		for _, c := range n.Children {
			fmt.Fprintf(&buf, "  %s -> %s;\n", ids[n], ids[c])
		}
	})

	buf.WriteString("}\n")
	return buf.String()
}

func dotColor(n *flame.Node, total float64, theme palette.Theme) string {
	if theme == palette.ThemeCPU && total > 0 {
		return palette.ColorPercent(n.Weight / total * 100)
	}
	return palette.Color(n.Label, theme)
}

// RenderDOTSVG renders a DOT graph to SVG using Graphviz.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz SVG header to a zero-origin viewBox
// with explicit pixel dimensions so downstream converters size it correctly.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
