// Package layout converts a frame tree into pixel rectangles for rendering.
//
// Horizontal placement works in weight space: a running cursor partitions the
// parent's span among its children in order, and positions are converted to
// pixels through a single weight-to-pixel scale. Children therefore tile
// their parent's span exactly, and rounding error accumulates left to right
// instead of opening gaps between siblings.
package layout

import (
	"sort"
	"strconv"
	"strings"

	"github.com/esflame/esflame/pkg/errors"
	"github.com/esflame/esflame/pkg/flame"
)

// Defaults match the classic flame graph dimensions.
const (
	DefaultWidth       = 1200
	DefaultFrameHeight = 16
	DefaultXPad        = 10
	DefaultMinWidth    = "0.1"
)

// Config controls the geometry of a layout pass.
type Config struct {
	// Width is the canvas width in pixels, including XPad on both sides.
	Width int
	// FrameHeight is the height of one frame row in pixels.
	FrameHeight int
	// XPad is the horizontal padding on each side of the flame area.
	XPad int
	// MinWidth hides frames narrower than a threshold: a bare number is
	// pixels ("0.1"), a trailing percent sign is a share of the total
	// ("0.5%"). Frames exactly at the threshold stay visible.
	MinWidth string
	// SortByWeight orders siblings by descending weight instead of record
	// order, with the label as tiebreak.
	SortByWeight bool
}

// DefaultConfig returns the standard flame graph geometry.
func DefaultConfig() Config {
	return Config{
		Width:       DefaultWidth,
		FrameHeight: DefaultFrameHeight,
		XPad:        DefaultXPad,
		MinWidth:    DefaultMinWidth,
	}
}

// Frame is one visible rectangle. X and Width are pixels; Depth is the row
// index in depth space (root row 0). The renderer flips rows so the root sits
// at the bottom of the canvas.
type Frame struct {
	Label string
	// Group is the grouping-key label the frame belongs to; empty for the
	// root frame.
	Group   string
	Detail  string
	Depth   int
	X       float64
	Width   float64
	Weight  float64
	Samples int
	// Percent is the frame's share of the total weight, in [0,100].
	Percent float64
}

// Compute lays out the tree and returns the visible frames, excluding the
// synthetic root's children filtered below the min-width threshold. The root
// frame itself is always included so zoom-out has a target. An empty or
// zero-weight tree yields no frames and no error.
func Compute(root *flame.Node, cfg Config) ([]Frame, error) {
	if cfg.Width <= 2*cfg.XPad || cfg.FrameHeight <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidDimensions,
			"unusable canvas: width %d, frame height %d, xpad %d", cfg.Width, cfg.FrameHeight, cfg.XPad)
	}
	if root == nil || root.Weight <= 0 {
		return nil, nil
	}

	total := root.Weight
	scale := float64(cfg.Width-2*cfg.XPad) / total

	minPx, err := minWidthPixels(cfg.MinWidth, total, scale)
	if err != nil {
		return nil, err
	}

	var frames []Frame
	var place func(n *flame.Node, start float64, group string)
	place = func(n *flame.Node, start float64, group string) {
		if n.Depth == 1 {
			group = n.Label
		}
		w := n.Weight * scale
		if n.Depth == 0 || w >= minPx {
			frames = append(frames, Frame{
				Label:   n.Label,
				Group:   group,
				Detail:  n.Detail,
				Depth:   n.Depth,
				X:       float64(cfg.XPad) + start*scale,
				Width:   w,
				Weight:  n.Weight,
				Samples: n.Samples,
				Percent: n.Weight / total * 100,
			})
		}

		cursor := start
		for _, c := range children(n, cfg.SortByWeight) {
			place(c, cursor, group)
			cursor += c.Weight
		}
	}
	place(root, 0, "")

	return frames, nil
}

// Rows returns the number of frame rows the layout occupies.
func Rows(frames []Frame) int {
	max := 0
	for _, f := range frames {
		if f.Depth+1 > max {
			max = f.Depth + 1
		}
	}
	return max
}

// children returns the node's children in render order.
func children(n *flame.Node, sortByWeight bool) []*flame.Node {
	if !sortByWeight || len(n.Children) < 2 {
		return n.Children
	}
	out := append([]*flame.Node(nil), n.Children...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// minWidthPixels resolves the MinWidth setting to a pixel threshold.
func minWidthPixels(minWidth string, total, scale float64) (float64, error) {
	s := strings.TrimSpace(minWidth)
	if s == "" {
		return 0, nil
	}
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil || v < 0 {
			return 0, errors.New(errors.ErrCodeInvalidMinWidth, "invalid min width percentage %q", minWidth)
		}
		return total * v / 100 * scale, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, errors.New(errors.ErrCodeInvalidMinWidth, "invalid min width %q", minWidth)
	}
	return v, nil
}
