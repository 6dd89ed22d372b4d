// Package palette assigns deterministic colors to flame graph frames.
//
// Colors follow Brendan Gregg's flame graph conventions: each theme maps a
// per-label hash into a narrow band of a base hue, so the same label renders
// the same color in every graph, across runs and machines. The hash is
// FNV-1a seeding a xorshift sequence, which keeps the assignment stable
// without depending on any runtime's map or hash seed.
package palette

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/esflame/esflame/pkg/errors"
)

// Theme selects a color scheme.
type Theme string

const (
	ThemeHot    Theme = "hot"
	ThemeMem    Theme = "mem"
	ThemeIO     Theme = "io"
	ThemeWakeup Theme = "wakeup"
	ThemeChain  Theme = "chain"
	ThemeJava   Theme = "java"
	ThemeCPU    Theme = "cpu"

	ThemeRed    Theme = "red"
	ThemeGreen  Theme = "green"
	ThemeBlue   Theme = "blue"
	ThemeYellow Theme = "yellow"
	ThemePurple Theme = "purple"
	ThemeAqua   Theme = "aqua"
	ThemeOrange Theme = "orange"
)

// Themes lists every valid theme name in display order.
func Themes() []Theme {
	return []Theme{
		ThemeHot, ThemeMem, ThemeIO, ThemeWakeup, ThemeChain, ThemeJava, ThemeCPU,
		ThemeRed, ThemeGreen, ThemeBlue, ThemeYellow, ThemePurple, ThemeAqua, ThemeOrange,
	}
}

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Themes() {
		if t == known {
			return t, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidTheme, "unknown theme %q (valid: %s)", s, themeNames())
}

func themeNames() string {
	names := make([]string, 0, len(Themes()))
	for _, t := range Themes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

// javaPackageRe matches names under the common Java package roots, the way
// perf-map-agent emits them.
var javaPackageRe = regexp.MustCompile(`^(java|javax|jdk|net|org|com|io|sun)/`)

// Color returns the fill color for a label under the given theme.
//
// Separator labels "-" and "--" map to fixed grays. The java theme first
// classifies the label lexically (JIT, inlined, kernel, Java package, C++,
// system) and colors by the resulting family. The cpu theme needs a weight
// share and is handled by ColorPercent; Color falls back to treating the
// label as cold.
func Color(label string, theme Theme) string {
	switch label {
	case "--":
		return "rgb(160,160,160)"
	case "-":
		return "rgb(200,200,200)"
	}

	switch theme {
	case ThemeJava:
		return colorFamily(javaFamily(label), label)
	case ThemeHot, "":
		v := newSeq(label)
		return fmt.Sprintf("rgb(%d,%d,%d)", 205+int(50*v.next()), int(230*v.next()), int(55*v.next()))
	case ThemeMem:
		v := newSeq(label)
		return fmt.Sprintf("rgb(0,%d,%d)", 190+int(50*v.next()), int(210*v.next()))
	case ThemeIO:
		v := newSeq(label)
		rg := 80 + int(60*v.next())
		return fmt.Sprintf("rgb(%d,%d,%d)", rg, rg, 190+int(55*v.next()))
	case ThemeWakeup:
		return colorFamily("aqua", label)
	case ThemeChain:
		if strings.Contains(label, "_[w]") {
			return colorFamily("aqua", label)
		}
		return colorFamily("blue", label)
	case ThemeCPU:
		return ColorPercent(0)
	default:
		return colorFamily(string(theme), label)
	}
}

// ColorPercent maps a weight share in [0,100] onto a red (busy) to green
// (idle) ramp. Used by the cpu theme, where a frame's color reflects how much
// of the total it consumes rather than what it is called.
func ColorPercent(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	// 0% → green, 50% → yellow, 100% → red.
	var r, g int
	if pct <= 50 {
		r = int(255 * pct / 50)
		g = 205
	} else {
		r = 255
		g = int(205 * (100 - pct) / 50)
	}
	return fmt.Sprintf("rgb(%d,%d,50)", r, g)
}

// javaFamily classifies a label lexically the way the java flame graph theme
// does: annotation suffixes first, then package shape.
func javaFamily(label string) string {
	switch {
	case strings.Contains(label, "_[j]"):
		return "green"
	case strings.Contains(label, "_[i]"):
		return "aqua"
	case strings.Contains(label, "_[k]"):
		return "orange"
	case javaPackageRe.MatchString(label):
		return "green"
	case strings.Contains(label, ":::"):
		return "green"
	case strings.Contains(label, "::"):
		return "yellow"
	default:
		return "red"
	}
}

// colorFamily picks a color inside one solid hue family.
func colorFamily(family, label string) string {
	v := newSeq(label).next()
	switch family {
	case "red":
		x := 50 + int(80*v)
		return fmt.Sprintf("rgb(%d,%d,%d)", 200+int(55*v), x, x)
	case "green":
		x := 50 + int(60*v)
		return fmt.Sprintf("rgb(%d,%d,%d)", x, 200+int(55*v), x)
	case "blue":
		x := 80 + int(60*v)
		return fmt.Sprintf("rgb(%d,%d,%d)", x, x, 205+int(50*v))
	case "yellow":
		x := 175 + int(55*v)
		return fmt.Sprintf("rgb(%d,%d,%d)", x, x, 50+int(20*v))
	case "purple":
		x := 190 + int(65*v)
		return fmt.Sprintf("rgb(%d,%d,%d)", x, 80+int(60*v), x)
	case "aqua":
		gb := 165 + int(55*v)
		return fmt.Sprintf("rgb(%d,%d,%d)", 50+int(60*v), gb, gb)
	case "orange":
		return fmt.Sprintf("rgb(%d,%d,0)", 190+int(65*v), 90+int(65*v))
	default:
		return "rgb(0,0,0)"
	}
}

// seq is a xorshift32 stream seeded from a label. Each next() yields a float
// in [0,1); the stream is a pure function of the label.
type seq struct {
	state uint32
}

func newSeq(label string) *seq {
	h := fnv.New32a()
	h.Write([]byte(label))
	s := h.Sum32()
	if s == 0 {
		s = 0x9e3779b9
	}
	return &seq{state: s}
}

func (s *seq) next() float64 {
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return float64(x>>8) / float64(1<<24)
}
