package palette

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/esflame/esflame/pkg/errors"
)

var rgbRe = regexp.MustCompile(`^rgb\((\d+),(\d+),(\d+)\)$`)

func parseRGB(t *testing.T, color string) (r, g, b int) {
	t.Helper()
	m := rgbRe.FindStringSubmatch(color)
	if m == nil {
		t.Fatalf("not an rgb() color: %q", color)
	}
	r, _ = strconv.Atoi(m[1])
	g, _ = strconv.Atoi(m[2])
	b, _ = strconv.Atoi(m[3])
	return r, g, b
}

func TestColorDeterministic(t *testing.T) {
	labels := []string{
		"elasticsearch[node-1][search][T#2]",
		"indices:data/read/search",
		"java.lang.Thread.run",
	}
	for _, theme := range Themes() {
		for _, label := range labels {
			c1 := Color(label, theme)
			c2 := Color(label, theme)
			if c1 != c2 {
				t.Errorf("Color(%q, %s) not deterministic: %q vs %q", label, theme, c1, c2)
			}
		}
	}
}

func TestColorDistinguishesLabels(t *testing.T) {
	c1 := Color("threadA", ThemeHot)
	c2 := Color("threadB", ThemeHot)
	if c1 == c2 {
		t.Errorf("distinct labels share color %q", c1)
	}
}

func TestColorSeparators(t *testing.T) {
	if got, want := Color("-", ThemeHot), "rgb(200,200,200)"; got != want {
		t.Errorf("Color(-) = %q, want %q", got, want)
	}
	if got, want := Color("--", ThemeJava), "rgb(160,160,160)"; got != want {
		t.Errorf("Color(--) = %q, want %q", got, want)
	}
}

func TestColorHotRange(t *testing.T) {
	r, g, b := parseRGB(t, Color("java.lang.Thread.run", ThemeHot))
	if r < 205 || r > 255 {
		t.Errorf("hot red channel %d out of [205,255]", r)
	}
	if g < 0 || g > 230 {
		t.Errorf("hot green channel %d out of [0,230]", g)
	}
	if b < 0 || b > 55 {
		t.Errorf("hot blue channel %d out of [0,55]", b)
	}
}

func TestColorMemRange(t *testing.T) {
	r, g, _ := parseRGB(t, Color("alloc", ThemeMem))
	if r != 0 {
		t.Errorf("mem red channel = %d, want 0", r)
	}
	if g < 190 || g > 240 {
		t.Errorf("mem green channel %d out of [190,240]", g)
	}
}

func TestColorJavaClassification(t *testing.T) {
	javaColor := Color("org/elasticsearch/search/SearchService", ThemeJava)
	cppColor := Color("lucene::search::scan", ThemeJava)
	sysColor := Color("native_poll", ThemeJava)

	if javaColor == cppColor || cppColor == sysColor || javaColor == sysColor {
		t.Errorf("java theme families collide: java=%q cpp=%q sys=%q", javaColor, cppColor, sysColor)
	}

	// Annotations override package shape.
	jr, jg, _ := parseRGB(t, Color("whatever_[j]", ThemeJava))
	if jg <= jr {
		t.Errorf("JIT annotation should be green-dominant, got rgb with r=%d g=%d", jr, jg)
	}
	kr, kg, kb := parseRGB(t, Color("whatever_[k]", ThemeJava))
	if kb != 0 || kr <= kg {
		t.Errorf("kernel annotation should be orange, got rgb(%d,%d,%d)", kr, kg, kb)
	}
}

func TestColorChainWakerSplit(t *testing.T) {
	waker := Color("epoll_wait_[w]", ThemeChain)
	offcpu := Color("epoll_wait", ThemeChain)
	if waker == offcpu {
		t.Error("chain theme should split waker and off-CPU frames")
	}
}

func TestColorPercentRamp(t *testing.T) {
	r0, g0, _ := parseRGB(t, ColorPercent(0))
	if r0 != 0 || g0 != 205 {
		t.Errorf("0%% = rgb(%d,%d,..), want green", r0, g0)
	}
	r100, g100, _ := parseRGB(t, ColorPercent(100))
	if r100 != 255 || g100 != 0 {
		t.Errorf("100%% = rgb(%d,%d,..), want red", r100, g100)
	}
	r50, g50, _ := parseRGB(t, ColorPercent(50))
	if r50 != 255 || g50 != 205 {
		t.Errorf("50%% = rgb(%d,%d,..), want yellow", r50, g50)
	}

	// Out-of-range inputs clamp.
	if ColorPercent(-5) != ColorPercent(0) {
		t.Error("negative percent should clamp to 0")
	}
	if ColorPercent(150) != ColorPercent(100) {
		t.Error("over-100 percent should clamp to 100")
	}
}

func TestParseTheme(t *testing.T) {
	for _, known := range Themes() {
		if _, err := ParseTheme(string(known)); err != nil {
			t.Errorf("ParseTheme(%q): %v", known, err)
		}
	}
	if got, err := ParseTheme("  HOT "); err != nil || got != ThemeHot {
		t.Errorf("ParseTheme normalization: got %q, err %v", got, err)
	}
	if _, err := ParseTheme("plasma"); !errors.Is(err, errors.ErrCodeInvalidTheme) {
		t.Errorf("ParseTheme(plasma) error = %v, want INVALID_THEME", err)
	}
}

func TestColorChannelsInRange(t *testing.T) {
	labels := []string{"a", "bb", "elasticsearch[node][search][T#1]", strings.Repeat("x", 300)}
	for _, theme := range Themes() {
		for _, label := range labels {
			r, g, b := parseRGB(t, Color(label, theme))
			for _, ch := range []int{r, g, b} {
				if ch < 0 || ch > 255 {
					t.Errorf("Color(%q, %s) channel %d out of range", label, theme, ch)
				}
			}
		}
	}
}
