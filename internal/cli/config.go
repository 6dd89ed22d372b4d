package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/esflame/esflame/pkg/errors"
)

// fileConfig mirrors the optional TOML config file. Every field is a default
// for the corresponding generate flag; flags set on the command line win.
//
//	# ~/.config/esflame/config.toml
//	width = 1600
//	height = 18
//	minwidth = "0.5%"
//	theme = "java"
type fileConfig struct {
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	MinWidth string `toml:"minwidth"`
	Theme    string `toml:"theme"`
	Count    string `toml:"count"`
	Sort     bool   `toml:"sort"`
}

// loadConfig reads the config file at path. A missing file is not an error
// and yields the zero config; a malformed file is reported so a typo does
// not silently fall back to defaults.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config file")
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	return cfg, nil
}

// applyConfig fills generate options from the config file for every flag the
// user did not set explicitly. changed reports whether a flag was set.
func applyConfig(cfg fileConfig, opts *generateOpts, changed func(name string) bool) {
	if cfg.Width != 0 && !changed("width") {
		opts.width = cfg.Width
	}
	if cfg.Height != 0 && !changed("height") {
		opts.height = cfg.Height
	}
	if cfg.MinWidth != "" && !changed("minwidth") {
		opts.minWidth = cfg.MinWidth
	}
	if cfg.Theme != "" && !changed("theme") {
		opts.theme = cfg.Theme
	}
	if cfg.Count != "" && !changed("count") {
		opts.count = cfg.Count
	}
	if cfg.Sort && !changed("sort") {
		opts.sort = true
	}
}
