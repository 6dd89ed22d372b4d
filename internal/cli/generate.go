package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/esflame/esflame/pkg/cache"
	"github.com/esflame/esflame/pkg/errors"
	"github.com/esflame/esflame/pkg/flame/palette"
	"github.com/esflame/esflame/pkg/pipeline"
	"github.com/esflame/esflame/pkg/profile"
	"github.com/esflame/esflame/pkg/profile/hotthreads"
	"github.com/esflame/esflame/pkg/profile/mixed"
	"github.com/esflame/esflame/pkg/profile/tasks"
)

const (
	countTime    = "time"
	countSamples = "samples"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output   string // output file path (or base path for multiple outputs)
	title    string // graph title; defaults per input kind
	width    int    // canvas width in pixels
	height   int    // frame row height in pixels
	minWidth string // min frame width: pixels ("0.1") or percent ("0.5%")
	theme    string // color theme
	count    string // metric: "time" or "samples"
	sort     bool   // order siblings by descending weight
	perNode  bool   // one graph per cluster node
	vizType  string // "flame" or "graph"
	format   string // "svg", "png", "pdf"
	noCache  bool   // bypass the artifact cache
}

// newGenerateCmd creates the generate command, the main rendering pipeline.
//
// The input may be Hot Threads text, _tasks JSON, or a single file
// containing both; mixed files are split and each section becomes its own
// graph. Sections are processed independently: a parse failure in one is
// reported and the command fails only if every section fails.
func newGenerateCmd() *cobra.Command {
	opts := generateOpts{}

	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Generate flame graphs from a profiling dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err == nil {
				cfg, cfgErr := loadConfig(path)
				if cfgErr != nil {
					return cfgErr
				}
				applyConfig(cfg, &opts, cmd.Flags().Changed)
			}
			if opts.count != countTime && opts.count != countSamples {
				return errors.New(errors.ErrCodeInvalidInput, "invalid count %q (must be 'time' or 'samples')", opts.count)
			}
			return runGenerate(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single graph) or base path (multiple)")
	cmd.Flags().StringVar(&opts.title, "title", "", "graph title")
	cmd.Flags().IntVar(&opts.width, "width", 1200, "canvas width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 16, "frame height in pixels")
	cmd.Flags().StringVar(&opts.minWidth, "minwidth", "0.1", "hide frames narrower than this (pixels or 'N%')")
	cmd.Flags().StringVar(&opts.theme, "theme", "hot", "color theme: hot, mem, io, wakeup, chain, java, cpu, or a solid color")
	cmd.Flags().StringVar(&opts.count, "count", countTime, "metric shown in tooltips: time, samples")
	cmd.Flags().BoolVar(&opts.sort, "sort", false, "order frames by descending weight")
	cmd.Flags().BoolVar(&opts.perNode, "per-node", false, "generate one graph per cluster node")
	cmd.Flags().StringVarP(&opts.vizType, "type", "t", "flame", "visualization type: flame, graph")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "svg", "output format: svg, png, pdf")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the artifact cache")

	return cmd
}

// section is one independently rendered sub-document of the input.
type section struct {
	// suffix distinguishes output files when one input yields several graphs.
	suffix string
	title  string
	doc    profile.Document
}

func runGenerate(ctx context.Context, input string, opts *generateOpts) error {
	logger := loggerFromContext(ctx)

	data, err := os.ReadFile(input)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeFileNotFound, "input file not found: %s", input)
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", input)
	}

	runner := pipeline.NewRunner(openCache(ctx, opts, logger), logger)
	defer runner.Cache.Close()

	sections, parseErrs := parseSections(ctx, runner.Cache, runner.Keyer, string(data))
	for _, perr := range parseErrs {
		printWarning("%s", errors.UserMessage(perr))
		logger.Warn("section failed to parse", "error", perr)
	}
	if len(sections) == 0 {
		if len(parseErrs) > 0 {
			return parseErrs[0]
		}
		return errors.New(errors.ErrCodeParseFailed, "no profiling data recognized in %s", input)
	}

	var jobs []section
	for _, sec := range sections {
		jobs = append(jobs, splitPerNode(sec, opts.perNode)...)
	}
	// A single graph takes the plain output name; suffixes only matter when
	// one input produces several files.
	if len(jobs) == 1 {
		jobs[0].suffix = ""
	}

	tracker := newProgress(logger)
	written := 0
	var failures []error

	for _, job := range jobs {
		if err := renderJob(ctx, runner, input, job, opts); err != nil {
			failures = append(failures, err)
			printError("%s: %s", job.title, errors.UserMessage(err))
			logger.Error("render failed", "section", job.suffix, "error", err)
			continue
		}
		written++
	}

	if written == 0 {
		if len(failures) > 0 {
			return failures[0]
		}
		return errors.New(errors.ErrCodeInternal, "no graphs produced")
	}
	tracker.done(fmt.Sprintf("Generated %d graph(s)", written))
	return nil
}

// parseSections splits mixed input and parses each stream. Parse failures
// are collected, not fatal, so one bad section cannot take down the other.
func parseSections(ctx context.Context, c cache.Cache, keyer cache.Keyer, text string) ([]section, []error) {
	split := mixed.SplitText(text)

	var sections []section
	var errs []error

	if split.HasHotThreads() {
		doc, err := parseCached(ctx, c, keyer, profile.SourceHotThreads, split.HotThreads, hotthreads.ParseText)
		if err != nil {
			errs = append(errs, err)
		} else if len(doc.Records) > 0 {
			sections = append(sections, section{
				suffix: "hotthreads",
				title:  "Elasticsearch Hot Threads",
				doc:    doc,
			})
		}
	}
	if split.HasTasks() {
		doc, err := parseCached(ctx, c, keyer, profile.SourceTasks, split.Tasks, tasks.ParseText)
		if err != nil {
			errs = append(errs, err)
		} else if len(doc.Records) > 0 {
			sections = append(sections, section{
				suffix: "tasks",
				title:  "Elasticsearch Tasks",
				doc:    doc,
			})
		}
	}
	return sections, errs
}

// parseCached returns the parsed document for one raw stream, reusing an
// earlier parse of identical input when the cache holds one. The Hot Threads
// parser makes a regex pass over the whole dump, so repeat runs against large
// files skip straight to rendering.
func parseCached(ctx context.Context, c cache.Cache, keyer cache.Keyer, source, raw string, parse func(string) (profile.Document, error)) (profile.Document, error) {
	key := keyer.RecordsKey(cache.Hash([]byte(raw)), cache.RecordsKeyOpts{Source: source})

	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		var doc profile.Document
		if json.Unmarshal(data, &doc) == nil && doc.Source == source {
			return doc, nil
		}
	}

	doc, err := parse(raw)
	if err != nil {
		return profile.Document{}, err
	}
	if data, err := json.Marshal(doc); err == nil {
		_ = c.Set(ctx, key, data, cache.TTLRecords)
	}
	return doc, nil
}

// splitPerNode fans a section out into one job per grouping key when
// requested. Each job is a fully independent pipeline run.
func splitPerNode(sec section, perNode bool) []section {
	if !perNode {
		return []section{sec}
	}

	byGroup := sec.doc.ByGroup()
	jobs := make([]section, 0, len(byGroup))
	for _, key := range sec.doc.GroupKeys() {
		jobs = append(jobs, section{
			suffix: sec.suffix + "-" + sanitizeFilename(key),
			title:  fmt.Sprintf("%s - %s", sec.title, key),
			doc: profile.Document{
				Source:   sec.doc.Source,
				Interval: sec.doc.Interval,
				Records:  byGroup[key],
			},
		})
	}
	return jobs
}

func renderJob(ctx context.Context, runner *pipeline.Runner, input string, job section, opts *generateOpts) error {
	pipeOpts := pipeline.Options{
		Title:        job.title,
		Width:        opts.width,
		FrameHeight:  opts.height,
		MinWidth:     opts.minWidth,
		Theme:        palette.Theme(opts.theme),
		CountName:    "ms",
		ShowSamples:  opts.count == countSamples,
		SortByWeight: opts.sort,
		Type:         opts.vizType,
		Format:       opts.format,
		NoCache:      opts.noCache,
	}
	if opts.title != "" {
		pipeOpts.Title = opts.title
	}

	sp := newSpinner(ctx, fmt.Sprintf("rendering %s", pipeOpts.Title))
	sp.Start()
	res, err := runner.Execute(ctx, pipeOpts, job.doc.Records)
	sp.Stop()
	if err != nil {
		return err
	}
	if sp.Cancelled() {
		return ctx.Err()
	}

	out := outputPath(input, opts.output, job.suffix, pipeOpts.Format)
	if err := errors.ValidateOutputPath(out); err != nil {
		return err
	}
	if err := os.WriteFile(out, res.Artifact, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", out)
	}

	printSuccess("%s", pipeOpts.Title)
	printFile(out)
	printStats(res.Stats.Records, res.Stats.Groups, res.Stats.TotalWeight, pipeOpts.CountName, job.doc.Interval, res.Cache.Hit)
	return nil
}

// outputPath derives the output file name. With an explicit --output and a
// single graph the path is used verbatim; otherwise suffixes keep multiple
// graphs from one input distinct.
func outputPath(input, output, suffix, format string) string {
	if output != "" {
		base := strings.TrimSuffix(output, filepath.Ext(output))
		if suffix == "" {
			return base + "." + format
		}
		return base + "-" + suffix + "." + format
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if suffix == "" {
		return base + "." + format
	}
	return base + "-" + suffix + "." + format
}

// sanitizeFilename keeps group keys safe to embed in file names.
func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

// openCache picks the cache backend: Redis when ESFLAME_REDIS_ADDR is set,
// the file cache otherwise, and the null cache when either fails or caching
// is disabled.
func openCache(ctx context.Context, opts *generateOpts, logger *log.Logger) cache.Cache {
	if opts.noCache {
		return cache.NewNullCache()
	}

	if addr := os.Getenv("ESFLAME_REDIS_ADDR"); addr != "" {
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     addr,
			Password: os.Getenv("ESFLAME_REDIS_PASSWORD"),
		})
		if err != nil {
			logger.Warn("redis cache unavailable, falling back to file cache", "addr", addr, "error", err)
		} else {
			logger.Debug("using redis cache", "addr", addr)
			return c
		}
	}

	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Warn("file cache unavailable, caching disabled", "dir", dir, "error", err)
		return cache.NewNullCache()
	}
	return c
}
