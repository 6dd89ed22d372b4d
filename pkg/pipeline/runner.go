package pipeline

import (
	"context"
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/esflame/esflame/pkg/cache"
	"github.com/esflame/esflame/pkg/errors"
	"github.com/esflame/esflame/pkg/flame"
	"github.com/esflame/esflame/pkg/profile"
	"github.com/esflame/esflame/pkg/render/flame/layout"
	"github.com/esflame/esflame/pkg/render/flame/sink"
)

// Runner executes pipeline runs against a cache backend.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables artifact reuse.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Cache: c, Keyer: cache.NewDefaultKeyer(), Logger: logger}
}

// Stats summarizes one run for CLI reporting.
type Stats struct {
	Records     int
	Groups      int
	Frames      int
	TotalWeight float64
}

// CacheInfo reports how the artifact cache was used.
type CacheInfo struct {
	Key string
	Hit bool
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID    string
	Artifact []byte
	Stats    Stats
	Cache    CacheInfo
}

// Execute runs the full pipeline over one document's records. The run is
// sequential and shares no state with other runs, so per-node and per-file
// graphs can execute independently.
func (r *Runner) Execute(ctx context.Context, opts Options, records []profile.Record) (Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Result{}, err
	}

	runID := uuid.NewString()
	logger := r.Logger.With("run", runID)

	merged := profile.Merge(records)
	for _, rec := range merged {
		if err := rec.Validate(); err != nil {
			return Result{}, err
		}
	}

	root := flame.Build(merged)
	if err := flame.CheckWeights(root); err != nil {
		return Result{}, err
	}

	res := Result{
		RunID: runID,
		Stats: Stats{
			Records:     len(merged),
			Groups:      len(root.Children),
			TotalWeight: root.Weight,
		},
	}

	key, err := r.artifactKey(merged, opts)
	if err != nil {
		return Result{}, err
	}
	res.Cache.Key = key

	if !opts.NoCache {
		if data, ok, err := r.Cache.Get(ctx, key); err != nil {
			logger.Warn("cache read failed", "error", err)
		} else if ok {
			logger.Debug("artifact cache hit", "key", key)
			res.Artifact = data
			res.Cache.Hit = true
			return res, nil
		}
	}

	artifact, frames, err := r.render(ctx, root, opts)
	if err != nil {
		return Result{}, err
	}
	res.Artifact = artifact
	res.Stats.Frames = frames

	if !opts.NoCache {
		if err := r.Cache.Set(ctx, key, artifact, cache.TTLArtifact); err != nil {
			logger.Warn("cache write failed", "error", err)
		}
	}

	logger.Debug("pipeline complete",
		"records", res.Stats.Records,
		"groups", res.Stats.Groups,
		"frames", res.Stats.Frames,
		"bytes", len(artifact))
	return res, nil
}

// render produces the artifact in the requested type and format.
func (r *Runner) render(ctx context.Context, root *flame.Node, opts Options) ([]byte, int, error) {
	var svg []byte
	frames := 0

	switch opts.Type {
	case TypeGraph:
		dot := sink.ToDOT(root, opts.Theme, opts.CountName)
		rendered, err := sink.RenderDOTSVG(ctx, dot)
		if err != nil {
			return nil, 0, err
		}
		svg = rendered
	default:
		laid, err := layout.Compute(root, opts.layoutConfig())
		if err != nil {
			return nil, 0, err
		}
		frames = len(laid)

		svgOpts := []sink.SVGOption{
			sink.WithTitle(opts.Title),
			sink.WithTheme(opts.Theme),
			sink.WithCountName(opts.CountName),
		}
		if opts.ShowSamples {
			svgOpts = append(svgOpts, sink.WithSamples())
		}
		svg = sink.RenderSVG(laid, opts.layoutConfig(), svgOpts...)
	}

	switch opts.Format {
	case FormatPNG:
		data, err := sink.ToPNG(svg, opts.PNGScale)
		return data, frames, err
	case FormatPDF:
		data, err := sink.ToPDF(svg)
		return data, frames, err
	default:
		return svg, frames, nil
	}
}

// artifactKey derives the cache key from the merged records and every option
// that affects the rendered bytes.
func (r *Runner) artifactKey(merged []profile.Record, opts Options) (string, error) {
	data, err := json.Marshal(merged)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash records")
	}
	return r.Keyer.ArtifactKey(cache.Hash(data), cache.ArtifactKeyOpts{
		Format:       opts.Type + "/" + opts.Format,
		Theme:        string(opts.Theme),
		Width:        opts.Width,
		FrameHeight:  opts.FrameHeight,
		MinWidth:     opts.MinWidth,
		Title:        opts.Title,
		CountName:    opts.CountName,
		ShowSamples:  opts.ShowSamples,
		SortByWeight: opts.SortByWeight,
	}), nil
}
