// Package cache provides the artifact cache used by the rendering pipeline.
//
// Rendered flame graphs are deterministic functions of the input records and
// the render options, so re-running the tool over the same dump can reuse the
// previous output. Three backends are provided:
//   - file: directory-based cache for CLI usage (~/.cache/esflame/)
//   - redis: shared cache for batch environments
//   - null: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is the interface all cache backends implement.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the key
	// was present (a miss is not an error).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Cache TTLs per entry kind.
const (
	// TTLRecords is how long parsed record sets are kept.
	TTLRecords = 24 * time.Hour

	// TTLArtifact is how long rendered artifacts are kept.
	TTLArtifact = 7 * 24 * time.Hour
)

// RecordsKeyOpts are the options that distinguish parsed record sets.
type RecordsKeyOpts struct {
	Source string // "hotthreads" or "tasks"
}

// ArtifactKeyOpts are the render options that distinguish artifacts.
type ArtifactKeyOpts struct {
	Format      string
	Theme       string
	Width       int
	FrameHeight int
	MinWidth    string
	Title       string
	CountName   string
	ShowSamples bool
	SortByWeight bool
}

// Keyer generates cache keys for pipeline stages.
type Keyer interface {
	// RecordsKey generates a key for a parsed record set given the hash of
	// the raw input document.
	RecordsKey(inputHash string, opts RecordsKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact given the hash of
	// the merged record set.
	ArtifactKey(recordsHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// RecordsKey generates a key for a parsed record set.
func (k *DefaultKeyer) RecordsKey(inputHash string, opts RecordsKeyOpts) string {
	return hashKey("records", inputHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(recordsHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", recordsHash, opts)
}
