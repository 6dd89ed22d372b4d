// Package profile defines the normalized record model shared by all input
// parsers and consumed by the flame graph pipeline.
//
// Every parser reduces its source format (Hot Threads text, _tasks JSON) to a
// flat list of [Record] values: one observed unit of work attributed to a
// grouping key (a cluster node) and a label (a thread or action name). Records
// are immutable once produced; all downstream aggregation happens on copies.
package profile

import (
	"slices"
	"strings"

	"github.com/esflame/esflame/pkg/errors"
)

// Record is one normalized unit of measured work.
type Record struct {
	// GroupKey identifies the first hierarchy level, e.g. a node ID.
	GroupKey string `json:"group_key"`

	// GroupName is an optional display name for the group (e.g. the node
	// name). Falls back to GroupKey when empty.
	GroupName string `json:"group_name,omitempty"`

	// Label is the leaf identity: a thread name or task action. Used verbatim
	// for merging, coloring, search and tooltips.
	Label string `json:"label"`

	// Weight is the time or cost measure in milliseconds. This is the sole
	// quantity rendered proportionally.
	Weight float64 `json:"weight"`

	// Samples is an optional secondary metric (snapshot or task count).
	Samples int `json:"samples,omitempty"`

	// Detail is an optional supplement shown in tooltips (e.g. a task
	// description), resolved once at parse time.
	Detail string `json:"detail,omitempty"`
}

// Validate checks the record against the model's invariants.
func (r Record) Validate() error {
	if strings.TrimSpace(r.GroupKey) == "" {
		return errors.New(errors.ErrCodeInvalidRecord, "record is missing a group key")
	}
	if strings.TrimSpace(r.Label) == "" {
		return errors.New(errors.ErrCodeInvalidRecord, "record %q is missing a label", r.GroupKey)
	}
	if r.Weight < 0 {
		return errors.New(errors.ErrCodeInvalidRecord, "record %q/%q has negative weight %g", r.GroupKey, r.Label, r.Weight)
	}
	if r.Samples < 0 {
		return errors.New(errors.ErrCodeInvalidRecord, "record %q/%q has negative sample count %d", r.GroupKey, r.Label, r.Samples)
	}
	return nil
}

// DisplayGroup returns the group display name, falling back to the key.
func (r Record) DisplayGroup() string {
	if r.GroupName != "" {
		return r.GroupName
	}
	return r.GroupKey
}

// Source identifiers for parsed documents.
const (
	SourceHotThreads = "hotthreads"
	SourceTasks      = "tasks"
)

// Document is the output of one parser run over one input document.
type Document struct {
	// Source names the parser that produced the records.
	Source string `json:"source"`

	// Records is the flat record list. May be empty for a valid document
	// that simply contains no measured work.
	Records []Record `json:"records"`

	// Interval is the Hot Threads sampling interval in milliseconds.
	// Zero for tasks documents, where no interval applies.
	Interval float64 `json:"interval,omitempty"`
}

// TotalWeight returns the summed weight of all records.
func (d Document) TotalWeight() float64 {
	var total float64
	for _, r := range d.Records {
		total += r.Weight
	}
	return total
}

// GroupKeys returns the distinct group keys in sorted order.
func (d Document) GroupKeys() []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, r := range d.Records {
		if _, ok := seen[r.GroupKey]; !ok {
			seen[r.GroupKey] = struct{}{}
			keys = append(keys, r.GroupKey)
		}
	}
	slices.Sort(keys)
	return keys
}

// ByGroup partitions the records by group key. Each partition is an
// independent record subset suitable for a per-group pipeline run.
func (d Document) ByGroup() map[string][]Record {
	groups := make(map[string][]Record)
	for _, r := range d.Records {
		groups[r.GroupKey] = append(groups[r.GroupKey], r)
	}
	return groups
}
