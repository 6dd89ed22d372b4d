// Package tasks parses Elasticsearch _tasks API JSON output into normalized
// profile records.
//
// Input is either a single JSON object or several concatenated objects (as
// produced by repeatedly appending _tasks responses to one capture file). The
// task action becomes the leaf label and running_time_in_nanos, converted to
// milliseconds, becomes the weight. Each task contributes one record with a
// sample count of one; duplicate (node, action) pairs are collapsed later by
// the merger.
package tasks

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/esflame/esflame/pkg/errors"
	"github.com/esflame/esflame/pkg/profile"
)

// task mirrors the per-task object of a _tasks response. Only the fields the
// record model needs are decoded.
type task struct {
	Action           string      `json:"action"`
	Description      string      `json:"description"`
	RunningTimeNanos json.Number `json:"running_time_in_nanos"`
}

// nodeEntry mirrors the per-node object of a _tasks response.
type nodeEntry struct {
	Name  string          `json:"name"`
	Tasks map[string]task `json:"tasks"`
}

// Parse reads _tasks JSON from r and returns the normalized document.
func Parse(r io.Reader) (profile.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return profile.Document{}, errors.Wrap(errors.ErrCodeParseFailed, err, "read tasks input")
	}
	return ParseText(string(data))
}

// ParseText parses one or more concatenated _tasks JSON objects.
// Malformed JSON fails the whole document; an input whose objects contain no
// tasks yields an empty document.
func ParseText(text string) (profile.Document, error) {
	doc := profile.Document{Source: profile.SourceTasks}

	if strings.TrimSpace(text) == "" {
		return profile.Document{}, errors.New(errors.ErrCodeParseFailed, "no JSON data in tasks input")
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	objects := 0
	for {
		var raw map[string]json.RawMessage
		if err := dec.Decode(&raw); err == io.EOF {
			break
		} else if err != nil {
			return profile.Document{}, errors.Wrap(errors.ErrCodeParseFailed, err, "decode tasks JSON")
		}
		objects++

		records, err := extractRecords(raw)
		if err != nil {
			return profile.Document{}, err
		}
		doc.Records = append(doc.Records, records...)
	}

	if objects == 0 {
		return profile.Document{}, errors.New(errors.ErrCodeParseFailed, "no JSON objects in tasks input")
	}
	return doc, nil
}

// extractRecords pulls task records out of one decoded response object.
// Both the wrapped form {"nodes": {id: {...}}} and the bare {id: {...}} form
// are accepted.
func extractRecords(raw map[string]json.RawMessage) ([]profile.Record, error) {
	nodesRaw := raw
	if wrapped, ok := raw["nodes"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(wrapped, &inner); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "decode nodes object")
		}
		nodesRaw = inner
	}

	var records []profile.Record
	for nodeID, entryRaw := range nodesRaw {
		var entry nodeEntry
		if err := json.Unmarshal(entryRaw, &entry); err != nil {
			// Non-node keys (e.g. "node_failures") are skipped, not fatal.
			continue
		}
		if entry.Tasks == nil {
			continue
		}

		name := entry.Name
		if name == "" {
			name = nodeID
		}
		for _, t := range entry.Tasks {
			if t.Action == "" {
				continue
			}
			records = append(records, profile.Record{
				GroupKey:  nodeID,
				GroupName: name,
				Label:     t.Action,
				Weight:    nanosToMillis(t.RunningTimeNanos),
				Samples:   1,
				Detail:    t.Description,
			})
		}
	}
	return records, nil
}

// nanosToMillis converts a running_time_in_nanos value to milliseconds.
// Unparseable values count as zero work rather than failing the document.
func nanosToMillis(n json.Number) float64 {
	if n == "" {
		return 0
	}
	v, err := n.Float64()
	if err != nil || v < 0 {
		return 0
	}
	return v / 1e6
}
