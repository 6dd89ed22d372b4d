package profile

import (
	"cmp"
	"slices"
)

// mergeKey identifies a distinct (group, label) pair.
type mergeKey struct {
	group string
	label string
}

// Merge collapses duplicate (GroupKey, Label) records by summing Weight and
// Samples exactly. The reduction is a keyed accumulation, so any permutation
// of the input yields the same result. The first non-empty GroupName and
// Detail are kept. Output is sorted by (GroupKey, Label) for determinism;
// an empty input yields an empty output.
func Merge(records []Record) []Record {
	if len(records) == 0 {
		return nil
	}

	merged := make(map[mergeKey]Record, len(records))
	for _, r := range records {
		k := mergeKey{r.GroupKey, r.Label}
		acc, ok := merged[k]
		if !ok {
			merged[k] = r
			continue
		}
		acc.Weight += r.Weight
		acc.Samples += r.Samples
		if acc.GroupName == "" {
			acc.GroupName = r.GroupName
		}
		if acc.Detail == "" {
			acc.Detail = r.Detail
		}
		merged[k] = acc
	}

	out := make([]Record, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Record) int {
		if c := cmp.Compare(a.GroupKey, b.GroupKey); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}
