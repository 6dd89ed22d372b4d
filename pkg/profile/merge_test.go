package profile

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestMergeSumsDuplicates(t *testing.T) {
	records := []Record{
		{GroupKey: "nodeX", Label: "threadA", Weight: 2.0, Samples: 5},
		{GroupKey: "nodeX", Label: "threadA", Weight: 1.5, Samples: 3},
	}

	merged := Merge(records)

	if got, want := len(merged), 1; got != want {
		t.Fatalf("merged length = %d, want %d", got, want)
	}
	if got, want := merged[0].Weight, 3.5; got != want {
		t.Errorf("weight = %g, want %g", got, want)
	}
	if got, want := merged[0].Samples, 8; got != want {
		t.Errorf("samples = %d, want %d", got, want)
	}
}

func TestMergeKeepsDistinctPairs(t *testing.T) {
	records := []Record{
		{GroupKey: "node1", Label: "threadA", Weight: 3.6, Samples: 1},
		{GroupKey: "node2", Label: "threadA", Weight: 4.3, Samples: 1},
		{GroupKey: "node3", Label: "threadB", Weight: 5.8, Samples: 1},
		{GroupKey: "node3", Label: "threadC", Weight: 4.0, Samples: 1},
	}

	merged := Merge(records)

	if got, want := len(merged), 4; got != want {
		t.Fatalf("merged length = %d, want %d", got, want)
	}
	// Same label under different groups must stay separate.
	if merged[0].GroupKey == merged[1].GroupKey {
		t.Error("records with distinct group keys were merged")
	}
}

func TestMergeCommutative(t *testing.T) {
	records := []Record{
		{GroupKey: "n1", Label: "a", Weight: 1.0, Samples: 1},
		{GroupKey: "n1", Label: "b", Weight: 2.0, Samples: 2},
		{GroupKey: "n2", Label: "a", Weight: 3.0, Samples: 3},
		{GroupKey: "n1", Label: "a", Weight: 4.0, Samples: 4},
		{GroupKey: "n2", Label: "c", Weight: 5.0, Samples: 5},
	}

	want := Merge(records)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]Record(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := Merge(shuffled); !reflect.DeepEqual(got, want) {
			t.Fatalf("merge not permutation-invariant:\ngot  %+v\nwant %+v", got, want)
		}
	}
}

func TestMergeEmptyInput(t *testing.T) {
	if got := Merge(nil); len(got) != 0 {
		t.Errorf("Merge(nil) = %v, want empty", got)
	}
	if got := Merge([]Record{}); len(got) != 0 {
		t.Errorf("Merge(empty) = %v, want empty", got)
	}
}

func TestMergeKeepsFirstDetail(t *testing.T) {
	records := []Record{
		{GroupKey: "n1", Label: "a", Weight: 1.0, Detail: ""},
		{GroupKey: "n1", Label: "a", Weight: 1.0, Detail: "indices[logs-*]"},
	}

	merged := Merge(records)
	if got, want := merged[0].Detail, "indices[logs-*]"; got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"valid", Record{GroupKey: "n1", Label: "t1", Weight: 1.0}, false},
		{"zero weight", Record{GroupKey: "n1", Label: "t1"}, false},
		{"empty group", Record{Label: "t1", Weight: 1.0}, true},
		{"empty label", Record{GroupKey: "n1", Weight: 1.0}, true},
		{"negative weight", Record{GroupKey: "n1", Label: "t1", Weight: -1}, true},
		{"negative samples", Record{GroupKey: "n1", Label: "t1", Samples: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.rec.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDocumentHelpers(t *testing.T) {
	doc := Document{
		Source: SourceHotThreads,
		Records: []Record{
			{GroupKey: "n2", Label: "a", Weight: 1.0},
			{GroupKey: "n1", Label: "b", Weight: 2.0},
			{GroupKey: "n2", Label: "c", Weight: 3.0},
		},
	}

	if got, want := doc.TotalWeight(), 6.0; got != want {
		t.Errorf("TotalWeight = %g, want %g", got, want)
	}
	if got, want := doc.GroupKeys(), []string{"n1", "n2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("GroupKeys = %v, want %v", got, want)
	}
	if got, want := len(doc.ByGroup()["n2"]), 2; got != want {
		t.Errorf("ByGroup[n2] length = %d, want %d", got, want)
	}
}
