package flame

import (
	"math"
	"testing"

	"github.com/esflame/esflame/pkg/errors"
	"github.com/esflame/esflame/pkg/profile"
)

func sampleRecords() []profile.Record {
	return profile.Merge([]profile.Record{
		{GroupKey: "node1", GroupName: "node-1", Label: "threadA", Weight: 3.6, Samples: 10},
		{GroupKey: "node2", GroupName: "node-2", Label: "threadA", Weight: 4.3, Samples: 10},
		{GroupKey: "node3", GroupName: "node-3", Label: "threadB", Weight: 5.8, Samples: 10},
		{GroupKey: "node3", GroupName: "node-3", Label: "threadC", Weight: 4.0, Samples: 10},
	})
}

func TestBuildShape(t *testing.T) {
	root := Build(sampleRecords())

	if got, want := root.Label, RootLabel; got != want {
		t.Errorf("root label = %q, want %q", got, want)
	}
	if got, want := len(root.Children), 3; got != want {
		t.Fatalf("group count = %d, want %d", got, want)
	}
	if got, want := Depth(root), 3; got != want {
		t.Errorf("depth = %d, want %d", got, want)
	}

	node3 := root.Children[2]
	if got, want := len(node3.Children), 2; got != want {
		t.Fatalf("node3 leaf count = %d, want %d", got, want)
	}
	if math.Abs(node3.Weight-9.8) > 1e-9 {
		t.Errorf("node3 weight = %g, want 9.8", node3.Weight)
	}
}

func TestBuildAccumulatesToRoot(t *testing.T) {
	root := Build(sampleRecords())

	if math.Abs(root.Weight-17.7) > 1e-9 {
		t.Errorf("root weight = %g, want 17.7", root.Weight)
	}
	if got, want := root.Samples, 40; got != want {
		t.Errorf("root samples = %d, want %d", got, want)
	}
}

func TestBuildEmpty(t *testing.T) {
	root := Build(nil)

	if root.Weight != 0 || len(root.Children) != 0 {
		t.Errorf("empty build: weight %g, children %d; want zero root", root.Weight, len(root.Children))
	}
	if got, want := Depth(root), 1; got != want {
		t.Errorf("depth = %d, want %d", got, want)
	}
}

func TestCheckWeights(t *testing.T) {
	root := Build(sampleRecords())
	if err := CheckWeights(root); err != nil {
		t.Errorf("CheckWeights on a fresh tree: %v", err)
	}
}

func TestCheckWeightsViolation(t *testing.T) {
	root := Build(sampleRecords())
	root.Children[0].Weight += 1.0

	err := CheckWeights(root)
	if err == nil {
		t.Fatal("expected weight inconsistency error")
	}
	if !errors.Is(err, errors.ErrCodeInconsistentWeights) {
		t.Errorf("error = %v, want INCONSISTENT_WEIGHTS", err)
	}
}

func TestCheckWeightsToleratesFloatNoise(t *testing.T) {
	root := Build(sampleRecords())
	root.Weight += root.Weight * 1e-12

	if err := CheckWeights(root); err != nil {
		t.Errorf("relative error below tolerance should pass: %v", err)
	}
}

func TestWalkOrder(t *testing.T) {
	root := Build(sampleRecords())

	var labels []string
	root.Walk(func(n *Node) { labels = append(labels, n.Label) })

	if got, want := labels[0], RootLabel; got != want {
		t.Errorf("first visited = %q, want %q", got, want)
	}
	if got, want := len(labels), 8; got != want {
		t.Errorf("visited count = %d, want %d", got, want)
	}
}
