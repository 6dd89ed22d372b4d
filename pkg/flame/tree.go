// Package flame builds the frame tree that drives flame graph layout.
//
// The tree is three levels deep: a synthetic root labeled "all", one child per
// grouping key (cluster node), and one leaf per record label (thread or task
// action). Weight and sample counts accumulate into every ancestor, so the
// root always carries the totals for the whole document.
package flame

import (
	"math"

	"github.com/esflame/esflame/pkg/errors"
	"github.com/esflame/esflame/pkg/profile"
)

// RootLabel is the label of the synthetic root frame.
const RootLabel = "all"

// weightTolerance is the relative tolerance for the parent-equals-sum-of-
// children check. Accumulated float error over a realistic record set stays
// many orders of magnitude below this.
const weightTolerance = 1e-9

// Node is one frame in the tree. Label is the identity used for coloring and
// search; Detail carries optional tooltip context (e.g. a task description).
type Node struct {
	Label    string
	Detail   string
	Depth    int
	Weight   float64
	Samples  int
	Children []*Node
}

// Leaf reports whether the node has no children.
func (n *Node) Leaf() bool { return len(n.Children) == 0 }

// Walk visits the node and its descendants depth-first in child order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Build constructs the frame tree from merged records. Children appear in
// record order, which after merging is sorted by (GroupKey, Label). An empty
// record set yields a root with zero weight and no children.
func Build(records []profile.Record) *Node {
	root := &Node{Label: RootLabel, Depth: 0}

	groups := map[string]*Node{}
	for _, rec := range records {
		g, ok := groups[rec.GroupKey]
		if !ok {
			g = &Node{Label: rec.DisplayGroup(), Depth: 1}
			groups[rec.GroupKey] = g
			root.Children = append(root.Children, g)
		}

		leaf := &Node{
			Label:   rec.Label,
			Detail:  rec.Detail,
			Depth:   2,
			Weight:  rec.Weight,
			Samples: rec.Samples,
		}
		g.Children = append(g.Children, leaf)
		g.Weight += rec.Weight
		g.Samples += rec.Samples
		root.Weight += rec.Weight
		root.Samples += rec.Samples
	}

	return root
}

// Depth returns the number of levels in the tree, counting the root row.
func Depth(root *Node) int {
	max := 0
	root.Walk(func(n *Node) {
		if n.Depth+1 > max {
			max = n.Depth + 1
		}
	})
	return max
}

// CheckWeights verifies that every interior node's weight equals the sum of
// its children's weights within relative tolerance. A violation means the
// tree was mutated after construction and the graph would lie about
// proportions, so it is a hard error rather than something to renormalize.
func CheckWeights(root *Node) error {
	var check func(n *Node) error
	check = func(n *Node) error {
		if n.Leaf() {
			return nil
		}
		sum := 0.0
		for _, c := range n.Children {
			sum += c.Weight
		}
		if !weightsEqual(n.Weight, sum) {
			return errors.New(errors.ErrCodeInconsistentWeights,
				"frame %q weight %g does not match children sum %g", n.Label, n.Weight, sum)
		}
		for _, c := range n.Children {
			if err := check(c); err != nil {
				return err
			}
		}
		return nil
	}
	return check(root)
}

func weightsEqual(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff == 0 {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return true
	}
	return diff/scale <= weightTolerance
}
