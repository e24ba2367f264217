// Package forest loads and evaluates a random forest classifier exported as
// flat per-tree node arrays. A loaded Forest is immutable and safe for
// concurrent Predict calls.
package forest

import (
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/mqttguard/internal/domain"
	"github.com/kailas-cloud/mqttguard/internal/domain/feature"
)

// FormatVersion is the artifact format this package reads.
const FormatVersion = 1

// Node is one entry of a tree's pre-order node array.
type Node struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	IsLeaf     bool    `json:"is_leaf"`
	ClassLabel int     `json:"class_label"`
	// Probabilities is aligned with Artifact.Classes. Optional.
	Probabilities []float64 `json:"probabilities,omitempty"`
}

// Tree is a single decision tree. Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Artifact is the on-disk model representation.
type Artifact struct {
	FormatVersion int      `json:"format_version"`
	NFeatures     int      `json:"n_features"`
	FeatureNames  []string `json:"feature_names,omitempty"`
	Classes       []int    `json:"classes,omitempty"`
	Trees         []Tree   `json:"trees"`
}

// Forest is a validated, read-only random forest.
type Forest struct {
	nFeatures    int
	featureNames []string
	classes      []int
	classIndex   map[int]int
	trees        []Tree
	soft         bool
}

// Summary describes a loaded forest.
type Summary struct {
	Trees     int      `json:"trees"`
	Nodes     int      `json:"nodes"`
	MaxDepth  int      `json:"max_depth"`
	NFeatures int      `json:"n_features"`
	Classes   []int    `json:"classes"`
	Features  []string `json:"feature_names,omitempty"`
	SoftVote  bool     `json:"soft_vote"`
}

// New validates an artifact and builds a Forest from it.
func New(a Artifact) (*Forest, error) {
	if err := validate(&a); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrModelLoad, err)
	}

	classes := a.Classes
	if len(classes) == 0 {
		classes = leafLabels(a.Trees)
	}
	classIndex := make(map[int]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}

	return &Forest{
		nFeatures:    a.NFeatures,
		featureNames: slices.Clone(a.FeatureNames),
		classes:      slices.Clone(classes),
		classIndex:   classIndex,
		trees:        a.Trees,
		soft:         len(a.Classes) > 0 && allLeavesHaveProbabilities(a.Trees),
	}, nil
}

// CheckSchema verifies that the forest was trained on the canonical feature order.
func (f *Forest) CheckSchema() error {
	if f.nFeatures != feature.Count {
		return fmt.Errorf("%w: model expects %d features, schema %s has %d",
			domain.ErrModelLoad, f.nFeatures, feature.SchemaVersion, feature.Count)
	}
	if len(f.featureNames) == 0 {
		return nil
	}
	order := feature.Order()
	for i, name := range f.featureNames {
		if name != order[i] {
			return fmt.Errorf("%w: feature %d is %q in model, %q in schema %s",
				domain.ErrModelLoad, i, name, order[i], feature.SchemaVersion)
		}
	}
	return nil
}

// Predict returns the forest's class label for v.
func (f *Forest) Predict(ctx context.Context, v feature.Vector) (int, error) {
	if len(v) != f.nFeatures {
		return 0, fmt.Errorf("%w: got %d features, model expects %d",
			domain.ErrPredictionFailed, len(v), f.nFeatures)
	}

	if f.soft {
		return f.softVote(ctx, v)
	}
	return f.hardVote(ctx, v)
}

// HealthCheck runs inference on the zero vector.
func (f *Forest) HealthCheck(ctx context.Context) error {
	if _, err := f.Predict(ctx, make(feature.Vector, f.nFeatures)); err != nil {
		return fmt.Errorf("model health check: %w", err)
	}
	return nil
}

// Summary reports the forest's shape.
func (f *Forest) Summary() Summary {
	s := Summary{
		Trees:     len(f.trees),
		NFeatures: f.nFeatures,
		Classes:   slices.Clone(f.classes),
		Features:  slices.Clone(f.featureNames),
		SoftVote:  f.soft,
	}
	for _, t := range f.trees {
		s.Nodes += len(t.Nodes)
		if d := t.depth(0); d > s.MaxDepth {
			s.MaxDepth = d
		}
	}
	return s
}

func (f *Forest) hardVote(ctx context.Context, v feature.Vector) (int, error) {
	votes := make([]int, len(f.classes))
	for i := range f.trees {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("%w: %w", domain.ErrPredictionFailed, err)
		}
		leaf := f.trees[i].leaf(v)
		votes[f.classIndex[leaf.ClassLabel]]++
	}

	best := 0
	for i := 1; i < len(votes); i++ {
		if votes[i] > votes[best] || (votes[i] == votes[best] && f.classes[i] < f.classes[best]) {
			best = i
		}
	}
	return f.classes[best], nil
}

func (f *Forest) softVote(ctx context.Context, v feature.Vector) (int, error) {
	sums := make([]float64, len(f.classes))
	for i := range f.trees {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("%w: %w", domain.ErrPredictionFailed, err)
		}
		leaf := f.trees[i].leaf(v)
		for c, p := range leaf.Probabilities {
			sums[c] += p
		}
	}

	// Averaging does not change the argmax; first maximum wins.
	best := 0
	for i := 1; i < len(sums); i++ {
		if sums[i] > sums[best] {
			best = i
		}
	}
	return f.classes[best], nil
}

// leaf walks the tree. Validation guarantees children lie strictly after
// their parent, so the walk terminates.
func (t *Tree) leaf(v feature.Vector) *Node {
	idx := 0
	for {
		n := &t.Nodes[idx]
		if n.IsLeaf {
			return n
		}
		if v[n.FeatureIdx] <= n.Threshold {
			idx = n.LeftChild
		} else {
			idx = n.RightChild
		}
	}
}

func (t *Tree) depth(idx int) int {
	n := t.Nodes[idx]
	if n.IsLeaf {
		return 0
	}
	return 1 + max(t.depth(n.LeftChild), t.depth(n.RightChild))
}

func leafLabels(trees []Tree) []int {
	seen := make(map[int]struct{})
	var labels []int
	for _, t := range trees {
		for _, n := range t.Nodes {
			if !n.IsLeaf {
				continue
			}
			if _, ok := seen[n.ClassLabel]; ok {
				continue
			}
			seen[n.ClassLabel] = struct{}{}
			labels = append(labels, n.ClassLabel)
		}
	}
	slices.Sort(labels)
	return labels
}

func allLeavesHaveProbabilities(trees []Tree) bool {
	for _, t := range trees {
		for _, n := range t.Nodes {
			if n.IsLeaf && len(n.Probabilities) == 0 {
				return false
			}
		}
	}
	return true
}
