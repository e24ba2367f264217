package forest

import (
	"errors"
	"fmt"
	"math"
)

func validate(a *Artifact) error {
	if a.FormatVersion != FormatVersion {
		return fmt.Errorf("unsupported format_version %d (want %d)", a.FormatVersion, FormatVersion)
	}
	if a.NFeatures <= 0 {
		return fmt.Errorf("n_features must be positive, got %d", a.NFeatures)
	}
	if len(a.FeatureNames) > 0 && len(a.FeatureNames) != a.NFeatures {
		return fmt.Errorf("feature_names has %d entries, n_features is %d", len(a.FeatureNames), a.NFeatures)
	}
	if len(a.Trees) == 0 {
		return errors.New("forest has no trees")
	}

	classes := make(map[int]struct{}, len(a.Classes))
	for _, c := range a.Classes {
		if _, dup := classes[c]; dup {
			return fmt.Errorf("duplicate class %d", c)
		}
		classes[c] = struct{}{}
	}

	for ti := range a.Trees {
		if err := validateTree(&a.Trees[ti], a.NFeatures, classes, len(a.Classes)); err != nil {
			return fmt.Errorf("tree %d: %w", ti, err)
		}
	}
	return nil
}

func validateTree(t *Tree, nFeatures int, classes map[int]struct{}, nClasses int) error {
	if len(t.Nodes) == 0 {
		return errors.New("no nodes")
	}

	for i, n := range t.Nodes {
		if n.IsLeaf {
			if nClasses > 0 {
				if _, ok := classes[n.ClassLabel]; !ok {
					return fmt.Errorf("node %d: class_label %d not in classes", i, n.ClassLabel)
				}
			}
			if len(n.Probabilities) > 0 && len(n.Probabilities) != nClasses {
				return fmt.Errorf("node %d: %d probabilities for %d classes", i, len(n.Probabilities), nClasses)
			}
			for _, p := range n.Probabilities {
				if math.IsNaN(p) || p < 0 {
					return fmt.Errorf("node %d: invalid probability %v", i, p)
				}
			}
			continue
		}

		if n.FeatureIdx < 0 || n.FeatureIdx >= nFeatures {
			return fmt.Errorf("node %d: feature_idx %d out of range [0,%d)", i, n.FeatureIdx, nFeatures)
		}
		if math.IsNaN(n.Threshold) || math.IsInf(n.Threshold, 0) {
			return fmt.Errorf("node %d: threshold is not finite", i)
		}
		for _, child := range []int{n.LeftChild, n.RightChild} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("node %d: child %d must be in (%d,%d)", i, child, i, len(t.Nodes))
			}
		}
	}
	return nil
}
