package tree

import (
	"github.com/YuminosukeSato/pgmkit/pkg/errors"
)

// Predict walks root with record and returns the leaf's prediction. At a
// split, a record whose value equals SplitValue goes left and any other
// value, including one never seen in training, goes right. A record lacking
// a split feature fails with MissingFeatureError; callers wanting defaults
// should fill them first, e.g. with preprocessing.PluralityImputer.
func Predict(record Record, root *Node) (string, error) {
	const op = "tree.Predict"

	if root == nil {
		return "", errors.NewInvalidConfigurationError(op, "tree", "must not be nil", nil)
	}
	node := root
	for !node.IsLeaf() {
		v, ok := record[node.Feature]
		if !ok {
			return "", errors.NewMissingFeatureError(op, node.Feature)
		}
		if v == node.SplitValue {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Prediction, nil
}
