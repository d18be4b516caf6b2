package tree

import (
	"fmt"

	"github.com/YuminosukeSato/pgmkit/pkg/errors"
	"github.com/YuminosukeSato/pgmkit/pkg/log"
)

// BuildTree grows a tree from records. A node becomes a leaf, checked in
// this order, when depth has reached maxDepth, when it holds fewer than
// minSamples records, when all its records share one target value, or when
// no feature has positive information gain. Leaves predict the plurality
// target value, ties going to the value seen first.
//
// The result depends only on the inputs and their order.
func BuildTree(records []Record, features []string, target string, maxDepth, minSamples int) (root *Node, err error) {
	const op = "tree.BuildTree"
	defer errors.Recover(&err, op)

	if err := validate(op, records, features, target, maxDepth, minSamples); err != nil {
		return nil, err
	}

	b := builder{
		features:   features,
		target:     target,
		maxDepth:   maxDepth,
		minSamples: minSamples,
		logger:     log.GetLoggerWithName("tree"),
	}
	root = b.build(records, 0)

	b.logger.Debug("tree built",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(records),
		log.FeaturesKey, len(features),
		log.DepthKey, root.Depth(),
	)
	return root, nil
}

func validate(op string, records []Record, features []string, target string, maxDepth, minSamples int) error {
	if maxDepth < 1 {
		return errors.NewInvalidConfigurationError(op, "maxDepth", "must be >= 1", maxDepth)
	}
	if minSamples < 1 {
		return errors.NewInvalidConfigurationError(op, "minSamples", "must be >= 1", minSamples)
	}
	if len(records) == 0 {
		return errors.NewEmptyDataError(op, "records")
	}
	if target == "" {
		return errors.NewInvalidConfigurationError(op, "target", "must name a feature", target)
	}
	if len(features) == 0 {
		return errors.NewInvalidConfigurationError(op, "features", "at least one candidate feature is required", 0)
	}
	for _, f := range features {
		if f == target {
			return errors.NewInvalidConfigurationError(op, "features", "must not contain the target", f)
		}
	}
	for i, r := range records {
		if _, ok := r[target]; !ok {
			return errors.NewInvalidConfigurationError(op, fmt.Sprintf("records[%d]", i), "target value is missing", target)
		}
		for _, f := range features {
			if _, ok := r[f]; !ok {
				return errors.NewInvalidConfigurationError(op, fmt.Sprintf("records[%d]", i), "feature value is missing", f)
			}
		}
	}
	return nil
}

type builder struct {
	features   []string
	target     string
	maxDepth   int
	minSamples int
	logger     log.Logger
}

func (b *builder) build(records []Record, depth int) *Node {
	order, counts := classCounts(records, b.target)
	node := &Node{
		Prediction:   plurality(order, counts),
		Samples:      len(records),
		Distribution: counts,
		Entropy:      entropyOf(order, counts, len(records)),
	}

	if depth >= b.maxDepth || len(records) < b.minSamples || len(order) == 1 {
		return node
	}
	feature, gain := FindBestSplit(records, b.features, b.target)
	if feature == "" {
		return node
	}

	values, groups := partition(records, feature)
	left := groups[values[0]]
	right := make([]Record, 0, len(records)-len(left))
	for _, v := range values[1:] {
		right = append(right, groups[v]...)
	}

	b.logger.Debug("split chosen",
		log.FeatureKey, feature,
		log.GainKey, gain,
		log.DepthKey, depth,
		log.SamplesKey, len(records),
	)

	node.Feature = feature
	node.SplitValue = values[0]
	node.Values = values
	node.Gain = gain
	node.Left = b.build(left, depth+1)
	node.Right = b.build(right, depth+1)
	node.SplitGain = node.Entropy -
		(float64(node.Left.Samples)*node.Left.Entropy+float64(node.Right.Samples)*node.Right.Entropy)/float64(node.Samples)
	return node
}

// plurality returns the most frequent class, ties going to the earliest.
func plurality(order []string, counts map[string]int) string {
	best, bestCount := "", -1
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}
