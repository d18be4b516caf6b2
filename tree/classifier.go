package tree

import (
	"fmt"
	"sort"

	"github.com/YuminosukeSato/pgmkit/core/model"
	"github.com/YuminosukeSato/pgmkit/metrics"
	"github.com/YuminosukeSato/pgmkit/pkg/errors"
	"github.com/YuminosukeSato/pgmkit/pkg/log"
	"github.com/YuminosukeSato/pgmkit/preprocessing"
)

const (
	defaultMaxDepth   = 3
	defaultMinSamples = 2
)

// Classifier wraps BuildTree and Predict behind a Fit/Predict/Score
// estimator.
type Classifier struct {
	state *model.StateManager

	maxDepth   int
	minSamples int
	target     string
	impute     bool
	logger     log.Logger
	// userFeatures is the WithFeatures list; nil means infer on every Fit.
	userFeatures []string

	features []string
	root     *Node
	imputer  *preprocessing.PluralityImputer
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithMaxDepth sets the maximum number of split levels. Default 3.
func WithMaxDepth(depth int) Option {
	return func(c *Classifier) {
		c.maxDepth = depth
	}
}

// WithMinSamples sets the smallest node that may still be split. Default 2.
func WithMinSamples(n int) Option {
	return func(c *Classifier) {
		c.minSamples = n
	}
}

// WithTarget names the feature to predict.
func WithTarget(target string) Option {
	return func(c *Classifier) {
		c.target = target
	}
}

// WithFeatures fixes the candidate split features and their tie-break
// order. Without it Fit uses every non-target feature in sorted order.
func WithFeatures(features ...string) Option {
	return func(c *Classifier) {
		c.userFeatures = append([]string(nil), features...)
	}
}

// WithImputeMissing makes Predict fill features absent from a query with
// their training plurality value instead of failing.
func WithImputeMissing(enabled bool) Option {
	return func(c *Classifier) {
		c.impute = enabled
	}
}

// WithLogger sets the logger for fit summaries.
func WithLogger(l log.Logger) Option {
	return func(c *Classifier) {
		c.logger = l
	}
}

// NewClassifier creates an unfitted classifier.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		state:      model.NewStateManager(),
		maxDepth:   defaultMaxDepth,
		minSamples: defaultMinSamples,
		logger:     log.GetLoggerWithName("tree"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fit grows the tree from records. Refitting replaces the previous tree and,
// without WithFeatures, re-infers the candidate features from the new
// records.
func (c *Classifier) Fit(records []Record) error {
	const op = "Classifier.Fit"
	if c.target == "" {
		return errors.NewInvalidConfigurationError(op, "target", "set one with WithTarget", "")
	}

	features := c.userFeatures
	if features == nil {
		features = inferFeatures(records, c.target)
	}

	root, err := BuildTree(records, features, c.target, c.maxDepth, c.minSamples)
	if err != nil {
		return errors.Wrap(err, "fit decision tree")
	}

	var imputer *preprocessing.PluralityImputer
	if c.impute {
		imputer = preprocessing.NewPluralityImputer(features)
		if err := imputer.Fit(records); err != nil {
			return err
		}
	}

	c.features = features
	c.root = root
	c.imputer = imputer
	c.state.SetFitted(len(features), len(records))

	c.logger.Debug("classifier fitted",
		log.ModelNameKey, "DecisionTree",
		log.SamplesKey, len(records),
		log.FeaturesKey, len(features),
		log.DepthKey, root.Depth(),
	)
	return nil
}

// Predict classifies one record.
func (c *Classifier) Predict(record Record) (string, error) {
	if err := c.state.RequireFitted("DecisionTree", "Predict"); err != nil {
		return "", err
	}
	if c.imputer != nil {
		filled, err := c.imputer.Transform(record)
		if err != nil {
			return "", err
		}
		record = filled
	}
	return Predict(record, c.root)
}

// PredictAll classifies each record, stopping at the first failure.
func (c *Classifier) PredictAll(records []Record) ([]string, error) {
	out := make([]string, len(records))
	for i, r := range records {
		p, err := c.Predict(r)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		out[i] = p
	}
	return out, nil
}

// Score returns the fraction of records whose target the tree predicts.
func (c *Classifier) Score(records []Record) (float64, error) {
	if err := c.state.RequireFitted("DecisionTree", "Score"); err != nil {
		return 0, err
	}
	pred, err := c.PredictAll(records)
	if err != nil {
		return 0, err
	}
	truth := make([]string, len(records))
	for i, r := range records {
		v, ok := r[c.target]
		if !ok {
			return 0, errors.NewMissingFeatureError("Classifier.Score", c.target)
		}
		truth[i] = v
	}
	return metrics.Accuracy(truth, pred)
}

// Root returns the fitted tree, or nil before Fit.
func (c *Classifier) Root() *Node {
	return c.root
}

// Features returns the candidate features of the last successful Fit in
// tie-break order.
func (c *Classifier) Features() []string {
	return c.features
}

// IsFitted reports whether Fit has succeeded.
func (c *Classifier) IsFitted() bool {
	return c.state.IsFitted()
}

// GetParams returns the hyperparameters.
func (c *Classifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":      c.maxDepth,
		"min_samples":    c.minSamples,
		"target":         c.target,
		"impute_missing": c.impute,
	}
}

func (c *Classifier) String() string {
	return fmt.Sprintf("DecisionTree(max_depth=%d, min_samples=%d, target=%q)", c.maxDepth, c.minSamples, c.target)
}

// inferFeatures lists every non-target key of records, sorted.
func inferFeatures(records []Record, target string) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			if k != target {
				seen[k] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
