// Standard attribute keys shared by every package that logs. Keys follow a
// hierarchical "area.name" convention so records can be filtered by prefix.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the model or scenario, e.g. "IceCream", "PlayTennis".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples or records.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of candidate features.
	FeaturesKey = "data.features"

	// StatesKey is the number of hidden states of an HMM.
	StatesKey = "hmm.states"

	// SymbolsKey is the size of an HMM observation vocabulary.
	SymbolsKey = "hmm.symbols"

	// StepsKey is the length T of an observation sequence.
	StepsKey = "hmm.steps"
)

// Results
const (
	// ProbabilityKey records P(O|λ) or a path probability.
	ProbabilityKey = "result.probability"

	// LogLikelihoodKey records a log-likelihood.
	LogLikelihoodKey = "result.log_likelihood"

	// AccuracyKey records an accuracy percentage or ratio.
	AccuracyKey = "metrics.accuracy"

	// FamilyKey is the distribution family of an MLE run.
	FamilyKey = "mle.family"

	// FeatureKey is the feature chosen for a split.
	FeatureKey = "tree.feature"

	// GainKey is the information gain of a split.
	GainKey = "tree.gain"

	// DepthKey is the depth of a tree node.
	DepthKey = "tree.depth"
)

// Configuration
const (
	// HyperParamsKey contains configuration as a structured object.
	HyperParamsKey = "model.hyperparams"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute value constants for operations.
const (
	OperationForward   = "forward"
	OperationBackward  = "backward"
	OperationViterbi   = "viterbi"
	OperationPosterior = "posterior"
	OperationSample    = "sample"
	OperationEstimate  = "estimate"
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
)
