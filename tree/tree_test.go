package tree

import (
	"math"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/pgmkit/pkg/errors"
)

func TestEntropy(t *testing.T) {
	ds := PlayTennis()

	tests := []struct {
		name    string
		records []Record
		want    float64
	}{
		{"empty", nil, 0},
		{"pure", []Record{{"y": "a"}, {"y": "a"}}, 0},
		{"even split", []Record{{"y": "a"}, {"y": "b"}}, 1},
		{"four classes", []Record{{"y": "a"}, {"y": "b"}, {"y": "c"}, {"y": "d"}}, 2},
		{"play tennis", ds.Records, 0.940286},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "y"
			if tt.name == "play tennis" {
				target = ds.Target
			}
			assert.InDelta(t, tt.want, Entropy(tt.records, target), 1e-6)
		})
	}
}

func TestInformationGain_PlayTennis(t *testing.T) {
	ds := PlayTennis()
	want := map[string]float64{
		"outlook":     0.2467,
		"humidity":    0.1518,
		"windy":       0.0481,
		"temperature": 0.0292,
	}
	for feature, g := range want {
		assert.InDelta(t, g, InformationGain(ds.Records, feature, ds.Target), 1e-4, feature)
	}
	assert.Zero(t, InformationGain(nil, "outlook", "play"))
}

func TestFindBestSplit(t *testing.T) {
	ds := PlayTennis()

	feature, gain := FindBestSplit(ds.Records, ds.Features, ds.Target)
	assert.Equal(t, "outlook", feature)
	assert.InDelta(t, 0.2467, gain, 1e-4)

	t.Run("ties go to the first feature", func(t *testing.T) {
		records := []Record{
			{"a": "0", "b": "0", "y": "n"},
			{"a": "1", "b": "1", "y": "p"},
		}
		f, _ := FindBestSplit(records, []string{"b", "a"}, "y")
		assert.Equal(t, "b", f)
		f, _ = FindBestSplit(records, []string{"a", "b"}, "y")
		assert.Equal(t, "a", f)
	})

	t.Run("no useful feature", func(t *testing.T) {
		records := []Record{
			{"a": "0", "y": "n"},
			{"a": "0", "y": "p"},
		}
		f, g := FindBestSplit(records, []string{"a"}, "y")
		assert.Empty(t, f)
		assert.Zero(t, g)
	})

	t.Run("wide feature set", func(t *testing.T) {
		records := make([]Record, 8)
		var features []string
		for j := 0; j < 40; j++ {
			features = append(features, "f"+strconv.Itoa(j))
		}
		for i := range records {
			r := Record{"y": strconv.Itoa(i % 2)}
			for _, f := range features {
				r[f] = "same"
			}
			records[i] = r
		}
		records[0]["f31"], records[2]["f31"] = "odd", "odd"
		for i := range records {
			records[i]["f37"] = records[i]["y"]
		}
		f, g := FindBestSplit(records, features, "y")
		assert.Equal(t, "f37", f)
		assert.InDelta(t, 1.0, g, 1e-12)
	})
}

func TestBuildTree_PlayTennis(t *testing.T) {
	ds := PlayTennis()
	root, err := BuildTree(ds.Records, ds.Features, ds.Target, 3, 2)
	require.NoError(t, err)

	assert.Equal(t, "outlook", root.Feature)
	assert.Equal(t, "sunny", root.SplitValue)
	assert.Equal(t, []string{"sunny", "overcast", "rain"}, root.Values)
	assert.Equal(t, 14, root.Samples)
	assert.Equal(t, map[string]int{"no": 5, "yes": 9}, root.Distribution)

	sunny := root.Left
	assert.Equal(t, "humidity", sunny.Feature)
	assert.Equal(t, "high", sunny.SplitValue)
	assert.Equal(t, "no", sunny.Left.Prediction)
	assert.Equal(t, "yes", sunny.Right.Prediction)

	rest := root.Right
	assert.Equal(t, "windy", rest.Feature)
	assert.Equal(t, "false", rest.SplitValue)
	assert.True(t, rest.Left.IsLeaf())
	assert.Equal(t, "yes", rest.Left.Prediction)
	assert.Equal(t, "outlook", rest.Right.Feature)
	assert.Equal(t, "rain", rest.Right.SplitValue)

	assert.Equal(t, 3, root.Depth())
	assert.Len(t, root.Leaves(), 5)

	// sunny-vs-rest separates less than the three-way outlook partition
	assert.InDelta(t, 0.2467, root.Gain, 1e-4)
	assert.InDelta(t, 0.1022, root.SplitGain, 1e-4)
	// two-valued features split exactly as scored
	assert.InDelta(t, sunny.Gain, sunny.SplitGain, 1e-12)
	assert.InDelta(t, rest.Gain, rest.SplitGain, 1e-12)

	for i, r := range ds.Records {
		got, err := Predict(r, root)
		require.NoError(t, err)
		assert.Equal(t, r[ds.Target], got, "record %d", i)
	}
}

func TestBuildTree_LeafConditions(t *testing.T) {
	ds := PlayTennis()

	t.Run("depth limit", func(t *testing.T) {
		root, err := BuildTree(ds.Records, ds.Features, ds.Target, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, root.Depth())
		assert.Equal(t, "no", root.Left.Prediction)
		assert.Equal(t, "yes", root.Right.Prediction)
	})

	t.Run("min samples", func(t *testing.T) {
		root, err := BuildTree(ds.Records, ds.Features, ds.Target, 3, 15)
		require.NoError(t, err)
		assert.True(t, root.IsLeaf())
		assert.Equal(t, "yes", root.Prediction)
	})

	t.Run("pure", func(t *testing.T) {
		records := []Record{{"a": "0", "y": "p"}, {"a": "1", "y": "p"}}
		root, err := BuildTree(records, []string{"a"}, "y", 3, 1)
		require.NoError(t, err)
		assert.True(t, root.IsLeaf())
		assert.Zero(t, root.Entropy)
	})

	t.Run("zero gain keeps first-seen plurality", func(t *testing.T) {
		records := []Record{
			{"a": "0", "y": "q"},
			{"a": "0", "y": "p"},
		}
		root, err := BuildTree(records, []string{"a"}, "y", 3, 1)
		require.NoError(t, err)
		assert.True(t, root.IsLeaf())
		assert.Equal(t, "q", root.Prediction)
		assert.InDelta(t, 1.0, root.Entropy, 1e-12)
	})
}

func TestBuildTree_Errors(t *testing.T) {
	ds := PlayTennis()
	tests := []struct {
		name       string
		records    []Record
		features   []string
		target     string
		maxDepth   int
		minSamples int
	}{
		{"zero max depth", ds.Records, ds.Features, ds.Target, 0, 2},
		{"zero min samples", ds.Records, ds.Features, ds.Target, 3, 0},
		{"empty records", nil, ds.Features, ds.Target, 3, 2},
		{"empty target", ds.Records, ds.Features, "", 3, 2},
		{"no features", ds.Records, nil, ds.Target, 3, 2},
		{"target among features", ds.Records, []string{"outlook", "play"}, ds.Target, 3, 2},
		{"record lacks feature", []Record{{"play": "yes"}}, []string{"outlook"}, "play", 3, 2},
		{"record lacks target", []Record{{"outlook": "sunny"}}, []string{"outlook"}, "play", 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := BuildTree(tt.records, tt.features, tt.target, tt.maxDepth, tt.minSamples)
			assert.Nil(t, root)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration), "got %v", err)
		})
	}
}

func TestBuildTree_EmptyDataset(t *testing.T) {
	_, err := BuildTree(nil, []string{"outlook"}, "play", 3, 2)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = BuildTree(PlayTennis().Records, []string{"outlook"}, "play", 0, 2)
	assert.False(t, errors.Is(err, errors.ErrEmptyData))
}

func TestPredict(t *testing.T) {
	ds := PlayTennis()
	root, err := BuildTree(ds.Records, ds.Features, ds.Target, 3, 2)
	require.NoError(t, err)

	t.Run("missing feature", func(t *testing.T) {
		_, err := Predict(Record{"humidity": "high"}, root)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrMissingFeature))
		var mf *errors.MissingFeatureError
		require.True(t, errors.As(err, &mf))
		assert.Equal(t, "outlook", mf.Feature)
	})

	t.Run("unseen value goes right", func(t *testing.T) {
		got, err := Predict(Record{"outlook": "foggy", "windy": "false"}, root)
		require.NoError(t, err)
		assert.Equal(t, "yes", got)
	})

	t.Run("only the path's features are needed", func(t *testing.T) {
		got, err := Predict(Record{"outlook": "sunny", "humidity": "normal"}, root)
		require.NoError(t, err)
		assert.Equal(t, "yes", got)
	})

	t.Run("nil tree", func(t *testing.T) {
		_, err := Predict(Record{}, nil)
		assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration))
	})
}

func TestBuildTree_Idempotent(t *testing.T) {
	ds := PlayTennis()
	a, err := BuildTree(ds.Records, ds.Features, ds.Target, 3, 2)
	require.NoError(t, err)
	b, err := BuildTree(ds.Records, ds.Features, ds.Target, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// randomDataset draws categorical records with a target loosely tied to
// the first feature.
func randomDataset(rng *rand.Rand, n, nFeatures int) ([]Record, []string) {
	features := make([]string, nFeatures)
	for j := range features {
		features[j] = "x" + strconv.Itoa(j)
	}
	records := make([]Record, n)
	for i := range records {
		r := Record{}
		for _, f := range features {
			r[f] = strconv.Itoa(rng.IntN(3))
		}
		if r["x0"] == "0" || rng.IntN(4) == 0 {
			r["y"] = "a"
		} else {
			r["y"] = "b"
		}
		records[i] = r
	}
	return records, features
}

func TestBuildTree_Invariants(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewPCG(seed, 7))
		records, features := randomDataset(rng, 10+rng.IntN(60), 1+rng.IntN(5))
		maxDepth := 1 + rng.IntN(4)

		for _, f := range features {
			assert.GreaterOrEqual(t, InformationGain(records, f, "y"), -1e-12)
		}

		root, err := BuildTree(records, features, "y", maxDepth, 2)
		require.NoError(t, err)
		assert.LessOrEqual(t, root.Depth(), maxDepth)

		root.Walk(func(n *Node, depth int) {
			h := n.Entropy
			assert.GreaterOrEqual(t, h, 0.0)
			assert.LessOrEqual(t, h, math.Log2(float64(len(n.Distribution)))+1e-12)

			best := 0
			for _, c := range n.Distribution {
				best = max(best, c)
			}
			assert.Equal(t, best, n.Distribution[n.Prediction], "prediction is a plurality class")

			if n.IsLeaf() {
				assert.Nil(t, n.Left)
				assert.Nil(t, n.Right)
				return
			}
			require.NotNil(t, n.Left)
			require.NotNil(t, n.Right)
			assert.Less(t, depth, maxDepth)
			assert.Equal(t, n.Samples, n.Left.Samples+n.Right.Samples)
			assert.Greater(t, n.Gain, 0.0)
			assert.GreaterOrEqual(t, n.SplitGain, -1e-12)
			assert.LessOrEqual(t, n.SplitGain, n.Gain+1e-12)

			weighted := (float64(n.Left.Samples)*n.Left.Entropy + float64(n.Right.Samples)*n.Right.Entropy) / float64(n.Samples)
			assert.GreaterOrEqual(t, h+1e-12, weighted)
		})

		again, err := BuildTree(records, features, "y", maxDepth, 2)
		require.NoError(t, err)
		assert.Equal(t, root, again, "seed %d", seed)
	}
}

func TestNode_Rendering(t *testing.T) {
	ds := PlayTennis()
	root, err := BuildTree(ds.Records, ds.Features, ds.Target, 3, 2)
	require.NoError(t, err)

	s := root.String()
	assert.Contains(t, s, "outlook == sunny ?")
	assert.Contains(t, s, "  humidity == high ?")
	assert.Contains(t, s, "-> no (samples=3")

	js, err := root.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(js), `"feature": "outlook"`)
	assert.Contains(t, string(js), `"split_value": "sunny"`)
	assert.Contains(t, string(js), `"split_gain": 0.10224`)
}
