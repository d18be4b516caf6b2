package tree_test

import (
	"fmt"

	"github.com/YuminosukeSato/pgmkit/tree"
)

func ExampleBuildTree() {
	ds := tree.PlayTennis()
	root, err := tree.BuildTree(ds.Records, ds.Features, ds.Target, 3, 2)
	if err != nil {
		panic(err)
	}
	fmt.Print(root)

	play, _ := tree.Predict(tree.Record{"outlook": "rain", "windy": "true"}, root)
	fmt.Println("rain and windy:", play)
	// Output:
	// outlook == sunny ? (samples=14, entropy=0.940, gain=0.247, split_gain=0.102)
	//   humidity == high ? (samples=5, entropy=0.971, gain=0.971, split_gain=0.971)
	//     -> no (samples=3, entropy=0.000)
	//     -> yes (samples=2, entropy=0.000)
	//   windy == false ? (samples=9, entropy=0.764, gain=0.320, split_gain=0.320)
	//     -> yes (samples=5, entropy=0.000)
	//     outlook == rain ? (samples=4, entropy=1.000, gain=1.000, split_gain=1.000)
	//       -> no (samples=2, entropy=0.000)
	//       -> yes (samples=2, entropy=0.000)
	// rain and windy: no
}

func ExampleClassifier() {
	ds := tree.PlayTennis()
	clf := tree.NewClassifier(tree.WithTarget(ds.Target), tree.WithMaxDepth(1))
	if err := clf.Fit(ds.Records); err != nil {
		panic(err)
	}
	score, _ := clf.Score(ds.Records)
	fmt.Printf("training accuracy: %.3f\n", score)
	// Output:
	// training accuracy: 0.714
}
