package tree

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Node is a tree node. It is a leaf iff Left and Right are both nil; a split
// node always has both children.
type Node struct {
	// Feature is the split feature; empty on leaves.
	Feature string `json:"feature,omitempty"`
	// SplitValue is the value routed left. Every other value goes right.
	SplitValue string `json:"split_value,omitempty"`
	// Values are the distinct values of Feature seen at this node during
	// training, in order of first appearance.
	Values []string `json:"values,omitempty"`
	Left   *Node    `json:"left,omitempty"`
	Right  *Node    `json:"right,omitempty"`

	// Prediction is the plurality target value of the node's records.
	Prediction   string         `json:"prediction"`
	Samples      int            `json:"samples"`
	Distribution map[string]int `json:"distribution"`
	Entropy      float64        `json:"entropy"`
	// Gain is the information gain of Feature over its full multiway
	// partition, the score the split was chosen by. Zero on leaves.
	Gain float64 `json:"gain,omitempty"`
	// SplitGain is the information gain of the binary SplitValue-vs-rest
	// partition actually made. It equals Gain when the feature has two
	// values at this node and is at most Gain otherwise.
	SplitGain float64 `json:"split_gain,omitempty"`
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Depth is the number of split levels below n; a lone leaf has depth 0.
func (n *Node) Depth() int {
	if n.IsLeaf() {
		return 0
	}
	return 1 + max(n.Left.Depth(), n.Right.Depth())
}

// Leaves returns the leaves under n from left to right.
func (n *Node) Leaves() []*Node {
	if n.IsLeaf() {
		return []*Node{n}
	}
	return append(n.Left.Leaves(), n.Right.Leaves()...)
}

// Walk visits n and its descendants depth-first, left before right.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	var walk func(*Node, int)
	walk = func(node *Node, depth int) {
		fn(node, depth)
		if !node.IsLeaf() {
			walk(node.Left, depth+1)
			walk(node.Right, depth+1)
		}
	}
	walk(n, 0)
}

// ToJSON serialises the tree with indentation for display.
func (n *Node) ToJSON() ([]byte, error) {
	return json.MarshalIndent(n, "", "  ")
}

// String renders the tree one node per line, indented by depth.
func (n *Node) String() string {
	var b strings.Builder
	n.Walk(func(node *Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		if node.IsLeaf() {
			fmt.Fprintf(&b, "-> %s (samples=%d, entropy=%.3f)\n", node.Prediction, node.Samples, node.Entropy)
			return
		}
		fmt.Fprintf(&b, "%s == %s ? (samples=%d, entropy=%.3f, gain=%.3f, split_gain=%.3f)\n",
			node.Feature, node.SplitValue, node.Samples, node.Entropy, node.Gain, node.SplitGain)
	})
	return b.String()
}
