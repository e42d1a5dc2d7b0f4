package ml

import (
	"math"
	"sort"
)

// treeNode is one entry in a flattened regression tree. Children are indexes
// into the same slice; -1 marks none.
type treeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// regressionTree fits gradient/hessian pairs with squared-error splits and
// Newton-step leaf values. It is the weak learner inside GradientBoosting.
type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

func (t *regressionTree) fit(features [][]float64, grad, hess []float64, maxDepth, minLeaf int) {
	if minLeaf <= 0 {
		minLeaf = 1
	}
	indices := make([]int, len(features))
	for i := range indices {
		indices[i] = i
	}
	t.Nodes = buildRegressionNode(features, grad, hess, indices, 0, maxDepth, minLeaf)
}

func (t *regressionTree) predict(features []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.Value
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return 0
		}
	}
}

func buildRegressionNode(features [][]float64, grad, hess []float64, indices []int, depth, maxDepth, minLeaf int) []treeNode {
	if depth >= maxDepth || len(indices) < 2*minLeaf {
		return []treeNode{leafNode(grad, hess, indices)}
	}

	featureIdx, threshold, ok := bestRegressionSplit(features, grad, indices, minLeaf)
	if !ok {
		return []treeNode{leafNode(grad, hess, indices)}
	}

	left := make([]int, 0, len(indices))
	right := make([]int, 0, len(indices))
	for _, i := range indices {
		if features[i][featureIdx] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < minLeaf || len(right) < minLeaf {
		return []treeNode{leafNode(grad, hess, indices)}
	}

	leftNodes := buildRegressionNode(features, grad, hess, left, depth+1, maxDepth, minLeaf)
	rightNodes := buildRegressionNode(features, grad, hess, right, depth+1, maxDepth, minLeaf)

	root := treeNode{
		FeatureIdx: featureIdx,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
	}
	nodes := make([]treeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, leftNodes...)
	nodes = append(nodes, rightNodes...)
	return nodes
}

// leafNode takes a Newton step: sum of gradients over sum of hessians.
func leafNode(grad, hess []float64, indices []int) treeNode {
	var g, h float64
	for _, i := range indices {
		g += grad[i]
		h += hess[i]
	}
	value := 0.0
	if h > 1e-9 {
		value = g / h
	}
	return treeNode{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: value, IsLeaf: true}
}

func bestRegressionSplit(features [][]float64, grad []float64, indices []int, minLeaf int) (int, float64, bool) {
	featureCount := len(features[indices[0]])
	bestFeature := -1
	bestThreshold := 0.0
	bestScore := math.MaxFloat64

	values := make([]float64, len(indices))
	for featureIdx := 0; featureIdx < featureCount; featureIdx++ {
		for i, idx := range indices {
			values[i] = features[idx][featureIdx]
		}
		for _, threshold := range splitCandidates(values) {
			score, ok := splitSSE(features, grad, indices, featureIdx, threshold, minLeaf)
			if ok && score < bestScore {
				bestScore = score
				bestFeature = featureIdx
				bestThreshold = threshold
			}
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

// splitCandidates proposes thresholds at the quartiles of the column.
func splitCandidates(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	candidates := make([]float64, 0, 3)
	for _, q := range []float64{0.25, 0.5, 0.75} {
		idx := int(q * float64(len(sorted)-1))
		v := sorted[idx]
		if len(candidates) == 0 || candidates[len(candidates)-1] != v {
			candidates = append(candidates, v)
		}
	}
	return candidates
}

// splitSSE scores a candidate split by the summed squared error of the
// gradients around each side's mean. Lower is better.
func splitSSE(features [][]float64, grad []float64, indices []int, featureIdx int, threshold float64, minLeaf int) (float64, bool) {
	var leftSum, rightSum float64
	var leftN, rightN int
	for _, i := range indices {
		if features[i][featureIdx] <= threshold {
			leftSum += grad[i]
			leftN++
		} else {
			rightSum += grad[i]
			rightN++
		}
	}
	if leftN < minLeaf || rightN < minLeaf {
		return 0, false
	}
	leftMean := leftSum / float64(leftN)
	rightMean := rightSum / float64(rightN)

	var sse float64
	for _, i := range indices {
		if features[i][featureIdx] <= threshold {
			d := grad[i] - leftMean
			sse += d * d
		} else {
			d := grad[i] - rightMean
			sse += d * d
		}
	}
	return sse, true
}
