package processor

import (
	"math"
	"math/rand"
)

// isolationForest is a deterministic isolation forest: trees isolate points
// by random axis-aligned splits, and points with short average path lengths
// score as outliers. A fixed seed makes fit-and-score reproducible, which
// the pipeline's idempotence guarantee depends on.
type isolationForest struct {
	trees         []*isolationNode
	sampleSize    int
	numTrees      int
	contamination float64
	rng           *rand.Rand
	offset        float64
}

type isolationNode struct {
	feature   int
	threshold float64
	left      *isolationNode
	right     *isolationNode
	size      int // external node only
}

func newIsolationForest(numTrees, sampleSize int, contamination float64, seed int64) *isolationForest {
	return &isolationForest{
		numTrees:      numTrees,
		sampleSize:    sampleSize,
		contamination: contamination,
		rng:           rand.New(rand.NewSource(seed)),
	}
}

// Fit builds the ensemble on X and sets the decision offset so that the
// configured contamination fraction of the training set scores negative.
func (f *isolationForest) Fit(X [][]float64) {
	n := len(X)
	if f.sampleSize > n {
		f.sampleSize = n
	}
	limit := int(math.Ceil(math.Log2(math.Max(float64(f.sampleSize), 2))))

	f.trees = make([]*isolationNode, f.numTrees)
	for i := range f.trees {
		sample := make([][]float64, f.sampleSize)
		for j, idx := range f.rng.Perm(n)[:f.sampleSize] {
			sample[j] = X[idx]
		}
		f.trees[i] = f.buildTree(sample, 0, limit)
	}

	scores := f.scoreSamples(X)
	f.offset = percentile(scores, f.contamination)
}

func (f *isolationForest) buildTree(X [][]float64, depth, limit int) *isolationNode {
	if depth >= limit || len(X) <= 1 {
		return &isolationNode{feature: -1, size: len(X)}
	}

	// Split on a feature that still varies within this node.
	numFeatures := len(X[0])
	candidates := make([]int, 0, numFeatures)
	for j := 0; j < numFeatures; j++ {
		lo, hi := X[0][j], X[0][j]
		for _, row := range X[1:] {
			if row[j] < lo {
				lo = row[j]
			}
			if row[j] > hi {
				hi = row[j]
			}
		}
		if hi > lo {
			candidates = append(candidates, j)
		}
	}
	if len(candidates) == 0 {
		return &isolationNode{feature: -1, size: len(X)}
	}

	feature := candidates[f.rng.Intn(len(candidates))]
	lo, hi := X[0][feature], X[0][feature]
	for _, row := range X[1:] {
		if row[feature] < lo {
			lo = row[feature]
		}
		if row[feature] > hi {
			hi = row[feature]
		}
	}
	threshold := lo + f.rng.Float64()*(hi-lo)

	var left, right [][]float64
	for _, row := range X {
		if row[feature] < threshold {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &isolationNode{feature: -1, size: len(X)}
	}

	return &isolationNode{
		feature:   feature,
		threshold: threshold,
		left:      f.buildTree(left, depth+1, limit),
		right:     f.buildTree(right, depth+1, limit),
	}
}

// DecisionScores returns the decision function for each row: negative
// values are outliers under the configured contamination.
func (f *isolationForest) DecisionScores(X [][]float64) []float64 {
	scores := f.scoreSamples(X)
	for i := range scores {
		scores[i] -= f.offset
	}
	return scores
}

// scoreSamples returns -anomalyScore per row; higher means more normal.
func (f *isolationForest) scoreSamples(X [][]float64) []float64 {
	scores := make([]float64, len(X))
	norm := averagePathLength(f.sampleSize)
	for i, row := range X {
		var total float64
		for _, tree := range f.trees {
			total += pathLength(row, tree, 0)
		}
		avg := total / float64(len(f.trees))
		scores[i] = -math.Pow(2, -avg/norm)
	}
	return scores
}

func pathLength(x []float64, node *isolationNode, depth float64) float64 {
	if node.feature < 0 {
		return depth + averagePathLength(node.size)
	}
	if x[node.feature] < node.threshold {
		return pathLength(x, node.left, depth+1)
	}
	return pathLength(x, node.right, depth+1)
}

// averagePathLength is the expected path length of an unsuccessful BST
// search over n points, the standard normalizer for isolation forests.
func averagePathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	const eulerGamma = 0.5772156649015329
	h := math.Log(float64(n-1)) + eulerGamma
	return 2*h - 2*float64(n-1)/float64(n)
}
