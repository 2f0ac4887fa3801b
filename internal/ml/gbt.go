package ml

import (
	"fmt"
	"math/rand"
	"sort"
)

// GBTParams configure gradient boosting. Defaults mirror the production
// training recipe for the price heads.
type GBTParams struct {
	Trees        int
	MaxDepth     int
	LearningRate float64
	Subsample    float64
	ColSample    float64
	Seed         int64
}

// DefaultGBTParams returns the price-head training recipe.
func DefaultGBTParams() GBTParams {
	return GBTParams{
		Trees:        200,
		MaxDepth:     5,
		LearningRate: 0.05,
		Subsample:    0.8,
		ColSample:    0.8,
		Seed:         42,
	}
}

// TreeNode is one node of a regression tree. Leaves have nil children and
// carry the fitted residual in Value.
type TreeNode struct {
	Feature   int
	Threshold float64
	Value     float64
	Left      *TreeNode
	Right     *TreeNode
}

func (n *TreeNode) predict(row []float64) float64 {
	for n.Left != nil {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// GBTRegressor is an additive ensemble of depth-limited regression trees
// fit on squared-error residuals.
type GBTRegressor struct {
	Params    GBTParams
	BaseScore float64
	Trees     []*TreeNode
}

// TrainGBT fits the ensemble. Training is deterministic for a fixed seed:
// row and column subsampling draw from a single seeded source in tree order.
func TrainGBT(rows [][]float64, targets []float64, p GBTParams) (*GBTRegressor, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("gbt: no training rows")
	}
	if len(rows) != len(targets) {
		return nil, fmt.Errorf("gbt: %d rows vs %d targets", len(rows), len(targets))
	}
	if p.Trees <= 0 || p.MaxDepth <= 0 || p.LearningRate <= 0 {
		return nil, fmt.Errorf("gbt: bad params %+v", p)
	}
	nCols := len(rows[0])

	base := 0.0
	for _, t := range targets {
		base += t
	}
	base /= float64(len(targets))

	pred := make([]float64, len(rows))
	for i := range pred {
		pred[i] = base
	}
	resid := make([]float64, len(rows))

	rng := rand.New(rand.NewSource(p.Seed))
	model := &GBTRegressor{Params: p, BaseScore: base, Trees: make([]*TreeNode, 0, p.Trees)}

	for t := 0; t < p.Trees; t++ {
		for i := range resid {
			resid[i] = targets[i] - pred[i]
		}
		rowIdx := sampleIndices(rng, len(rows), p.Subsample)
		colIdx := sampleIndices(rng, nCols, p.ColSample)

		tree := growTree(rows, resid, rowIdx, colIdx, p.MaxDepth)
		model.Trees = append(model.Trees, tree)

		for i, r := range rows {
			pred[i] += p.LearningRate * tree.predict(r)
		}
	}
	return model, nil
}

// Predict evaluates the ensemble on a single scaled feature row.
func (m *GBTRegressor) Predict(row []float64) float64 {
	out := m.BaseScore
	for _, t := range m.Trees {
		out += m.Params.LearningRate * t.predict(row)
	}
	return out
}

// sampleIndices draws a sorted fraction of [0,n) without replacement.
// frac outside (0,1) keeps everything.
func sampleIndices(rng *rand.Rand, n int, frac float64) []int {
	if frac <= 0 || frac >= 1 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	k := int(float64(n) * frac)
	if k < 1 {
		k = 1
	}
	perm := rng.Perm(n)
	idx := append([]int(nil), perm[:k]...)
	sort.Ints(idx)
	return idx
}

func growTree(rows [][]float64, resid []float64, rowIdx, colIdx []int, depth int) *TreeNode {
	mean := 0.0
	for _, i := range rowIdx {
		mean += resid[i]
	}
	mean /= float64(len(rowIdx))

	if depth == 0 || len(rowIdx) < 2 {
		return &TreeNode{Value: mean}
	}

	feat, thr, ok := bestSplit(rows, resid, rowIdx, colIdx)
	if !ok {
		return &TreeNode{Value: mean}
	}

	var left, right []int
	for _, i := range rowIdx {
		if rows[i][feat] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &TreeNode{Value: mean}
	}
	return &TreeNode{
		Feature:   feat,
		Threshold: thr,
		Left:      growTree(rows, resid, left, colIdx, depth-1),
		Right:     growTree(rows, resid, right, colIdx, depth-1),
	}
}

// bestSplit exhaustively scans the candidate columns for the threshold with
// the largest squared-error reduction.
func bestSplit(rows [][]float64, resid []float64, rowIdx, colIdx []int) (feat int, thr float64, ok bool) {
	type pair struct{ v, r float64 }

	total := 0.0
	for _, i := range rowIdx {
		total += resid[i]
	}
	n := float64(len(rowIdx))
	bestGain := 0.0

	pairs := make([]pair, len(rowIdx))
	for _, f := range colIdx {
		for k, i := range rowIdx {
			pairs[k] = pair{v: rows[i][f], r: resid[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		leftSum := 0.0
		for k := 0; k < len(pairs)-1; k++ {
			leftSum += pairs[k].r
			if pairs[k].v == pairs[k+1].v {
				continue
			}
			nl := float64(k + 1)
			nr := n - nl
			rightSum := total - leftSum
			gain := leftSum*leftSum/nl + rightSum*rightSum/nr - total*total/n
			if gain > bestGain {
				bestGain = gain
				feat = f
				thr = (pairs[k].v + pairs[k+1].v) / 2
				ok = true
			}
		}
	}
	return feat, thr, ok
}
