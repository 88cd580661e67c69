// Package matrix computes the capital-efficiency scatter layout: each
// chain is placed on a log-scaled TVL x-axis against an annualized
// revenue/TVL efficiency y-axis. Output is normalized [0,1] coordinates;
// the UI layer maps those into plot pixels.
package matrix

import (
	"math"
	"sort"

	"github.com/onchainrev/terminal/pkg/models"
)

// minTVL floors the TVL used for efficiency and log scaling so zero-TVL
// chains stay finite and plottable.
const minTVL = 1.0

// effBaseline keeps the y-axis from collapsing when every efficiency is
// tiny, and stops a single outlier from flattening the rest: the axis max
// is at least this many percent.
const effBaseline = 5.0

// Point is one chain positioned on the matrix. X and Y are normalized to
// [0,1] with the origin at the low-TVL, low-efficiency corner.
type Point struct {
	Chain      models.ChainMetric
	TVL        float64
	Efficiency float64 // annualized revenue / TVL, percent
	Rank       int     // 1-based, by efficiency descending
	X, Y       float64
}

// Efficiency annualizes a day of revenue against TVL, as a percentage.
// TVL is floored at minTVL so the ratio is always defined.
func Efficiency(tvl, revenue24h float64) float64 {
	if tvl < minTVL {
		tvl = minTVL
	}
	return revenue24h / tvl * 365 * 100
}

// Layout positions chains on the matrix. Chains without a revenue figure
// are skipped; nil TVL counts as zero. The returned points keep the input
// order, with Rank assigned by efficiency.
func Layout(chains []models.ChainMetric) []Point {
	points := make([]Point, 0, len(chains))
	for _, c := range chains {
		if c.Revenue24h == nil {
			continue
		}
		tvl := 0.0
		if c.TVL != nil {
			tvl = *c.TVL
		}
		points = append(points, Point{
			Chain:      c,
			TVL:        tvl,
			Efficiency: Efficiency(tvl, *c.Revenue24h),
		})
	}
	if len(points) == 0 {
		return points
	}

	minLog := math.Inf(1)
	maxLog := math.Inf(-1)
	maxEff := 0.0
	for _, p := range points {
		l := math.Log10(math.Max(p.TVL, minTVL))
		minLog = math.Min(minLog, l)
		maxLog = math.Max(maxLog, l)
		maxEff = math.Max(maxEff, p.Efficiency)
	}
	if maxEff < effBaseline {
		maxEff = effBaseline
	}
	logSpan := maxLog - minLog

	for i := range points {
		p := &points[i]
		if logSpan > 0 {
			p.X = (math.Log10(math.Max(p.TVL, minTVL)) - minLog) / logSpan
		} else {
			p.X = 0.5
		}
		p.Y = p.Efficiency / maxEff
		if p.Y < 0 {
			p.Y = 0
		}
		if p.Y > 1 {
			p.Y = 1
		}
	}

	byEff := make([]int, len(points))
	for i := range byEff {
		byEff[i] = i
	}
	sort.SliceStable(byEff, func(a, b int) bool {
		return points[byEff[a]].Efficiency > points[byEff[b]].Efficiency
	})
	for rank, idx := range byEff {
		points[idx].Rank = rank + 1
	}
	return points
}

// Nearest returns the index of the point closest to (x, y) in normalized
// space, or -1 when points is empty or nothing falls within maxDist.
func Nearest(points []Point, x, y, maxDist float64) int {
	best := -1
	bestDist := maxDist
	for i, p := range points {
		d := math.Hypot(p.X-x, p.Y-y)
		if d <= bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
