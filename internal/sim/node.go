// Package sim implements the force-directed bubble simulation: node
// lifecycle across data refreshes, radius computation, the per-frame
// physics step, and pointer hit-testing. It has no rendering dependency;
// the UI layer draws whatever state the engine holds.
package sim

import (
	"math"
	"math/rand"
	"strings"

	"github.com/onchainrev/terminal/pkg/models"
)

// Node is a market entity augmented with simulation state. Position and
// velocity persist across data refreshes for continuity.
type Node struct {
	models.MarketEntity
	X, Y   float64
	VX, VY float64
	Radius float64
}

// Bounds is the simulation area in logical pixels.
type Bounds struct {
	Width, Height float64
}

// Radius sizing constants. Near-zero movers get a smaller base scale and
// floor so flat assets are visually de-emphasized.
const (
	radiusMin      = 42.0
	radiusMinQuiet = 28.0
	radiusMax      = 220.0
	quietScale     = 0.6
	quietThreshold = 2.0
	quietFloorCut  = 1.5
	baseScale      = 1.5
	changeWeight   = 28.0
	radiusOffset   = 12.0
)

// Radius derives a display radius from a magnitude metric (market cap or
// volume) and the active timeframe's percentage change.
func Radius(magnitude, change float64) float64 {
	abs := math.Abs(change)

	scale := 1.0
	if abs < quietThreshold {
		scale = quietScale
	}
	base := math.Log(math.Abs(magnitude)+1) * baseScale * scale
	weight := math.Sqrt(abs) * changeWeight

	floor := radiusMin
	if abs < quietFloorCut {
		floor = radiusMinQuiet
	}

	r := base + weight - radiusOffset
	if r < floor {
		r = floor
	}
	if r > radiusMax {
		r = radiusMax
	}
	return r
}

// excludedSymbols filters stables and wrapped tokens out of the bubble
// universe; their price action is pegged noise.
var excludedSymbols = map[string]struct{}{}

func init() {
	for _, s := range []string{
		"USDT", "USDC", "DAI", "BUSD", "FDUSD", "TUSD", "USDP", "USDD", "PYUSD",
		"FRAX", "LUSD", "GHO", "CRVUSD", "MIM", "USTC", "EURC",
		"WBTC", "WETH", "WBNB", "WAVAX", "WMATIC", "WFTM", "WSTRK", "WADA",
		"WDOT", "WSOL", "STETH", "CBETH", "RETH", "FRXETH",
	} {
		excludedSymbols[s] = struct{}{}
	}
}

// FilterMarkets drops excluded symbols and applies a case-insensitive
// symbol/name search filter. An empty query matches everything.
func FilterMarkets(coins []models.MarketEntity, query string) []models.MarketEntity {
	q := strings.ToUpper(strings.TrimSpace(query))
	out := make([]models.MarketEntity, 0, len(coins))
	for _, c := range coins {
		sym := strings.ToUpper(c.Symbol)
		if _, skip := excludedSymbols[sym]; skip {
			continue
		}
		if q != "" && !strings.Contains(sym, q) && !strings.Contains(strings.ToUpper(c.Name), q) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Engine owns the node set and the random source used for initial
// placement.
type Engine struct {
	nodes  []*Node
	bounds Bounds
	rng    *rand.Rand
}

// NewEngine creates an engine for the given area. seed fixes initial node
// placement, which tests rely on.
func NewEngine(bounds Bounds, seed int64) *Engine {
	return &Engine{bounds: bounds, rng: rand.New(rand.NewSource(seed))}
}

// Nodes returns the current node slice. The caller must treat it as a
// snapshot: Rebuild replaces the slice, it never mutates a published one.
func (e *Engine) Nodes() []*Node { return e.nodes }

// Bounds returns the current simulation area.
func (e *Engine) Bounds() Bounds { return e.bounds }

// SetBounds updates the area used by the next physics step. Node
// positions are not rescaled.
func (e *Engine) SetBounds(b Bounds) { e.bounds = b }

// Rebuild replaces the node set from a fresh market snapshot. Entities
// present before keep their position and velocity; new ones are placed
// randomly within bounds with near-zero velocity; entities gone from the
// snapshot are dropped. Radii and colors follow the active timeframe and
// size metric.
func (e *Engine) Rebuild(coins []models.MarketEntity, tf models.Timeframe, metric models.SizeMetric) {
	prev := make(map[string]*Node, len(e.nodes))
	for _, n := range e.nodes {
		prev[n.ID] = n
	}

	next := make([]*Node, 0, len(coins))
	for _, c := range coins {
		change, _ := c.Change(tf)
		n := &Node{
			MarketEntity: c,
			Radius:       Radius(c.Magnitude(metric), change),
		}
		if old, ok := prev[c.ID]; ok {
			n.X, n.Y = old.X, old.Y
			n.VX, n.VY = old.VX, old.VY
		} else {
			n.X = e.rng.Float64() * e.bounds.Width
			n.Y = e.rng.Float64() * e.bounds.Height
			n.VX = (e.rng.Float64() - 0.5) * 0.03
			n.VY = (e.rng.Float64() - 0.5) * 0.03
		}
		next = append(next, n)
	}
	e.nodes = next
}

// Step advances the simulation one frame within the current bounds.
func (e *Engine) Step() {
	Step(e.nodes, e.bounds)
}

// HitTest returns the first node whose circle contains the point, or nil.
func HitTest(nodes []*Node, x, y float64) *Node {
	for _, n := range nodes {
		dx := n.X - x
		dy := n.Y - y
		if math.Sqrt(dx*dx+dy*dy) < n.Radius {
			return n
		}
	}
	return nil
}
