package ui

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/temidaradev/esset/v2"

	"github.com/onchainrev/terminal/internal/matrix"
	"github.com/onchainrev/terminal/pkg/utils"
)

const tableRowHeight = 22.0

// drawResearch renders the chain economics table: one row per chain with
// TVL, volume, revenue windows, and efficiency. Pinned chains sort first.
func (a *App) drawResearch(screen *ebiten.Image) {
	y := stripHeight + 10

	cols := []struct {
		title string
		width float64
	}{
		{"chain", 160},
		{"tvl", 110},
		{"vol 24h", 110},
		{"rev 24h", 100},
		{"rev 7d", 100},
		{"rev 30d", 100},
		{"eff %", 90},
		{"tvl 1d", 80},
	}

	x := 12.0
	for _, col := range cols {
		esset.DrawText(screen, col.title, 0, x, y, a.face, colTextDim)
		x += col.width
	}
	y += tableRowHeight

	rows := a.researchRows()
	maxRows := int((float64(a.height) - newsHeight - y) / tableRowHeight)
	if a.tableOffset > len(rows)-1 {
		a.tableOffset = max(0, len(rows)-1)
	}
	end := a.tableOffset + maxRows
	if end > len(rows) {
		end = len(rows)
	}

	for _, p := range rows[a.tableOffset:end] {
		c := p.Chain
		pinned := a.pins.Pinned(c.Name)

		name := c.Name
		if pinned {
			name = "* " + name
		}
		cells := []string{
			name,
			utils.FormatUSD(p.TVL),
			fmtOpt(c.Volume24h),
			fmtOpt(c.Revenue24h),
			fmtOpt(c.Revenue7d),
			fmtOpt(c.Revenue30d),
			fmt.Sprintf("%.2f", p.Efficiency),
			fmtOptPct(c.Change1d),
		}

		x = 12.0
		for i, cell := range cells {
			tone := colText
			if i == 0 && pinned {
				tone = colAccent
			}
			if i == 7 && c.Change1d != nil && *c.Change1d < 0 {
				tone = colLoss
			} else if i == 7 && c.Change1d != nil && *c.Change1d > 0 {
				tone = colGain
			}
			esset.DrawText(screen, cell, 0, x, y, a.face, tone)
			x += cols[i].width
		}
		y += tableRowHeight
	}

	if len(rows) == 0 {
		esset.DrawText(screen, "waiting for chain data...", 0, 12, y, a.face, colTextDim)
	}
}

// researchRows orders the matrix points for the table: pinned chains
// first, then by TVL descending (the layout already kept provider order,
// which is TVL-sorted).
func (a *App) researchRows() []matrix.Point {
	pinned := make([]matrix.Point, 0, len(a.points))
	rest := make([]matrix.Point, 0, len(a.points))
	for _, p := range a.points {
		if a.pins.Pinned(p.Chain.Name) {
			pinned = append(pinned, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(pinned, rest...)
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "-"
	}
	return utils.FormatUSD(*v)
}

func fmtOptPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return utils.FormatPct(*v)
}

// drawTickerStrip renders live exchange prices across the top edge.
func (a *App) drawTickerStrip(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, 0, float32(a.width), stripHeight, colPanel, false)
	vector.StrokeLine(screen, 0, stripHeight, float32(a.width), stripHeight, 1, colPanelEdge, false)

	if len(a.tickOrder) == 0 {
		esset.DrawText(screen, "connecting to ticker stream...", 0, 8, 7, a.face, colTextDim)
		return
	}

	x := 8.0
	for _, sym := range a.tickOrder {
		tick := a.ticks[sym]
		tone := colGain
		if tick.ChangePct < 0 {
			tone = colLoss
		}
		label := strings.TrimSuffix(sym, "USDT")
		segment := fmt.Sprintf("%s %s %s", label, utils.FormatPrice(tick.Price), utils.FormatPct(tick.ChangePct))
		esset.DrawText(screen, segment, 0, x, 7, a.face, tone)
		w, _ := text.Measure(segment, a.face, 0)
		x += w + 24
		if x > float64(a.width) {
			break
		}
	}
}

// drawNewsStrip cycles headlines along the bottom edge.
func (a *App) drawNewsStrip(screen *ebiten.Image) {
	y := float32(float64(a.height) - newsHeight)
	vector.DrawFilledRect(screen, 0, y, float32(a.width), newsHeight, colPanel, false)
	vector.StrokeLine(screen, 0, y, float32(a.width), y, 1, colPanelEdge, false)

	if len(a.headlines) == 0 {
		return
	}
	h := a.headlines[a.newsOffset%len(a.headlines)]
	line := fmt.Sprintf("%s  |  %s", h.Source, h.Title)
	esset.DrawText(screen, line, 0, 8, float64(y)+5, a.face, colTextDim)
}
