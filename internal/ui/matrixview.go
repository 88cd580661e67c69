package ui

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/temidaradev/esset/v2"

	"github.com/onchainrev/terminal/pkg/utils"
)

// matrixInsets frame the plot inside the window.
const (
	matrixLeft   = 70.0
	matrixRight  = 30.0
	matrixTop    = 40.0
	matrixBottom = 50.0
)

// matrixPlotRect returns the plot area in screen pixels.
func (a *App) matrixPlotRect() (x, y, w, h float64) {
	x = matrixLeft
	y = stripHeight + matrixTop
	w = float64(a.width) - matrixLeft - matrixRight
	h = float64(a.height) - stripHeight - newsHeight - matrixTop - matrixBottom
	return
}

// matrixCursor converts a screen position into normalized plot space.
func (a *App) matrixCursor(sx, sy float64) (float64, float64) {
	px, py, pw, ph := a.matrixPlotRect()
	if pw <= 0 || ph <= 0 {
		return -1, -1
	}
	// y grows downward on screen, upward on the plot.
	return (sx - px) / pw, 1 - (sy-py)/ph
}

func (a *App) drawMatrix(screen *ebiten.Image) {
	px, py, pw, ph := a.matrixPlotRect()

	vector.DrawFilledRect(screen, float32(px), float32(py), float32(pw), float32(ph), colPanel, false)
	vector.StrokeRect(screen, float32(px), float32(py), float32(pw), float32(ph), 1, colPanelEdge, false)

	// Static quadrant bands, not data-derived thresholds.
	vector.StrokeLine(screen, float32(px+pw/2), float32(py), float32(px+pw/2), float32(py+ph), 1, colPanelEdge, false)
	vector.StrokeLine(screen, float32(px), float32(py+ph/2), float32(px+pw), float32(py+ph/2), 1, colPanelEdge, false)
	esset.DrawText(screen, "lean & productive", 0, px+8, py+8, a.face, colTextDim)
	esset.DrawText(screen, "deep & productive", 0, px+pw/2+8, py+8, a.face, colTextDim)
	esset.DrawText(screen, "lean & idle", 0, px+8, py+ph-20, a.face, colTextDim)
	esset.DrawText(screen, "deep & idle", 0, px+pw/2+8, py+ph-20, a.face, colTextDim)

	esset.DrawText(screen, "TVL (log)", 0, px+pw/2-30, py+ph+18, a.face, colTextDim)
	esset.DrawText(screen, "annualized rev/TVL", 0, 8, py+ph/2, a.face, colTextDim)

	dimOthers := a.chainFocus >= 0
	for i, p := range a.points {
		sx := px + p.X*pw
		sy := py + (1-p.Y)*ph
		tone := colAccent
		alpha := 1.0
		if dimOthers && i != a.chainFocus {
			alpha = 0.25
		}
		r := 6.0
		if i == a.chainFocus || i == a.chainHover {
			r = 9.0
		}
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), float32(r), withAlpha(tone, alpha), true)
		if a.pins.Pinned(p.Chain.Name) {
			vector.StrokeCircle(screen, float32(sx), float32(sy), float32(r+3), 1, withAlpha(colText, alpha), true)
		}
		if p.Rank <= 5 || i == a.chainFocus || i == a.chainHover {
			esset.DrawText(screen, p.Chain.Name, 0, sx+r+3, sy-6, a.face, withAlpha(colText, alpha))
		}
	}

	if a.chainHover >= 0 && a.chainHover < len(a.points) {
		a.drawMatrixTooltip(screen, a.chainHover)
	}
	if a.chainFocus >= 0 && a.chainFocus < len(a.points) {
		a.drawChainPanel(screen, a.chainFocus)
	}
}

// drawMatrixTooltip shows exact figures for the hovered chain near the
// cursor.
func (a *App) drawMatrixTooltip(screen *ebiten.Image, idx int) {
	p := a.points[idx]
	mx, my := ebiten.CursorPosition()

	lines := []string{
		p.Chain.Name,
		"tvl " + utils.FormatUSD(p.TVL),
		fmt.Sprintf("eff %.2f%%  rank #%d", p.Efficiency, p.Rank),
	}
	w := 0.0
	for _, l := range lines {
		lw, _ := text.Measure(l, a.face, 0)
		if lw > w {
			w = lw
		}
	}
	h := float64(len(lines))*18 + 10
	x := float64(mx) + 14
	y := float64(my) - h - 6
	if y < stripHeight {
		y = float64(my) + 14
	}

	vector.DrawFilledRect(screen, float32(x-6), float32(y-4), float32(w+12), float32(h), colPanel, false)
	vector.StrokeRect(screen, float32(x-6), float32(y-4), float32(w+12), float32(h), 1, colPanelEdge, false)
	for i, l := range lines {
		esset.DrawText(screen, l, 0, x, y+float64(i)*18, a.face, colText)
	}
}

// drawChainPanel is the persistent detail panel for the selected chain.
func (a *App) drawChainPanel(screen *ebiten.Image, idx int) {
	p := a.points[idx]
	c := p.Chain

	x := float64(a.width) - panelWidth
	y := stripHeight
	h := float64(a.height) - stripHeight - newsHeight

	vector.DrawFilledRect(screen, float32(x), float32(y), float32(panelWidth), float32(h), colPanel, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(panelWidth), float32(h), 1, colPanelEdge, false)

	rows := []detailRow{
		{c.Name, fmt.Sprintf("#%d", p.Rank), colText},
		{"tvl", utils.FormatUSD(p.TVL), colText},
		{"efficiency", fmt.Sprintf("%.2f%%", p.Efficiency), colAccent},
	}
	if c.Volume24h != nil {
		rows = append(rows, detailRow{"dex volume 24h", utils.FormatUSD(*c.Volume24h), colText})
	}
	if c.Revenue24h != nil {
		rows = append(rows, detailRow{"revenue 24h", utils.FormatUSD(*c.Revenue24h), colText})
	}
	if c.Revenue7d != nil {
		rows = append(rows, detailRow{"revenue 7d", utils.FormatUSD(*c.Revenue7d), colText})
	}
	if c.Revenue30d != nil {
		rows = append(rows, detailRow{"revenue 30d", utils.FormatUSD(*c.Revenue30d), colText})
	}
	if c.Change1d != nil {
		tone := colGain
		if *c.Change1d < 0 {
			tone = colLoss
		}
		rows = append(rows, detailRow{"tvl 1d", utils.FormatPct(*c.Change1d), tone})
	}
	if c.Change7d != nil {
		tone := colGain
		if *c.Change7d < 0 {
			tone = colLoss
		}
		rows = append(rows, detailRow{"tvl 7d", utils.FormatPct(*c.Change7d), tone})
	}
	if a.pins.Pinned(c.Name) {
		rows = append(rows, detailRow{"pinned", "yes", colAccent})
	}

	ty := y + 14
	for _, row := range rows {
		esset.DrawText(screen, row.label, 0, x+12, ty, a.face, colTextDim)
		vw, _ := text.Measure(row.value, a.face, 0)
		esset.DrawText(screen, row.value, 0, x+panelWidth-12-vw, ty, a.face, row.tone)
		ty += 22
	}
}
