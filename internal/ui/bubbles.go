package ui

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/temidaradev/esset/v2"

	"github.com/onchainrev/terminal/internal/sim"
	"github.com/onchainrev/terminal/pkg/models"
	"github.com/onchainrev/terminal/pkg/utils"
)

const gradientSize = 128

// gradientSprite is a white radial falloff rendered once and tinted per
// bubble at draw time. Per-bubble per-pixel gradients would blow the
// frame budget.
var (
	gradientOnce   sync.Once
	gradientSprite *ebiten.Image
)

func radialGradient() *ebiten.Image {
	gradientOnce.Do(func() {
		img := ebiten.NewImage(gradientSize, gradientSize)
		pix := make([]byte, 4*gradientSize*gradientSize)
		c := float64(gradientSize-1) / 2
		for y := 0; y < gradientSize; y++ {
			for x := 0; x < gradientSize; x++ {
				dx := (float64(x) - c) / c
				dy := (float64(y) - c) / c
				d := dx*dx + dy*dy
				if d > 1 {
					continue
				}
				// Bright core fading toward the rim.
				alpha := 1.0 - 0.65*d
				i := 4 * (y*gradientSize + x)
				v := byte(alpha * 255)
				pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, v
			}
		}
		img.WritePixels(pix)
		gradientSprite = img
	})
	return gradientSprite
}

func (a *App) drawBubbles(screen *ebiten.Image) {
	nodes := a.engine.Nodes()

	// Hovered node is drawn last so it sits on top of its neighbors.
	for _, n := range nodes {
		if n != a.hovered {
			a.drawBubble(screen, n, n == a.selected)
		}
	}
	if a.hovered != nil {
		a.drawBubble(screen, a.hovered, a.hovered == a.selected)
	}

	a.drawBubbleHUD(screen)
	if a.selected != nil {
		a.drawDetailPanel(screen)
	}
}

func (a *App) drawBubble(screen *ebiten.Image, n *sim.Node, selected bool) {
	change, _ := n.Change(a.timeframe)
	tone := changeColor(change)

	x := n.X
	y := n.Y + stripHeight
	d := n.Radius * 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(d/gradientSize, d/gradientSize)
	op.GeoM.Translate(x-n.Radius, y-n.Radius)
	op.ColorScale.ScaleWithColor(tone)
	screen.DrawImage(radialGradient(), op)

	ring := withAlpha(tone, 0.9)
	if selected {
		ring = colAccent
	} else if a.pins.Pinned(n.ID) {
		ring = colText
	}
	vector.StrokeCircle(screen, float32(x), float32(y), float32(n.Radius), 1.5, ring, true)

	if icon := a.icons.Get(a.ctx, n.Image); icon != nil && n.Radius > 34 {
		iw := icon.Bounds().Dx()
		if iw > 0 {
			size := n.Radius * 0.6
			iop := &ebiten.DrawImageOptions{}
			iop.GeoM.Scale(size/float64(iw), size/float64(iw))
			iop.GeoM.Translate(x-size/2, y-n.Radius*0.62)
			screen.DrawImage(icon, iop)
		}
	}

	label := n.Symbol
	lw, lh := text.Measure(label, a.face, 0)
	esset.DrawText(screen, label, 0, x-lw/2, y-lh/2, a.face, colText)

	pct := utils.FormatPct(change)
	pw, _ := text.Measure(pct, a.face, 0)
	esset.DrawText(screen, pct, 0, x-pw/2, y+lh/2+2, a.face, withAlpha(colText, 0.8))
}

// drawBubbleHUD shows the active rank range, timeframe, size metric, and
// search buffer in the top-left corner of the bubble area.
func (a *App) drawBubbleHUD(screen *ebiten.Image) {
	pageSize := a.cfg.CoinGecko.PageSize
	lo := (a.fresh.Page()-1)*pageSize + 1
	hud := fmt.Sprintf("ranks %d-%d ([/] page)  [%s] size:%s  1/2/3 views  tab timeframe  m metric  p pin",
		lo, lo+pageSize-1, a.timeframe, a.metric)
	if a.search != "" {
		hud += "  filter:" + a.search
	}
	esset.DrawText(screen, hud, 0, 8, stripHeight+6, a.face, colTextDim)
}

// drawDetailPanel renders the persistent side panel for the selected
// asset.
func (a *App) drawDetailPanel(screen *ebiten.Image) {
	n := a.selected
	x := float64(a.width) - panelWidth
	y := stripHeight
	h := float64(a.height) - stripHeight - newsHeight

	vector.DrawFilledRect(screen, float32(x), float32(y), float32(panelWidth), float32(h), colPanel, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(panelWidth), float32(h), 1, colPanelEdge, false)

	lines := []detailRow{
		{n.Name, fmt.Sprintf("#%d", n.Rank), colText},
		{"price", utils.FormatPrice(n.Price), colText},
		{"market cap", utils.FormatUSD(n.MarketCap), colText},
		{"volume 24h", utils.FormatUSD(n.Volume), colText},
	}
	for _, tf := range models.Timeframes {
		change, ok := n.Change(tf)
		if !ok {
			continue
		}
		tone := colGain
		if change < 0 {
			tone = colLoss
		}
		lines = append(lines, detailRow{string(tf), utils.FormatPct(change), tone})
	}
	if a.pins.Pinned(n.ID) {
		lines = append(lines, detailRow{"pinned", "yes", colAccent})
	}

	ty := y + 14
	for _, row := range lines {
		esset.DrawText(screen, row.label, 0, x+12, ty, a.face, colTextDim)
		vw, _ := text.Measure(row.value, a.face, 0)
		esset.DrawText(screen, row.value, 0, x+panelWidth-12-vw, ty, a.face, row.tone)
		ty += 22
	}
}

type detailRow struct {
	label string
	value string
	tone  color.RGBA
}
