// Package ui is the ebiten front end: the dashboard window, its three
// views (bubble map, efficiency matrix, research table), and the glue
// between the data layer and the render loop. All I/O happens in
// background goroutines; Update and Draw touch memory only.
package ui

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/temidaradev/esset/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/onchainrev/terminal/internal/config"
	"github.com/onchainrev/terminal/internal/matrix"
	"github.com/onchainrev/terminal/internal/sim"
	"github.com/onchainrev/terminal/internal/stream"
	"github.com/onchainrev/terminal/internal/watchlist"
	"github.com/onchainrev/terminal/pkg/models"
)

// View selects which main panel is drawn.
type View int

const (
	ViewBubbles View = iota
	ViewMatrix
	ViewResearch
)

const (
	stripHeight  = 28.0 // live ticker strip at the top
	newsHeight   = 24.0 // headline strip at the bottom
	panelWidth   = 280.0
	baseFontSize = 14
)

// App implements ebiten.Game. Everything it reads during Update/Draw
// lives on the struct; data goroutines only touch the slot and the
// stream channel.
type App struct {
	cfg    config.Config
	face   text.Face
	engine *sim.Engine
	slot   *Slot
	fresh  *Refresher
	pins   *watchlist.PinnedSet
	stream *stream.Client
	icons  *iconCache

	ctx    context.Context
	cancel context.CancelFunc

	view      View
	timeframe models.Timeframe
	metric    models.SizeMetric
	search    string

	markets   []models.MarketEntity
	chains    []models.ChainMetric
	headlines []models.Headline
	points    []matrix.Point

	ticks     map[string]models.TickerPrice
	tickOrder []string

	hovered     *sim.Node
	selected    *sim.Node
	chainFocus  int // index into points, -1 when nothing selected
	chainHover  int
	haveData    bool
	dataErr     error
	newsOffset  int
	tableOffset int
	frame       int

	width, height int
}

// NewApp wires the dashboard. The refresher and stream client are started
// by Run and stopped when the window closes.
func NewApp(cfg config.Config, refresher *Refresher, slot *Slot, pins *watchlist.PinnedSet, streamClient *stream.Client) (*App, error) {
	face, err := loadFace(cfg.UI.FontPath)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		cfg:        cfg,
		face:       face,
		engine:     sim.NewEngine(sim.Bounds{}, time.Now().UnixNano()),
		slot:       slot,
		fresh:      refresher,
		pins:       pins,
		stream:     streamClient,
		icons:      newIconCache(),
		ctx:        ctx,
		cancel:     cancel,
		timeframe:  "24h",
		metric:     models.SizeByMarketCap,
		ticks:      make(map[string]models.TickerPrice),
		chainFocus: -1,
		chainHover: -1,
		width:      cfg.UI.Width,
		height:     cfg.UI.Height,
	}, nil
}

// loadFace loads the configured TTF through esset, falling back to the
// built-in bitmap face when none is configured.
func loadFace(path string) (text.Face, error) {
	if path == "" {
		return text.NewGoXFace(basicfont.Face7x13), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("ui: font %s unavailable, using built-in face: %v", path, err)
		return text.NewGoXFace(basicfont.Face7x13), nil
	}
	return esset.GetFont(raw, baseFontSize)
}

// Run opens the window and blocks until it closes. Background refresh and
// the ticker stream are torn down before returning.
func (a *App) Run() error {
	defer a.cancel()

	go a.fresh.Run(a.ctx)
	if a.stream != nil {
		go a.stream.Run(a.ctx)
	}

	ebiten.SetWindowSize(a.cfg.UI.Width, a.cfg.UI.Height)
	ebiten.SetWindowTitle("onchainrev terminal")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(a)
}

// Update drains pending data, handles input, and advances the physics.
// It never blocks on I/O.
func (a *App) Update() error {
	a.drainData()
	a.drainTicks()
	a.handleKeys()
	a.handleMouse()

	// Rotate the headline strip every few seconds.
	a.frame++
	if len(a.headlines) > 0 && a.frame%300 == 0 {
		a.newsOffset++
	}

	if a.view == ViewBubbles {
		a.engine.SetBounds(a.bubbleBounds())
		a.engine.Step()
	}
	return nil
}

// Layout tracks the outside window size so views can use all of it.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		a.width, a.height = outsideWidth, outsideHeight
	}
	return a.width, a.height
}

// bubbleBounds is the simulation area: the window minus the strips.
func (a *App) bubbleBounds() sim.Bounds {
	return sim.Bounds{
		Width:  float64(a.width),
		Height: float64(a.height) - stripHeight - newsHeight,
	}
}

// drainData applies at most the latest snapshot per frame.
func (a *App) drainData() {
	snap, ok := a.slot.Poll()
	if !ok {
		return
	}
	if snap.Err != nil && !a.haveData {
		a.dataErr = snap.Err
		return
	}
	if snap.Markets != nil {
		a.markets = snap.Markets
		a.haveData = true
		a.dataErr = nil
		a.rebuildNodes()
	}
	if snap.Chains != nil {
		a.chains = snap.Chains
		a.points = matrix.Layout(a.chains)
		if a.chainFocus >= len(a.points) {
			a.chainFocus = -1
		}
		a.haveData = true
		a.dataErr = nil
	}
	if snap.Headlines != nil {
		a.headlines = snap.Headlines
	}
}

// rebuildNodes feeds the filtered market list into the simulation,
// preserving positions for entities that survive the refresh.
func (a *App) rebuildNodes() {
	coins := sim.FilterMarkets(a.markets, a.search)
	if max := a.cfg.UI.MaxBubbleCount; max > 0 && len(coins) > max {
		coins = coins[:max]
	}
	a.engine.SetBounds(a.bubbleBounds())
	a.engine.Rebuild(coins, a.timeframe, a.metric)
	a.hovered = nil
	if a.selected != nil {
		a.selected = findNode(a.engine.Nodes(), a.selected.ID)
	}
}

func findNode(nodes []*sim.Node, id string) *sim.Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// drainTicks pulls whatever the stream produced since last frame.
func (a *App) drainTicks() {
	if a.stream == nil {
		return
	}
	for {
		select {
		case tick, ok := <-a.stream.Updates():
			if !ok {
				a.stream = nil
				return
			}
			if _, seen := a.ticks[tick.Symbol]; !seen {
				a.tickOrder = append(a.tickOrder, tick.Symbol)
			}
			a.ticks[tick.Symbol] = tick
		default:
			return
		}
	}
}

func (a *App) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		a.view = ViewBubbles
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		a.view = ViewMatrix
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		a.view = ViewResearch
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		a.cycleTimeframe()
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		a.toggleMetric()
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		a.fresh.SetPage(a.fresh.Page() - 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		a.fresh.SetPage(a.fresh.Page() + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		a.fresh.Kick()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		a.togglePin()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		if a.search != "" {
			a.search = ""
			a.rebuildNodes()
		} else {
			a.selected = nil
			a.chainFocus = -1
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		if a.search != "" {
			a.search = a.search[:len(a.search)-1]
			a.rebuildNodes()
		}
	}

	if a.view == ViewBubbles {
		for _, r := range ebiten.AppendInputChars(nil) {
			if r == ' ' || strings.ContainsRune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-", r) {
				a.search += string(r)
				a.rebuildNodes()
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		a.tableOffset += 5
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		a.tableOffset -= 5
		if a.tableOffset < 0 {
			a.tableOffset = 0
		}
	}
}

func (a *App) cycleTimeframe() {
	for i, tf := range models.Timeframes {
		if tf == a.timeframe {
			a.timeframe = models.Timeframes[(i+1)%len(models.Timeframes)]
			break
		}
	}
	a.rebuildNodes()
}

func (a *App) toggleMetric() {
	if a.metric == models.SizeByMarketCap {
		a.metric = models.SizeByVolume
	} else {
		a.metric = models.SizeByMarketCap
	}
	a.rebuildNodes()
}

func (a *App) togglePin() {
	switch a.view {
	case ViewBubbles:
		if n := a.pickNode(); n != nil {
			a.pins.Toggle(n.ID)
		}
	case ViewMatrix:
		if a.chainFocus >= 0 && a.chainFocus < len(a.points) {
			a.pins.Toggle(a.points[a.chainFocus].Chain.Name)
		}
	}
}

// pickNode prefers the node under the cursor, then the selection.
func (a *App) pickNode() *sim.Node {
	if a.hovered != nil {
		return a.hovered
	}
	return a.selected
}

func (a *App) handleMouse() {
	mx, my := ebiten.CursorPosition()
	fx, fy := float64(mx), float64(my)

	switch a.view {
	case ViewBubbles:
		a.hovered = sim.HitTest(a.engine.Nodes(), fx, fy-stripHeight)
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			a.selected = a.hovered
		}
	case ViewMatrix:
		px, py := a.matrixCursor(fx, fy)
		a.chainHover = matrix.Nearest(a.points, px, py, 0.05)
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			a.chainFocus = a.chainHover
		}
	}
}

// Draw renders the active view plus the shared strips. Never performs
// I/O; icons that are not loaded yet are simply absent.
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)

	if a.dataErr != nil && !a.haveData {
		a.drawInterrupted(screen)
	} else {
		switch a.view {
		case ViewBubbles:
			a.drawBubbles(screen)
		case ViewMatrix:
			a.drawMatrix(screen)
		case ViewResearch:
			a.drawResearch(screen)
		}
	}

	a.drawTickerStrip(screen)
	a.drawNewsStrip(screen)
}

func (a *App) drawInterrupted(screen *ebiten.Image) {
	msg := "data stream interrupted - press R to retry"
	w, h := text.Measure(msg, a.face, 0)
	x := (float64(a.width) - w) / 2
	y := (float64(a.height) - h) / 2
	esset.DrawText(screen, msg, 0, x, y, a.face, colLoss)
}
