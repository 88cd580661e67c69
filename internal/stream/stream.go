// Package stream maintains a websocket subscription to a live ticker
// feed (Binance mini-ticker format) and publishes price observations on
// a channel for the price strip.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/onchainrev/terminal/internal/config"
	"github.com/onchainrev/terminal/pkg/models"
)

// reconnectMax caps the backoff between redial attempts.
const (
	reconnectBase = time.Second
	reconnectMax  = 30 * time.Second
	readTimeout   = 90 * time.Second
)

// miniTicker is the Binance 24hr mini-ticker event shape. Prices arrive
// as decimal strings.
type miniTicker struct {
	Symbol string `json:"s"`
	Close  string `json:"c"`
	Open   string `json:"o"`
}

// Client holds one streaming subscription. Updates are delivered on the
// channel returned by Updates; the channel closes when Run returns.
type Client struct {
	cfg     config.StreamConfig
	dialer  *websocket.Dialer
	updates chan models.TickerPrice
}

// NewClient builds a streaming client for the configured symbols.
func NewClient(cfg config.StreamConfig) *Client {
	return &Client{
		cfg:     cfg,
		dialer:  websocket.DefaultDialer,
		updates: make(chan models.TickerPrice, 64),
	}
}

// Updates is the price observation channel. Slow consumers drop updates
// rather than stalling the read loop.
func (c *Client) Updates() <-chan models.TickerPrice { return c.updates }

// Run connects and reads until ctx is cancelled, redialing with
// exponential backoff on any connection failure. It closes the updates
// channel on return.
func (c *Client) Run(ctx context.Context) {
	defer close(c.updates)

	backoff := reconnectBase
	for {
		if err := c.readLoop(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("stream: connection lost: %v (retrying in %s)", err, backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

// endpoint builds the combined-stream URL for the configured symbols,
// e.g. wss://host/ws/btcusdt@miniTicker/ethusdt@miniTicker.
func (c *Client) endpoint() string {
	streams := make([]string, 0, len(c.cfg.Symbols))
	for _, s := range c.cfg.Symbols {
		streams = append(streams, strings.ToLower(s)+"@miniTicker")
	}
	return strings.TrimRight(c.cfg.URL, "/") + "/" + strings.Join(streams, "/")
}

func (c *Client) readLoop(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.endpoint(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return err
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		tick, ok := parseMiniTicker(message)
		if !ok {
			continue
		}
		select {
		case c.updates <- tick:
		default:
			// Consumer is behind; the next tick supersedes this one.
		}
	}
}

// parseMiniTicker decodes one mini-ticker event. Events with a missing
// symbol or unparsable price are dropped.
func parseMiniTicker(raw []byte) (models.TickerPrice, bool) {
	var ev miniTicker
	if err := json.Unmarshal(raw, &ev); err != nil || ev.Symbol == "" {
		return models.TickerPrice{}, false
	}
	price, err := strconv.ParseFloat(ev.Close, 64)
	if err != nil {
		return models.TickerPrice{}, false
	}
	tick := models.TickerPrice{Symbol: ev.Symbol, Price: price}
	if open, err := strconv.ParseFloat(ev.Open, 64); err == nil && open != 0 {
		tick.ChangePct = (price - open) / open * 100
	}
	return tick, true
}
