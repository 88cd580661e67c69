package ui

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// iconRetryAfter is how long a failed icon URL is left alone before the
// next fetch attempt.
const iconRetryAfter = 5 * time.Minute

// iconCache fetches coin icons in the background. A bubble whose icon has
// not arrived (or failed to decode) is simply drawn without one; icon
// failures never reach the render loop as errors.
type iconCache struct {
	mu      sync.Mutex
	icons   map[string]*ebiten.Image
	pending map[string]struct{}
	failed  map[string]time.Time
	client  *http.Client
	now     func() time.Time
}

func newIconCache() *iconCache {
	return &iconCache{
		icons:   make(map[string]*ebiten.Image),
		pending: make(map[string]struct{}),
		failed:  make(map[string]time.Time),
		client:  &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
}

// Get returns the icon for url if it has loaded, scheduling a background
// fetch the first time a url is seen.
func (c *iconCache) Get(ctx context.Context, url string) *ebiten.Image {
	if url == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.icons[url]; ok {
		return img
	}
	if _, inflight := c.pending[url]; inflight {
		return nil
	}
	if at, known := c.failed[url]; known {
		if c.now().Sub(at) < iconRetryAfter {
			return nil
		}
		delete(c.failed, url)
	}
	c.pending[url] = struct{}{}
	go c.fetch(ctx, url)
	return nil
}

func (c *iconCache) fetch(ctx context.Context, url string) {
	img := c.download(ctx, url)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, url)
	if img == nil {
		// Remember the failure so the render loop does not hammer a
		// dead URL on every frame; the bubble renders without an icon.
		c.failed[url] = c.now()
		return
	}
	c.icons[url] = img
}

func (c *iconCache) download(ctx context.Context, url string) *ebiten.Image {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil
	}
	decoded, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	return ebiten.NewImageFromImage(decoded)
}
