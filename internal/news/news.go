// Package news fetches editorial RSS feeds for the headline strip.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/onchainrev/terminal/internal/config"
	"github.com/onchainrev/terminal/internal/infra"
	"github.com/onchainrev/terminal/pkg/models"
)

const cacheKey = "news_headlines"

// Service aggregates configured RSS feeds into one headline list, cached
// stale-while-revalidate like the market providers.
type Service struct {
	cache  *infra.SWRCache
	cfg    config.NewsConfig
	fresh  time.Duration
	parser *gofeed.Parser
}

// NewService builds the news service over the shared cache.
func NewService(cache *infra.SWRCache, cfg config.NewsConfig, fresh time.Duration) *Service {
	return &Service{
		cache:  cache,
		cfg:    cfg,
		fresh:  fresh,
		parser: gofeed.NewParser(),
	}
}

// Headlines returns the merged headline list, newest first. A fresh cache
// entry short-circuits; a stale one is served immediately while a
// background refresh runs, delivering through onUpdate.
func (s *Service) Headlines(ctx context.Context, onUpdate func([]models.Headline)) ([]models.Headline, error) {
	if raw, stale, ok := s.cache.Get(cacheKey, s.fresh); ok {
		var cached []models.Headline
		if err := json.Unmarshal(raw, &cached); err == nil {
			if stale {
				s.cache.Refresh(cacheKey, func() (json.RawMessage, error) {
					items, err := s.fetchAll(context.Background())
					if err != nil {
						return nil, err
					}
					return json.Marshal(items)
				}, func(raw json.RawMessage) {
					if onUpdate == nil {
						return
					}
					var next []models.Headline
					if err := json.Unmarshal(raw, &next); err == nil {
						onUpdate(next)
					}
				})
			}
			return cached, nil
		}
	}

	items, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, raw); err != nil {
		log.Printf("news: cache write failed: %v", err)
	}
	return items, nil
}

// fetchAll pulls every configured feed, skipping failed sources, and
// merges the survivors newest first up to the configured limit. It errors
// only when no feed produced anything.
func (s *Service) fetchAll(ctx context.Context) ([]models.Headline, error) {
	var all []models.Headline
	for _, url := range s.cfg.Feeds {
		items, err := s.fetchFeed(ctx, url)
		if err != nil {
			log.Printf("news: skipping feed %s: %v", url, err)
			continue
		}
		all = append(all, items...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no headlines from %d configured feeds", len(s.cfg.Feeds))
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Published.After(all[j].Published)
	})
	if s.cfg.Limit > 0 && len(all) > s.cfg.Limit {
		all = all[:s.cfg.Limit]
	}
	return all, nil
}

func (s *Service) fetchFeed(ctx context.Context, url string) ([]models.Headline, error) {
	feed, err := s.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feedHeadlines(feed, url), nil
}

// ParseDocument extracts headlines from an already-fetched feed body. It
// exists so feed handling is testable without a network.
func (s *Service) ParseDocument(body, sourceURL string) ([]models.Headline, error) {
	feed, err := s.parser.ParseString(body)
	if err != nil {
		return nil, err
	}
	return feedHeadlines(feed, sourceURL), nil
}

func feedHeadlines(feed *gofeed.Feed, fallbackSource string) []models.Headline {
	source := feed.Title
	if source == "" {
		source = fallbackSource
	}
	items := make([]models.Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		h := models.Headline{
			Title:   strings.TrimSpace(item.Title),
			Link:    item.Link,
			Source:  source,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			h.Published = *item.PublishedParsed
		}
		if h.Title == "" {
			continue
		}
		items = append(items, h)
	}
	return items
}

// cleanHTML strips markup from a feed summary using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
