package news

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/evyataryagoni/mashup/internal/logger"
	"github.com/evyataryagoni/mashup/internal/models"
)

const (
	// DefaultFeedURL is the Google News local section; %s is the escaped geo
	DefaultFeedURL = "https://news.google.com/news/rss/local/section/geo/%s"

	// DefaultFallbackURL is used when the local feed has no items
	DefaultFallbackURL = "http://www.theonion.com/feeds/rss"

	userAgent = "mashup/1.0"
)

// ErrFeed wraps every failure to fetch or decode a feed
var ErrFeed = errors.New("news feed unavailable")

// Source tells where a list of articles came from
type Source string

const (
	SourceFeed     Source = "feed"
	SourceFallback Source = "fallback"
)

// Config holds the feed endpoints
type Config struct {
	FeedURL     string
	FallbackURL string
	Timeout     time.Duration
}

// Client fetches RSS feeds and maps their items to articles
type Client struct {
	httpClient  *http.Client
	feedURL     string
	fallbackURL string
	logger      *logger.Logger
}

// NewClient creates a feed client; empty URLs fall back to the defaults
func NewClient(cfg Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.FeedURL == "" {
		cfg.FeedURL = DefaultFeedURL
	}
	if cfg.FallbackURL == "" {
		cfg.FallbackURL = DefaultFallbackURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		feedURL:     cfg.FeedURL,
		fallbackURL: cfg.FallbackURL,
		logger:      log.WithComponent("NewsClient"),
	}
}

// Lookup returns the local articles for geo, or the fallback feed's articles
// when the local feed is empty. The result is never nil.
func (c *Client) Lookup(ctx context.Context, geo string) ([]models.Article, Source, error) {
	articles, err := c.fetch(ctx, c.localURL(geo))
	if err != nil {
		return nil, "", err
	}
	if len(articles) > 0 {
		return articles, SourceFeed, nil
	}

	c.logger.Debug().Str("geo", geo).Msg("Local feed empty, using fallback")
	articles, err = c.fetch(ctx, c.fallbackURL)
	if err != nil {
		return nil, "", err
	}
	return articles, SourceFallback, nil
}

// localURL substitutes the escaped geo into the feed URL. A URL without a
// placeholder is used as is.
func (c *Client) localURL(geo string) string {
	return strings.Replace(c.feedURL, "%s", url.PathEscape(geo), 1)
}

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

func (c *Client) fetch(ctx context.Context, feedURL string) ([]models.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeed, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", feedURL).Msg("Feed request failed")
		return nil, fmt.Errorf("%w: %v", ErrFeed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("status", resp.StatusCode).Str("url", feedURL).Msg("Feed upstream error")
		return nil, fmt.Errorf("%w: upstream status %d", ErrFeed, resp.StatusCode)
	}

	var doc rssDocument
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		c.logger.Error().Err(err).Str("url", feedURL).Msg("Failed to decode feed")
		return nil, fmt.Errorf("%w: %v", ErrFeed, err)
	}

	articles := make([]models.Article, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		articles = append(articles, models.Article{
			Link:  strings.TrimSpace(item.Link),
			Title: strings.TrimSpace(item.Title),
		})
	}
	return articles, nil
}
