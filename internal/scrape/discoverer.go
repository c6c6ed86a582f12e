// Package scrape provides the HTTP-facing half of ingestion: discovering
// listing URLs from a source's site and extracting vehicle records from
// individual listing pages.
package scrape

import (
	"context"
	"fmt"
	"time"

	colly "github.com/gocolly/colly/v2"

	"github.com/nordbil/carcatalog/internal/logger"
)

// Collector defaults
const (
	defaultRateLimit      = 2 * time.Second
	defaultParallelism    = 2
	defaultRequestTimeout = 30 * time.Second
	defaultMaxPages       = 50
	// randomDelayDivisor derives the random delay jitter from the rate limit.
	randomDelayDivisor = 2
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// SiteConfig describes how to walk one source's listing index.
type SiteConfig struct {
	AllowedDomain string `mapstructure:"allowed_domain" yaml:"allowed_domain"`
	StartURL      string `mapstructure:"start_url"      yaml:"start_url"`
	// LinkSelector matches anchors pointing at individual listing pages.
	LinkSelector string `mapstructure:"link_selector" yaml:"link_selector"`
	// NextPageSelector matches the pagination anchor, empty for single-page
	// indexes.
	NextPageSelector string        `mapstructure:"next_page_selector" yaml:"next_page_selector"`
	MaxPages         int           `mapstructure:"max_pages"          yaml:"max_pages"`
	RateLimit        time.Duration `mapstructure:"rate_limit"         yaml:"rate_limit"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"    yaml:"request_timeout"`
}

// Validate checks the fields a discovery walk cannot run without.
func (c *SiteConfig) Validate() error {
	if c.AllowedDomain == "" {
		return fmt.Errorf("site config: allowed_domain is required")
	}
	if c.StartURL == "" {
		return fmt.Errorf("site config: start_url is required")
	}
	if c.LinkSelector == "" {
		return fmt.Errorf("site config: link_selector is required")
	}
	return nil
}

// Discoverer walks a source's index pages and returns candidate listing URLs.
type Discoverer interface {
	Discover(ctx context.Context) ([]string, error)
}

// SiteDiscoverer is a colly based Discoverer for one configured site.
type SiteDiscoverer struct {
	cfg    SiteConfig
	logger logger.Interface
}

// NewSiteDiscoverer creates a discoverer for the given site.
func NewSiteDiscoverer(cfg SiteConfig, log logger.Interface) (*SiteDiscoverer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	return &SiteDiscoverer{
		cfg:    cfg,
		logger: log.WithComponent("discover"),
	}, nil
}

// Discover walks index pages from the start URL, following pagination up to
// MaxPages, and collects every matched listing link. Links are returned in
// encounter order with within-walk duplicates removed.
func (d *SiteDiscoverer) Discover(ctx context.Context) ([]string, error) {
	collector := colly.NewCollector(
		colly.AllowedDomains(d.cfg.AllowedDomain, "www."+d.cfg.AllowedDomain),
		colly.UserAgent(defaultUserAgent),
		colly.StdlibContext(ctx),
	)
	collector.SetRequestTimeout(d.cfg.RequestTimeout)

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*" + d.cfg.AllowedDomain + "*",
		Delay:       d.cfg.RateLimit,
		RandomDelay: d.cfg.RateLimit / randomDelayDivisor,
		Parallelism: defaultParallelism,
	}); err != nil {
		return nil, fmt.Errorf("failed to set rate limit: %w", err)
	}

	var (
		urls      []string
		seen      = make(map[string]struct{})
		pages     int
		visitErrs int
	)

	collector.OnHTML(d.cfg.LinkSelector, func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		urls = append(urls, link)
	})

	if d.cfg.NextPageSelector != "" {
		collector.OnHTML(d.cfg.NextPageSelector, func(e *colly.HTMLElement) {
			if pages >= d.cfg.MaxPages {
				return
			}
			next := e.Request.AbsoluteURL(e.Attr("href"))
			if next == "" {
				return
			}
			if err := e.Request.Visit(next); err != nil {
				d.logger.Debug("Skipping pagination link", "url", next, "error", err)
			}
		})
	}

	collector.OnRequest(func(r *colly.Request) {
		pages++
		d.logger.Debug("Visiting index page", "url", r.URL.String(), "page", pages)
	})

	collector.OnError(func(r *colly.Response, err error) {
		visitErrs++
		d.logger.Warn("Index page failed",
			"url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
	})

	if err := collector.Visit(d.cfg.StartURL); err != nil {
		return nil, fmt.Errorf("failed to start discovery at %s: %w", d.cfg.StartURL, err)
	}
	collector.Wait()

	if len(urls) == 0 && visitErrs > 0 {
		return nil, fmt.Errorf("discovery found nothing and %d index pages failed", visitErrs)
	}

	d.logger.Info("Discovery walk finished",
		"domain", d.cfg.AllowedDomain, "pages", pages, "urls", len(urls), "errors", visitErrs)

	return urls, nil
}
