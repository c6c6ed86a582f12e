package scrape

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nordbil/carcatalog/internal/domain"
	"github.com/nordbil/carcatalog/internal/logger"
)

// PageSelectors maps one source's listing page layout to record fields.
// Empty selectors leave the corresponding field unset.
type PageSelectors struct {
	Title   string `mapstructure:"title"   yaml:"title"`
	Make    string `mapstructure:"make"    yaml:"make"`
	Model   string `mapstructure:"model"   yaml:"model"`
	Year    string `mapstructure:"year"    yaml:"year"`
	Price   string `mapstructure:"price"   yaml:"price"`
	Mileage string `mapstructure:"mileage" yaml:"mileage"`
	Image   string `mapstructure:"image"   yaml:"image"`
	// VehicleMarker must match on a real vehicle page. Pages where it is
	// absent are classified as non-vehicle.
	VehicleMarker string `mapstructure:"vehicle_marker" yaml:"vehicle_marker"`
}

// PageExtractor fetches listing pages over HTTP and extracts vehicle records
// with per-source CSS selectors.
type PageExtractor struct {
	client    *http.Client
	selectors PageSelectors
	userAgent string
	logger    logger.Interface
}

// NewPageExtractor creates an extractor for one source's page layout.
func NewPageExtractor(selectors PageSelectors, timeout time.Duration, log logger.Interface) *PageExtractor {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &PageExtractor{
		client:    &http.Client{Timeout: timeout},
		selectors: selectors,
		userAgent: defaultUserAgent,
		logger:    log.WithComponent("extract"),
	}
}

// Extract fetches the entry's page and classifies it. Network and HTTP
// failures are navigation failures, a missing vehicle marker means the page
// is not a vehicle, and anything else produces a record.
func (e *PageExtractor) Extract(ctx context.Context, entry domain.FrontierEntry) domain.ExtractionOutcome {
	doc, failure := e.fetch(ctx, entry.URL)
	if failure != "" {
		e.logger.Debug("Navigation failed",
			"source", entry.Source, "reference", entry.Reference, "detail", failure)
		return domain.NavigationFailedOutcome(failure)
	}

	if e.selectors.VehicleMarker != "" && doc.Find(e.selectors.VehicleMarker).Length() == 0 {
		return domain.NotVehicleOutcome("vehicle marker not found")
	}

	record := &domain.VehicleRecord{
		Title: text(doc, e.selectors.Title),
		Make:  text(doc, e.selectors.Make),
		Model: text(doc, e.selectors.Model),
	}

	if year, ok := ParseYear(text(doc, e.selectors.Year)); ok {
		record.Year = &year
	}
	if price, ok := ParseISK(text(doc, e.selectors.Price)); ok {
		record.Price = &price
	}
	if mileage, ok := ParseMileage(text(doc, e.selectors.Mileage)); ok {
		record.Mileage = &mileage
	}
	if e.selectors.Image != "" {
		if src, exists := doc.Find(e.selectors.Image).First().Attr("src"); exists && src != "" {
			record.ImageURL = &src
		}
	}

	return domain.VehicleOutcome(record)
}

// fetch returns the parsed document, or a non-empty failure detail when the
// page could not be reached.
func (e *PageExtractor) fetch(ctx context.Context, url string) (*goquery.Document, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Sprintf("build request: %v", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Sprintf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Sprintf("parse page: %v", err)
	}

	return doc, ""
}

func text(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

var digitRun = regexp.MustCompile(`\d+`)

// ParseISK reads an Icelandic krona amount such as "1.280.000 kr." where the
// dot is a thousands separator.
func ParseISK(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}

	cleaned := strings.Join(digitRun.FindAllString(raw, -1), "")
	if cleaned == "" {
		return 0, false
	}

	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || value <= 0 {
		return 0, false
	}

	return value, true
}

// ParseMileage reads an odometer reading such as "85.000 km".
func ParseMileage(raw string) (int64, bool) {
	return ParseISK(raw)
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ParseYear finds a four digit model year in free text such as "Árgerð 2019".
func ParseYear(raw string) (int, bool) {
	match := yearPattern.FindString(raw)
	if match == "" {
		return 0, false
	}

	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}

	return year, true
}
