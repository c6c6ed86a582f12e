// Package dedup collapses duplicate catalog listings in three ordered,
// idempotent passes: within-source parameter collapse, aggregator-versus-
// dealer collapse, and exact-attribute collapse. Each pass assumes the
// invariants established by the previous one, so the order is fixed.
package dedup

import (
	"context"
	"fmt"
	"sort"

	"github.com/nordbil/carcatalog/internal/domain"
	"github.com/nordbil/carcatalog/internal/frontier"
	"github.com/nordbil/carcatalog/internal/logger"
	"github.com/nordbil/carcatalog/internal/metrics"
)

// CatalogReader is the catalog read surface the resolver needs.
type CatalogReader interface {
	ListActiveBySource(ctx context.Context, source string) ([]*domain.Listing, error)
	ListActive(ctx context.Context) ([]*domain.Listing, error)
}

// ListingDeleter routes a listing removal through the deletion coordinator.
type ListingDeleter interface {
	DeleteListing(ctx context.Context, listing *domain.Listing, cause string) error
}

// Report counts deletions per pass for one resolver run.
type Report struct {
	WithinSource int `json:"within_source"`
	Aggregator   int `json:"aggregator"`
	ExactMatch   int `json:"exact_match"`
}

// Total returns the number of rows deleted across all passes.
func (r Report) Total() int {
	return r.WithinSource + r.Aggregator + r.ExactMatch
}

// Resolver runs the dedup passes over the active catalog.
type Resolver struct {
	catalog CatalogReader
	deleter ListingDeleter
	parsers *frontier.ParserRegistry
	sources []domain.Source
	logger  logger.Interface
}

// NewResolver creates a dedup resolver over the configured sources.
func NewResolver(
	catalog CatalogReader,
	deleter ListingDeleter,
	parsers *frontier.ParserRegistry,
	sources []domain.Source,
	log logger.Interface,
) *Resolver {
	return &Resolver{
		catalog: catalog,
		deleter: deleter,
		parsers: parsers,
		sources: sources,
		logger:  log.WithComponent("dedup"),
	}
}

// Run executes the three passes in their fixed order. Re-running after
// convergence deletes nothing further.
func (r *Resolver) Run(ctx context.Context) (Report, error) {
	report := Report{}

	within, err := r.CollapseWithinSource(ctx)
	if err != nil {
		return report, fmt.Errorf("within-source pass: %w", err)
	}
	report.WithinSource = within

	aggregator, err := r.CollapseAggregator(ctx)
	if err != nil {
		return report, fmt.Errorf("aggregator pass: %w", err)
	}
	report.Aggregator = aggregator

	exact, err := r.CollapseExact(ctx)
	if err != nil {
		return report, fmt.Errorf("exact-attribute pass: %w", err)
	}
	report.ExactMatch = exact

	r.logger.Info("Dedup run finished",
		"within_source", report.WithinSource,
		"aggregator", report.Aggregator,
		"exact_match", report.ExactMatch,
	)

	return report, nil
}

// CollapseWithinSource removes rows that reference the same vehicle within a
// single source through different URL parameters. Rows are grouped by the
// correlation token embedded in their URLs; the group keeps its most complete
// row (ties broken by earliest created_at) and the rest are deleted.
func (r *Resolver) CollapseWithinSource(ctx context.Context) (int, error) {
	deleted := 0

	for _, source := range r.sources {
		parser, err := r.parsers.Lookup(source.ID)
		if err != nil {
			return deleted, err
		}

		listings, err := r.catalog.ListActiveBySource(ctx, source.ID)
		if err != nil {
			return deleted, err
		}

		groups := make(map[string][]*domain.Listing)
		for _, l := range listings {
			token, ok := parser.CorrelationToken(l.URL)
			if !ok {
				continue
			}
			groups[token] = append(groups[token], l)
		}

		for token, group := range groups {
			if len(group) < 2 {
				continue
			}

			keep := mostComplete(group)
			for _, l := range group {
				if l.ID == keep.ID {
					continue
				}
				if delErr := r.deleter.DeleteListing(ctx, l, metrics.DeleteCauseWithinSource); delErr != nil {
					return deleted, delErr
				}
				deleted++
			}

			r.logger.Debug("Collapsed within-source duplicates",
				"source", source.ID, "token", token, "kept", keep.ID, "removed", len(group)-1)
		}
	}

	return deleted, nil
}

// CollapseAggregator removes aggregator rows that republish a dealer
// listing. A shared correlation token, extracted independently from each
// source's URL format, links the pair; the dealer row is kept
// unconditionally regardless of completeness or recency.
func (r *Resolver) CollapseAggregator(ctx context.Context) (int, error) {
	dealerTokens := make(map[string]struct{})

	for _, source := range r.sources {
		if !source.IsAuthoritative() {
			continue
		}

		parser, err := r.parsers.Lookup(source.ID)
		if err != nil {
			return 0, err
		}

		listings, err := r.catalog.ListActiveBySource(ctx, source.ID)
		if err != nil {
			return 0, err
		}

		for _, l := range listings {
			if token, ok := parser.CorrelationToken(l.URL); ok {
				dealerTokens[token] = struct{}{}
			}
		}
	}

	deleted := 0
	for _, source := range r.sources {
		if source.IsAuthoritative() {
			continue
		}

		parser, err := r.parsers.Lookup(source.ID)
		if err != nil {
			return deleted, err
		}

		listings, err := r.catalog.ListActiveBySource(ctx, source.ID)
		if err != nil {
			return deleted, err
		}

		for _, l := range listings {
			token, ok := parser.CorrelationToken(l.URL)
			if !ok {
				continue
			}
			if _, matched := dealerTokens[token]; !matched {
				continue
			}
			if delErr := r.deleter.DeleteListing(ctx, l, metrics.DeleteCauseAggregator); delErr != nil {
				return deleted, delErr
			}
			deleted++
		}
	}

	return deleted, nil
}

// CollapseExact groups the remaining active rows by their full attribute
// signature and keeps exactly one row per multi-row group: authoritative
// sources outrank the aggregator, then the earliest created_at wins.
func (r *Resolver) CollapseExact(ctx context.Context) (int, error) {
	listings, err := r.catalog.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	groups := make(map[domain.AttributeSignature][]*domain.Listing)
	for _, l := range listings {
		sig, ok := l.Signature()
		if !ok {
			continue
		}
		groups[sig] = append(groups[sig], l)
	}

	authoritative := make(map[string]bool, len(r.sources))
	for _, source := range r.sources {
		authoritative[source.ID] = source.IsAuthoritative()
	}

	deleted := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}

		sort.SliceStable(group, func(i, j int) bool {
			ai, aj := authoritative[group[i].Source], authoritative[group[j].Source]
			if ai != aj {
				return ai
			}
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})

		for _, l := range group[1:] {
			if delErr := r.deleter.DeleteListing(ctx, l, metrics.DeleteCauseExactMatch); delErr != nil {
				return deleted, delErr
			}
			deleted++
		}
	}

	return deleted, nil
}

// mostComplete returns the row with the most populated matching attributes,
// breaking ties by earliest created_at.
func mostComplete(group []*domain.Listing) *domain.Listing {
	best := group[0]
	for _, l := range group[1:] {
		switch {
		case l.Completeness() > best.Completeness():
			best = l
		case l.Completeness() == best.Completeness() && l.CreatedAt.Before(best.CreatedAt):
			best = l
		}
	}
	return best
}
