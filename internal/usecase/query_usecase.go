package usecase

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/user/listings-service/internal/entity"
	"github.com/user/listings-service/internal/extract"
	"github.com/user/listings-service/internal/rates"
	"github.com/user/listings-service/internal/repository"
)

// PageSize is the fixed number of listings per result page.
const PageSize = 24

const (
	optionsCacheKey = "filter-options"
	optionsCacheTTL = 5 * time.Minute
)

// Filter is one query against the listing set. Nil numeric bounds are
// unconstrained; Make and Model are substring matches against the raw
// title text.
type Filter struct {
	Page        int
	Make        string
	Model       string
	Fuel        string
	MinKm       *int
	MaxKm       *int
	MinPriceUSD *float64
	MaxPriceUSD *float64
}

// ModelOption is one model under a make in the filter-options tree.
type ModelOption struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MakeOption is one make with its model breakdown.
type MakeOption struct {
	Name   string        `json:"name"`
	Count  int           `json:"count"`
	Models []ModelOption `json:"models"`
}

// Query defines the interface for the read side: filtered vehicle pages,
// the cascading filter-options tree, the rate table, and the export feed.
type Query interface {
	Vehicles(ctx context.Context, f Filter) ([]entity.Vehicle, error)
	Vehicle(ctx context.Context, id string) (*entity.Vehicle, []*entity.Tag, error)
	FilterOptions(ctx context.Context) ([]MakeOption, error)
	Rates() map[string]float64
	ExportTSV(ctx context.Context, w io.Writer) error
}

type queryUseCase struct {
	listings repository.ListingRepository
	tags     repository.TagRepository
	cache    repository.CacheRepository
	rates    *rates.Table
}

// NewQuery creates a new instance of the query use case. cache may be nil;
// the filter-options tree is then recomputed per request.
func NewQuery(
	listings repository.ListingRepository,
	tags repository.TagRepository,
	cache repository.CacheRepository,
	table *rates.Table,
) Query {
	return &queryUseCase{
		listings: listings,
		tags:     tags,
		cache:    cache,
		rates:    table,
	}
}

// Vehicles returns one page of normalized listings. Substring filters are
// pushed down to the store; fuel, distance, and price predicates invoke the
// extractors against the raw stored text per candidate row, so every
// request re-derives values under the current parsing rules and rates —
// nothing is precomputed or cached.
func (uc *queryUseCase) Vehicles(ctx context.Context, f Filter) ([]entity.Vehicle, error) {
	rows, err := uc.listings.Search(ctx, f.Make, f.Model)
	if err != nil {
		return nil, fmt.Errorf("query: vehicles: %w", err)
	}

	table := uc.rates.Snapshot()

	var matched []*entity.Listing
	for _, l := range rows {
		if !extract.FuelMatches(l.AttributesText, f.Fuel) {
			continue
		}
		if f.MinKm != nil || f.MaxKm != nil {
			km := extract.Kilometers(l.AttributesText)
			if f.MinKm != nil && km < *f.MinKm {
				continue
			}
			if f.MaxKm != nil && km > *f.MaxKm {
				continue
			}
		}
		if f.MinPriceUSD != nil || f.MaxPriceUSD != nil {
			usd := extract.PriceUSD(l.PriceText, table)
			if f.MinPriceUSD != nil && usd < *f.MinPriceUSD {
				continue
			}
			if f.MaxPriceUSD != nil && usd > *f.MaxPriceUSD {
				continue
			}
		}
		matched = append(matched, l)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * PageSize
	if offset >= len(matched) {
		return []entity.Vehicle{}, nil
	}
	end := offset + PageSize
	if end > len(matched) {
		end = len(matched)
	}

	vehicles := make([]entity.Vehicle, 0, end-offset)
	for _, l := range matched[offset:end] {
		vehicles = append(vehicles, normalize(l))
	}
	return vehicles, nil
}

// Vehicle returns one normalized listing with its enrichment tags, or
// (nil, nil, nil) when the id is unknown.
func (uc *queryUseCase) Vehicle(ctx context.Context, id string) (*entity.Vehicle, []*entity.Tag, error) {
	l, err := uc.listings.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query: vehicle %s: %w", id, err)
	}
	if l == nil {
		return nil, nil, nil
	}

	tags, err := uc.tags.ForListing(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query: tags of %s: %w", id, err)
	}

	v := normalize(l)
	return &v, tags, nil
}

// FilterOptions builds the make -> models tree over the full listing set,
// alphabetical at both levels. The tree only changes when a crawl runs, so
// it is served from a short-lived cache when one is available.
func (uc *queryUseCase) FilterOptions(ctx context.Context) ([]MakeOption, error) {
	if uc.cache != nil {
		if cached, ok := uc.cache.Get(ctx, optionsCacheKey); ok {
			var opts []MakeOption
			if err := json.Unmarshal(cached, &opts); err == nil {
				return opts, nil
			}
			slog.Warn("Discarding undecodable cached filter options")
		}
	}

	rows, err := uc.listings.Search(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("query: filter options: %w", err)
	}

	type makeEntry struct {
		count  int
		models map[string]int
	}
	tree := make(map[string]*makeEntry)
	for _, l := range rows {
		_, mk, model, _ := extract.ParseTitle(l.TitleText)
		entry, ok := tree[mk]
		if !ok {
			entry = &makeEntry{models: make(map[string]int)}
			tree[mk] = entry
		}
		entry.count++
		entry.models[model]++
	}

	opts := make([]MakeOption, 0, len(tree))
	for mk, entry := range tree {
		models := make([]ModelOption, 0, len(entry.models))
		for name, count := range entry.models {
			models = append(models, ModelOption{Name: name, Count: count})
		}
		sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
		opts = append(opts, MakeOption{Name: mk, Count: entry.count, Models: models})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Name < opts[j].Name })

	if uc.cache != nil {
		if encoded, err := json.Marshal(opts); err == nil {
			uc.cache.Set(ctx, optionsCacheKey, encoded, optionsCacheTTL)
		}
	}
	return opts, nil
}

// Rates returns the current conversion table verbatim.
func (uc *queryUseCase) Rates() map[string]float64 {
	return uc.rates.Snapshot()
}

// ExportTSV writes the flat listings-joined-with-pivoted-tags feed consumed
// by the external price-model batch job. Tag attributes become columns,
// ordered alphabetically after the fixed listing columns.
func (uc *queryUseCase) ExportTSV(ctx context.Context, w io.Writer) error {
	listings, err := uc.listings.Search(ctx, "", "")
	if err != nil {
		return fmt.Errorf("export: listings: %w", err)
	}
	tags, err := uc.tags.All(ctx)
	if err != nil {
		return fmt.Errorf("export: tags: %w", err)
	}

	attrSet := make(map[string]struct{})
	byListing := make(map[string]map[string]string)
	for _, t := range tags {
		attrSet[t.Attribute] = struct{}{}
		if byListing[t.ListingID] == nil {
			byListing[t.ListingID] = make(map[string]string)
		}
		// First value wins, matching insert-if-absent store semantics.
		if _, ok := byListing[t.ListingID][t.Attribute]; !ok {
			byListing[t.ListingID][t.Attribute] = t.Value
		}
	}

	attrs := make([]string, 0, len(attrSet))
	for attr := range attrSet {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'

	header := append([]string{"id", "image_ref", "price_text", "title_text", "attributes_text"}, attrs...)
	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for _, l := range listings {
		record := []string{l.ID, l.ImageRef, l.PriceText, l.TitleText, l.AttributesText}
		for _, attr := range attrs {
			record = append(record, byListing[l.ID][attr])
		}
		if err := tsv.Write(record); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}

	tsv.Flush()
	return tsv.Error()
}

// normalize re-derives every display field of a listing from its raw text
// so the same raw input always renders the same values on every call path.
func normalize(l *entity.Listing) entity.Vehicle {
	priceVal, currency := extract.ParsePrice(l.PriceText)
	year, mk, model, engine := extract.ParseTitle(l.TitleText)
	location, mileage, fuel := extract.ParseAttributes(l.AttributesText)

	return entity.Vehicle{
		ID:               l.ID,
		Image:            l.ImageRef,
		PriceRaw:         priceVal,
		CurrencyOriginal: currency,
		Year:             year,
		Make:             mk,
		Model:            model,
		Engine:           engine,
		Location:         location,
		Mileage:          mileage,
		Fuel:             fuel,
	}
}
