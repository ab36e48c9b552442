package usecase

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/user/listings-service/internal/entity"
	"github.com/user/listings-service/internal/repository"
	"github.com/user/listings-service/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

// fakeListingRepo is an in-memory ListingRepository.
type fakeListingRepo struct {
	mu        sync.Mutex
	rows      map[string]*entity.Listing
	upsertErr error
	searches  int
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{rows: make(map[string]*entity.Listing)}
}

func (r *fakeListingRepo) EnsureSchema(ctx context.Context) error { return nil }

func (r *fakeListingRepo) UpsertBatch(ctx context.Context, listings []*entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	for _, l := range listings {
		copied := *l
		r.rows[l.ID] = &copied
	}
	return nil
}

func (r *fakeListingRepo) IDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeListingRepo) FindByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *l
	return &copied, nil
}

func (r *fakeListingRepo) Search(ctx context.Context, makeSub, modelSub string) ([]*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches++

	var out []*entity.Listing
	for _, l := range r.rows {
		title := strings.ToLower(l.TitleText)
		if makeSub != "" && !strings.Contains(title, strings.ToLower(makeSub)) {
			continue
		}
		if modelSub != "" && !strings.Contains(title, strings.ToLower(modelSub)) {
			continue
		}
		copied := *l
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeListingRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows), nil
}

func (r *fakeListingRepo) snapshot() map[string]entity.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]entity.Listing, len(r.rows))
	for id, l := range r.rows {
		out[id] = *l
	}
	return out
}

// fakeTagRepo is an in-memory TagRepository enforcing the
// (listing_id, attribute) unique constraint with insert-if-absent writes.
type fakeTagRepo struct {
	mu   sync.Mutex
	tags map[string]map[string]string // listing id -> attribute -> value
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: make(map[string]map[string]string)}
}

func (r *fakeTagRepo) EnsureSchema(ctx context.Context) error { return nil }

func (r *fakeTagRepo) InsertBatch(ctx context.Context, tags []*entity.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tags {
		if r.tags[t.ListingID] == nil {
			r.tags[t.ListingID] = make(map[string]string)
		}
		if _, exists := r.tags[t.ListingID][t.Attribute]; !exists {
			r.tags[t.ListingID][t.Attribute] = t.Value
		}
	}
	return nil
}

func (r *fakeTagRepo) ListingIDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id := range r.tags {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeTagRepo) ForListing(ctx context.Context, listingID string) ([]*entity.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Tag
	attrs := make([]string, 0, len(r.tags[listingID]))
	for attr := range r.tags[listingID] {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	for _, attr := range attrs {
		out = append(out, &entity.Tag{ListingID: listingID, Attribute: attr, Value: r.tags[listingID][attr]})
	}
	return out, nil
}

func (r *fakeTagRepo) All(ctx context.Context) ([]*entity.Tag, error) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.tags))
	for id := range r.tags {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)

	var out []*entity.Tag
	for _, id := range ids {
		tags, _ := r.ForListing(context.Background(), id)
		out = append(out, tags...)
	}
	return out, nil
}

func (r *fakeTagRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, attrs := range r.tags {
		n += len(attrs)
	}
	return n
}

// fakeSkipRepo is an in-memory SkipRepository.
type fakeSkipRepo struct {
	mu   sync.Mutex
	gone map[string]bool
}

func newFakeSkipRepo() *fakeSkipRepo {
	return &fakeSkipRepo{gone: make(map[string]bool)}
}

func (r *fakeSkipRepo) MarkGone(ctx context.Context, listingID string, expiry time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gone[listingID] = true
	return nil
}

func (r *fakeSkipRepo) IsGone(ctx context.Context, listingID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gone[listingID], nil
}

// fakeFetcher serves canned responses keyed by URL and records every fetch.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]*repository.FetchResult
	failing   map[string]bool
	fetched   []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: make(map[string]*repository.FetchResult),
		failing:   make(map[string]bool),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, req repository.FetchRequest) (*repository.FetchResult, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, req.URL)
	f.mu.Unlock()

	if f.failing[req.URL] {
		return nil, errors.New("connection reset")
	}
	if res, ok := f.responses[req.URL]; ok {
		return res, nil
	}
	return &repository.FetchResult{StatusCode: 200, Body: "<html><body></body></html>"}, nil
}

func (f *fakeFetcher) fetchedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

// fakeCache is an in-memory CacheRepository.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.store[key]
	return val, ok
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
}
