// Package rates holds the currency-conversion table used to normalize
// listing prices to USD. The table is an explicitly owned object injected
// into every component that converts currencies; it is refreshed once,
// synchronously, before any concurrent work starts and treated as
// read-only for the remainder of a run.
package rates

import (
	"context"
	"fmt"
	"sync"
)

// Built-in defaults, expressed as local units per 1 USD. Used until a
// refresh succeeds and retained when the rate source is unreachable.
var defaults = map[string]float64{
	"USD": 1.0,
	"EUR": 0.93,
	"AMD": 405.0,
	"RUB": 91.5,
}

// Source provides fresh conversion rates, typically from an external API.
type Source interface {
	Fetch(ctx context.Context) (map[string]float64, error)
}

// Table maps currency codes to "units per 1 USD".
type Table struct {
	source Source

	mu    sync.RWMutex
	rates map[string]float64
}

// New returns a Table seeded with the built-in defaults. source may be nil
// for a table that never refreshes (tests, offline runs).
func New(source Source) *Table {
	t := &Table{source: source, rates: make(map[string]float64, len(defaults))}
	for code, rate := range defaults {
		t.rates[code] = rate
	}
	return t
}

// Refresh replaces the table with rates from the source. On any failure the
// last-known table is retained and the error returned for logging; the
// caller decides whether that is fatal (it never is in this system).
func (t *Table) Refresh(ctx context.Context) error {
	if t.source == nil {
		return fmt.Errorf("rates: no source configured")
	}
	fresh, err := t.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("rates: refresh: %w", err)
	}
	if len(fresh) == 0 {
		return fmt.Errorf("rates: refresh returned empty table")
	}

	t.mu.Lock()
	t.rates = fresh
	t.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current table.
func (t *Table) Snapshot() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]float64, len(t.rates))
	for code, rate := range t.rates {
		out[code] = rate
	}
	return out
}
