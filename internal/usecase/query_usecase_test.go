package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/user/listings-service/internal/entity"
	"github.com/user/listings-service/internal/rates"
)

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func seedVehicle(store *fakeListingRepo, id, price, title, attrs string) {
	store.rows[id] = &entity.Listing{
		ID:             id,
		ImageRef:       "https://img.test/" + id + ".webp",
		PriceText:      price,
		TitleText:      title,
		AttributesText: attrs,
	}
}

func TestVehiclesPriceFilterInUSD(t *testing.T) {
	store := newFakeListingRepo()
	seedVehicle(store, "1", "12,000 ֏", "2020 Toyota Camry, 2.5L", "Yerevan, 85,000 km, Gasoline")
	seedVehicle(store, "2", "$5,000", "2012 Kia Rio", "Gyumri, 150,000 km, Gasoline")

	q := NewQuery(store, newFakeTagRepo(), nil, rates.New(nil))

	// 12,000 AMD at 405/USD is ~29.6 USD: inside [10, 30]; $5,000 is not.
	got, err := q.Vehicles(context.Background(), Filter{
		Page:        1,
		MinPriceUSD: floatPtr(10),
		MaxPriceUSD: floatPtr(30),
	})
	if err != nil {
		t.Fatalf("Vehicles: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("got %+v, want only listing 1", got)
	}
	if got[0].CurrencyOriginal != "AMD" || got[0].PriceRaw != 12000 {
		t.Errorf("normalized price = %v %s", got[0].PriceRaw, got[0].CurrencyOriginal)
	}
}

func TestVehiclesDistanceAndFuelFilters(t *testing.T) {
	store := newFakeListingRepo()
	seedVehicle(store, "1", "$5,000", "2012 Kia Rio", "Gyumri, 150,000 km, Gasoline")
	seedVehicle(store, "2", "$7,000", "2015 VW Golf", "Yerevan, 60,000 km, Diesel")
	seedVehicle(store, "3", "$9,000", "2018 Toyota Prius", "Yerevan, 40,000 km, Hybrid")

	q := NewQuery(store, newFakeTagRepo(), nil, rates.New(nil))

	got, err := q.Vehicles(context.Background(), Filter{
		Page:  1,
		Fuel:  "Diesel,Hybrid",
		MaxKm: intPtr(50000),
	})
	if err != nil {
		t.Fatalf("Vehicles: %v", err)
	}
	if len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("got %+v, want only the hybrid under 50,000 km", got)
	}
	if got[0].Fuel != "Hybrid" || got[0].Mileage != "40,000 km" {
		t.Errorf("normalized fields = %+v", got[0])
	}
}

func TestVehiclesMakeSubstringFilter(t *testing.T) {
	store := newFakeListingRepo()
	seedVehicle(store, "1", "$5,000", "2012 Kia Rio", "Gyumri, 150,000 km, Gasoline")
	seedVehicle(store, "2", "$7,000", "2015 Toyota Corolla", "Yerevan, 90,000 km, Gasoline")

	q := NewQuery(store, newFakeTagRepo(), nil, rates.New(nil))

	got, err := q.Vehicles(context.Background(), Filter{Page: 1, Make: "Toyota"})
	if err != nil {
		t.Fatalf("Vehicles: %v", err)
	}
	if len(got) != 1 || got[0].Make != "Toyota" || got[0].Model != "Corolla" || got[0].Year != 2015 {
		t.Fatalf("got %+v", got)
	}
}

func TestVehiclesPagination(t *testing.T) {
	store := newFakeListingRepo()
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("%03d", i)
		seedVehicle(store, id, "$5,000", "2012 Kia Rio", "Gyumri, 150,000 km, Gasoline")
	}

	q := NewQuery(store, newFakeTagRepo(), nil, rates.New(nil))

	for _, tt := range []struct {
		page int
		want int
	}{
		{1, 24},
		{2, 6},
		{3, 0},
	} {
		got, err := q.Vehicles(context.Background(), Filter{Page: tt.page})
		if err != nil {
			t.Fatalf("page %d: %v", tt.page, err)
		}
		if len(got) != tt.want {
			t.Errorf("page %d returned %d rows, want %d", tt.page, len(got), tt.want)
		}
	}
}

func TestVehicleWithTags(t *testing.T) {
	store := newFakeListingRepo()
	seedVehicle(store, "1", "€9,300", "2020 Toyota Camry, 2.5L", "Yerevan, 85,000 km, Gasoline")
	tagStore := newFakeTagRepo()
	tagStore.InsertBatch(context.Background(), []*entity.Tag{
		{ListingID: "1", Attribute: "Color", Value: "Black"},
	})

	q := NewQuery(store, tagStore, nil, rates.New(nil))

	v, tags, err := q.Vehicle(context.Background(), "1")
	if err != nil {
		t.Fatalf("Vehicle: %v", err)
	}
	if v == nil || v.Year != 2020 || v.Engine != "2.5L" || v.CurrencyOriginal != "EUR" {
		t.Fatalf("vehicle = %+v", v)
	}
	if len(tags) != 1 || tags[0].Value != "Black" {
		t.Fatalf("tags = %+v", tags)
	}

	v, tags, err = q.Vehicle(context.Background(), "missing")
	if err != nil || v != nil || tags != nil {
		t.Fatalf("unknown id = (%v, %v, %v), want all nil", v, tags, err)
	}
}

func TestFilterOptionsTree(t *testing.T) {
	store := newFakeListingRepo()
	seedVehicle(store, "1", "$5,000", "2012 Kia Rio", "")
	seedVehicle(store, "2", "$6,000", "2014 Kia Rio", "")
	seedVehicle(store, "3", "$7,000", "2015 Kia Sorento", "")
	seedVehicle(store, "4", "$8,000", "2016 BMW X5", "")
	seedVehicle(store, "5", "$1,000", "Unknown SUV", "")

	q := NewQuery(store, newFakeTagRepo(), nil, rates.New(nil))

	opts, err := q.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("FilterOptions: %v", err)
	}

	if len(opts) != 3 {
		t.Fatalf("got %d makes, want 3: %+v", len(opts), opts)
	}
	// Alphabetical at the make level.
	if opts[0].Name != "BMW" || opts[1].Name != "Kia" || opts[2].Name != "Other" {
		t.Fatalf("make order = %s, %s, %s", opts[0].Name, opts[1].Name, opts[2].Name)
	}

	kia := opts[1]
	if kia.Count != 3 || len(kia.Models) != 2 {
		t.Fatalf("kia = %+v", kia)
	}
	// Alphabetical at the model level, with per-model counts.
	if kia.Models[0].Name != "Rio" || kia.Models[0].Count != 2 ||
		kia.Models[1].Name != "Sorento" || kia.Models[1].Count != 1 {
		t.Fatalf("kia models = %+v", kia.Models)
	}
}

func TestFilterOptionsServedFromCache(t *testing.T) {
	store := newFakeListingRepo()
	seedVehicle(store, "1", "$5,000", "2012 Kia Rio", "")
	cache := newFakeCache()

	q := NewQuery(store, newFakeTagRepo(), cache, rates.New(nil))

	if _, err := q.FilterOptions(context.Background()); err != nil {
		t.Fatalf("first call: %v", err)
	}
	scansAfterFirst := store.searches

	opts, err := q.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if store.searches != scansAfterFirst {
		t.Error("second call hit the store instead of the cache")
	}
	if len(opts) != 1 || opts[0].Name != "Kia" {
		t.Fatalf("cached options = %+v", opts)
	}
}

func TestRatesVerbatim(t *testing.T) {
	q := NewQuery(newFakeListingRepo(), newFakeTagRepo(), nil, rates.New(nil))

	got := q.Rates()
	if got["AMD"] != 405.0 || got["USD"] != 1.0 {
		t.Fatalf("rates = %v", got)
	}
}

func TestExportTSVPivotsTags(t *testing.T) {
	store := newFakeListingRepo()
	seedVehicle(store, "1", "$5,000", "2012 Kia Rio", "Gyumri, 150,000 km, Gasoline")
	seedVehicle(store, "2", "$7,000", "2015 VW Golf", "Yerevan, 60,000 km, Diesel")
	tagStore := newFakeTagRepo()
	tagStore.InsertBatch(context.Background(), []*entity.Tag{
		{ListingID: "1", Attribute: "Color", Value: "Black"},
		{ListingID: "1", Attribute: "Transmission", Value: "Automatic"},
		{ListingID: "2", Attribute: "Color", Value: "White"},
	})

	q := NewQuery(store, tagStore, nil, rates.New(nil))

	var buf bytes.Buffer
	if err := q.ExportTSV(context.Background(), &buf); err != nil {
		t.Fatalf("ExportTSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("export has %d lines, want header + 2 rows:\n%s", len(lines), buf.String())
	}

	header := strings.Split(lines[0], "\t")
	wantHeader := []string{"id", "image_ref", "price_text", "title_text", "attributes_text", "Color", "Transmission"}
	if len(header) != len(wantHeader) {
		t.Fatalf("header = %v", header)
	}
	for i := range wantHeader {
		if header[i] != wantHeader[i] {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], wantHeader[i])
		}
	}

	row1 := strings.Split(lines[1], "\t")
	if row1[0] != "1" || row1[5] != "Black" || row1[6] != "Automatic" {
		t.Errorf("row 1 = %v", row1)
	}
	row2 := strings.Split(lines[2], "\t")
	if row2[0] != "2" || row2[5] != "White" || row2[6] != "" {
		t.Errorf("row 2 = %v", row2)
	}
}
