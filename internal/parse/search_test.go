package parse

import "testing"

const searchHTML = `
<html><body>
<div class="gl">
  <a href="/en/item/12345?pos=1">
    <img data-original="//img.example.com/a.webp" src="/t.gif">
    <div class="p">12,000 ֏</div>
    <div class="l">2020 Toyota Camry, 2.5L</div>
    <div class="at">Yerevan, 85,000 km, Gasoline</div>
  </a>
  <a href="/en/item/67890">
    <img src="https://img.example.com/b.webp">
    <div class="p">$5,000</div>
    <div class="l">2012 Kia Rio</div>
    <div class="at">Gyumri, 150,000 km, Diesel</div>
  </a>
  <a href="/en/category/23/2">next page</a>
</div>
<div class="gl">
  <a href="/en/item/424242">
    <div class="l">2018 Hyundai Elantra</div>
  </a>
</div>
</body></html>`

func TestSearchPage(t *testing.T) {
	listings, err := SearchPage(searchHTML)
	if err != nil {
		t.Fatalf("SearchPage: %v", err)
	}
	if len(listings) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.ID != "12345" {
		t.Errorf("id = %q, want 12345", first.ID)
	}
	if first.ImageRef != "https://img.example.com/a.webp" {
		t.Errorf("image = %q, want protocol-relative upgrade", first.ImageRef)
	}
	if first.PriceText != "12,000 ֏" {
		t.Errorf("price text = %q", first.PriceText)
	}
	if first.TitleText != "2020 Toyota Camry, 2.5L" {
		t.Errorf("title text = %q", first.TitleText)
	}
	if first.AttributesText != "Yerevan, 85,000 km, Gasoline" {
		t.Errorf("attributes text = %q", first.AttributesText)
	}

	if listings[1].ID != "67890" || listings[1].ImageRef != "https://img.example.com/b.webp" {
		t.Errorf("second listing = %+v", listings[1])
	}

	// Card without image or price keeps the sentinel fields.
	third := listings[2]
	if third.ID != "424242" || third.ImageRef != "N/A" || third.PriceText != "N/A" {
		t.Errorf("sparse card = %+v", third)
	}
}

func TestSearchPageEmpty(t *testing.T) {
	listings, err := SearchPage(`<html><body><p>Just a moment...</p></body></html>`)
	if err != nil {
		t.Fatalf("SearchPage: %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("expected no listings, got %d", len(listings))
	}
}
