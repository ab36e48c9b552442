package parse

import "testing"

const detailHTML = `
<html><body>
<table class="pad-top-6 ad-det">
  <tbody>
    <tr><td>Mileage</td><td>150,000 km<span style="display: none;">{"raw":150000}</span></td></tr>
    <tr><td>Fuel Type</td><td>Diesel</td></tr>
    <tr><td>Color</td><td>  Black </td></tr>
    <tr><td colspan="2">section header</td></tr>
  </tbody>
</table>
</body></html>`

func TestDetailPage(t *testing.T) {
	tags, err := DetailPage("12345", detailHTML)
	if err != nil {
		t.Fatalf("DetailPage: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags))
	}

	if tags[0].ListingID != "12345" || tags[0].Attribute != "Mileage" {
		t.Errorf("first tag = %+v", tags[0])
	}
	if tags[0].Value != "150,000 km" {
		t.Errorf("hidden payload leaked into value: %q", tags[0].Value)
	}
	if tags[1].Attribute != "Fuel Type" || tags[1].Value != "Diesel" {
		t.Errorf("second tag = %+v", tags[1])
	}
	if tags[2].Value != "Black" {
		t.Errorf("value not trimmed: %q", tags[2].Value)
	}
}

func TestDetailPageWithoutTable(t *testing.T) {
	tags, err := DetailPage("12345", `<html><body><h1>Some other page</h1></body></html>`)
	if err != nil {
		t.Fatalf("DetailPage: %v", err)
	}
	if tags != nil {
		t.Fatalf("expected nil tags, got %v", tags)
	}
}
