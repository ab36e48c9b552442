// Package parse extracts structured records from the source's rendered
// HTML. Parsing is lenient: anything that does not look like a listing is
// skipped, never reported as an error, because one malformed card should
// not cost the rest of the page.
package parse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/listings-service/internal/entity"
)

// SearchPage extracts listing summaries from a search result page. A page
// with no recognizable listing containers yields an empty slice, which the
// caller treats as a signal, not proof, of bracket exhaustion.
func SearchPage(html string) ([]*entity.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var listings []*entity.Listing
	doc.Find("div.gl a").Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		id := itemID(href)
		if id == "" {
			return
		}

		listings = append(listings, &entity.Listing{
			ID:             id,
			ImageRef:       imageRef(link),
			PriceText:      divText(link, "p"),
			TitleText:      divText(link, "l"),
			AttributesText: divText(link, "at"),
		})
	})
	return listings, nil
}

// itemID pulls the stable listing id out of an "/item/<id>" href, dropping
// any query string.
func itemID(href string) string {
	_, after, found := strings.Cut(href, "/item/")
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(after, "?")
	return id
}

// imageRef resolves the representative image of a card, preferring the
// lazy-load attribute and upgrading protocol-relative references.
func imageRef(link *goquery.Selection) string {
	img := link.Find("img").First()
	if img.Length() == 0 {
		return "N/A"
	}
	src, ok := img.Attr("data-original")
	if !ok || src == "" {
		src, _ = img.Attr("src")
	}
	if src == "" {
		return "N/A"
	}
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}

func divText(link *goquery.Selection, class string) string {
	div := link.Find("div." + class).First()
	if div.Length() == 0 {
		return "N/A"
	}
	return strings.TrimSpace(div.Text())
}
