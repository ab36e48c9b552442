package parse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/listings-service/internal/entity"
)

// DetailPage extracts attribute/value pairs from the two-column details
// table of a listing page. Hidden spans carry structured payloads that
// would corrupt the visible value, so they are removed before taking text.
// A page without the table yields nil, which callers treat as "no data".
func DetailPage(listingID, html string) ([]*entity.Tag, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table.ad-det").First()
	if table.Length() == 0 {
		return nil, nil
	}

	var tags []*entity.Tag
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() != 2 {
			return
		}

		attr := strings.TrimSpace(cols.Eq(0).Text())
		if attr == "" {
			return
		}

		value := cols.Eq(1)
		value.Find("[style]").Each(func(_ int, hidden *goquery.Selection) {
			if style, _ := hidden.Attr("style"); strings.Contains(style, "none") {
				hidden.Remove()
			}
		})

		tags = append(tags, &entity.Tag{
			ListingID: listingID,
			Attribute: attr,
			Value:     strings.TrimSpace(value.Text()),
		})
	})
	return tags, nil
}
