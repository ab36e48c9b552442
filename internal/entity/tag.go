package entity

// Tag is one attribute/value pair extracted from a listing's detail page.
// (ListingID, Attribute) is unique; duplicate inserts are ignored.
type Tag struct {
	ID        int64
	ListingID string
	Attribute string
	Value     string
}
