package entity

// Listing mirrors the `listings` PostgreSQL table schema. The three text
// fields are stored exactly as captured from the source; all normalization
// happens at read time.
type Listing struct {
	ID             string
	ImageRef       string
	PriceText      string
	TitleText      string
	AttributesText string
}

// Vehicle is one normalized listing as returned by the query API. Every
// field is re-derived from the raw Listing text on each request.
type Vehicle struct {
	ID               string  `json:"id"`
	Image            string  `json:"image"`
	PriceRaw         float64 `json:"price_raw"`
	CurrencyOriginal string  `json:"currency_original"`
	Year             int     `json:"year"`
	Make             string  `json:"make"`
	Model            string  `json:"model"`
	Engine           string  `json:"engine"`
	Location         string  `json:"location"`
	Mileage          string  `json:"mileage"`
	Fuel             string  `json:"fuel"`
}
