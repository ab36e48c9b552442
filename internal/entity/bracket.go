package entity

// PriceBracket is a half-open interval [Min, Max) used to partition the
// discovery space. The source caps result counts per query; as long as no
// bracket holds more listings than the cap, a bracketed sweep sees the
// whole category.
type PriceBracket struct {
	Min int
	Max int
}
