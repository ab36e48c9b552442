// Package extract turns the raw text fields captured at crawl time into
// normalized numeric and categorical values. Every function is pure and
// total: malformed or missing input degrades to a documented sentinel
// (0, "Other", "USD") instead of returning an error, so the same functions
// serve both result formatting and per-row query predicates.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

const milesToKm = 1.60934

var (
	numberRe   = regexp.MustCompile(`\d+`)
	distanceRe = regexp.MustCompile(`(?i)([\d,]+)\s*(km|miles|mi)`)
)

// fuelVocabulary is ordered: the first keyword contained in the attributes
// text wins.
var fuelVocabulary = []string{"Gasoline", "Diesel", "Hybrid", "Electric", "LPG", "CNG"}

// DetectCurrency returns the currency marker found in a price string, one
// of USD, EUR, AMD, RUB. USD is the default when no marker is present.
func DetectCurrency(text string) string {
	switch {
	case strings.Contains(text, "֏") || strings.Contains(text, "AMD"):
		return "AMD"
	case strings.Contains(text, "€") || strings.Contains(text, "EUR"):
		return "EUR"
	case strings.Contains(text, "₽") || strings.Contains(text, "RUB"):
		return "RUB"
	default:
		return "USD"
	}
}

// ParsePrice extracts the numeric value and currency of a raw price string
// for display. "N/A" and unparseable input yield (0, "USD").
func ParsePrice(text string) (float64, string) {
	if text == "" || strings.Contains(text, "N/A") {
		return 0, "USD"
	}
	clean := strings.ReplaceAll(text, ",", "")
	match := numberRe.FindString(clean)
	if match == "" {
		return 0, "USD"
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, "USD"
	}
	return val, DetectCurrency(clean)
}

// PriceUSD converts a raw price string to USD using the given table of
// "units per 1 USD" rates. Unknown or zero rates fall back to treating the
// value as already denominated in USD.
func PriceUSD(text string, rates map[string]float64) float64 {
	val, currency := ParsePrice(text)
	if val == 0 {
		return 0
	}
	rate, ok := rates[currency]
	if !ok || rate == 0 {
		return val
	}
	return val / rate
}

// Kilometers extracts a travelled distance from free text. Miles are
// converted to kilometers and the result truncated to an integer; input
// without a recognizable "<number> km|mi|miles" run yields 0.
func Kilometers(text string) int {
	match := distanceRe.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	raw, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return 0
	}
	if strings.Contains(strings.ToLower(match[2]), "mi") {
		return int(raw * milesToKm)
	}
	return int(raw)
}

// FuelMatches reports whether the attributes text mentions any of the
// desired fuels (comma-separated, case-insensitive). An empty desired list
// matches everything; a non-empty list never matches an empty field.
func FuelMatches(attrText, desiredCSV string) bool {
	if desiredCSV == "" {
		return true
	}
	if attrText == "" {
		return false
	}
	haystack := strings.ToLower(attrText)
	for _, fuel := range strings.Split(desiredCSV, ",") {
		fuel = strings.TrimSpace(fuel)
		if fuel == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(fuel)) {
			return true
		}
	}
	return false
}

// ParseTitle decomposes a "<year> <make> <model...>[, <engine>]" title. A
// title whose first token is not all-digits degrades to
// (0, "Other", <original text>, "") rather than guessing.
func ParseTitle(text string) (year int, make, model, engine string) {
	core := text
	if i := strings.Index(text, ","); i >= 0 {
		core = text[:i]
		engine = strings.TrimSpace(text[i+1:])
	}

	tokens := strings.Fields(core)
	if len(tokens) < 2 || !isDigits(tokens[0]) {
		return 0, "Other", strings.TrimSpace(text), ""
	}

	year, _ = strconv.Atoi(tokens[0])
	return year, tokens[1], strings.Join(tokens[2:], " "), engine
}

// ParseAttributes decomposes the attributes text into the location (text
// before the first comma), a display mileage with thousands separators,
// and the first matching fuel keyword ("Other" when none matches).
func ParseAttributes(text string) (location, mileage, fuel string) {
	location = strings.TrimSpace(strings.SplitN(text, ",", 2)[0])

	fuel = "Other"
	for _, candidate := range fuelVocabulary {
		if strings.Contains(text, candidate) {
			fuel = candidate
			break
		}
	}

	mileage = FormatThousands(Kilometers(text)) + " km"
	return location, mileage, fuel
}

// FormatThousands renders n with comma thousands separators, e.g. 1234567
// becomes "1,234,567".
func FormatThousands(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
