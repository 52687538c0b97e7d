// internal/scraper/price.go
package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/vitrinio/shelfscraper/internal/config"
)

// Currencies recognized by the normalizer. TRY is the default when no
// symbol is present.
const (
	CurrencyTRY = "TRY"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

// noiseWordPattern strips promotional phrases and tax labels that sites
// mix into price text. Matched case-insensitively on word boundaries after
// NFKC normalization.
var noiseWordPattern = regexp.MustCompile(`(?i)\b(sepette özel|sepette|indirimli fiyat|indirimli|indirim|kampanyalı|kampanya|kdv dahil|kdv hariç|kdv|peşin fiyatına|fiyatı|fiyat|satış|yerine|tl)\b`)

// whitespacePattern collapses runs of whitespace, including the
// non-breaking and narrow non-breaking spaces NFKC leaves behind.
var whitespacePattern = regexp.MustCompile(`[\s\x{00A0}\x{202F}]+`)

// numericTokenPattern picks the first digit-bearing token out of the
// stripped text.
var numericTokenPattern = regexp.MustCompile(`\d[\d.,]*`)

// priceShape pairs a recognizer with the rewrite turning its text into a
// strconv-parsable number. The list is ordered: the first matching shape
// decides whether "." or "," is the decimal separator.
type priceShape struct {
	pattern *regexp.Regexp
	rewrite func(string) string
}

var priceShapes = []priceShape{
	// Space-grouped thousands+decimal: 1 449,90 (NFKC turns the
	// non-breaking spaces Turkish sites group with into plain spaces)
	{regexp.MustCompile(`^\d{1,3}(?: \d{3})+,\d{1,2}$`), func(s string) string {
		return strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ",", ".")
	}},
	// Space-grouped thousands, no decimal: 1 950
	{regexp.MustCompile(`^\d{1,3}(?: \d{3})+$`), func(s string) string {
		return strings.ReplaceAll(s, " ", "")
	}},
	// EU style thousands+decimal: 1.449,90
	{regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+,\d{1,2}$`), func(s string) string {
		return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	}},
	// US style thousands+decimal: 3,950.00
	{regexp.MustCompile(`^\d{1,3}(?:,\d{3})+\.\d{1,2}$`), func(s string) string {
		return strings.ReplaceAll(s, ",", "")
	}},
	// Decimal comma: 299,99
	{regexp.MustCompile(`^\d+,\d{1,2}$`), func(s string) string {
		return strings.ReplaceAll(s, ",", ".")
	}},
	// Decimal dot: 299.99
	{regexp.MustCompile(`^\d+\.\d{1,2}$`), func(s string) string {
		return s
	}},
	// Thousands dot, no decimal: 1.950
	{regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`), func(s string) string {
		return strings.ReplaceAll(s, ".", "")
	}},
	// Thousands comma, no decimal: 3,950
	{regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`), func(s string) string {
		return strings.ReplaceAll(s, ",", "")
	}},
	// Plain integer: 4500
	{regexp.MustCompile(`^\d+$`), func(s string) string {
		return s
	}},
}

// NormalizedPrice is the outcome of parsing one raw price string.
type NormalizedPrice struct {
	NumericValue float64
	Currency     string
	UnsetPrice   bool
}

// NormalizePrice parses a locale-ambiguous price string into a numeric
// value and currency. Unparsable text yields value 0 with UnsetPrice set;
// zero is deliberately overloaded (see the normalizer's doc) and callers
// must check the flag rather than compare against 0.
func NormalizePrice(raw string) NormalizedPrice {
	text := norm.NFKC.String(raw)
	text = whitespacePattern.ReplaceAllString(text, " ")

	currency := CurrencyTRY
	switch {
	case strings.Contains(text, "$"):
		currency = CurrencyUSD
	case strings.Contains(text, "€"):
		currency = CurrencyEUR
	}
	text = strings.NewReplacer("$", "", "€", "", "₺", "").Replace(text)

	text = noiseWordPattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))

	// Shapes are tried against the whole stripped text first so grouped
	// digits ("1 449,90") parse as one number instead of their leading
	// group. Only when the whole text has no shape does the first
	// digit-bearing token get a try (discount pairs, leftover labels).
	if value, ok := matchPriceShape(text); ok {
		return NormalizedPrice{
			NumericValue: value,
			Currency:     currency,
			UnsetPrice:   value == 0,
		}
	}

	token := numericTokenPattern.FindString(text)
	if token == "" {
		return NormalizedPrice{Currency: currency, UnsetPrice: true}
	}
	token = strings.Trim(token, ".,")

	if value, ok := matchPriceShape(token); ok {
		return NormalizedPrice{
			NumericValue: value,
			Currency:     currency,
			UnsetPrice:   value == 0,
		}
	}

	// No shape matched: unparsable, indistinguishable from a genuinely
	// free price by value alone.
	return NormalizedPrice{Currency: currency, UnsetPrice: true}
}

// matchPriceShape runs the ordered shape table over one candidate string.
func matchPriceShape(s string) (float64, bool) {
	for _, shape := range priceShapes {
		if !shape.pattern.MatchString(s) {
			continue
		}
		value, err := strconv.ParseFloat(shape.rewrite(s), 64)
		if err != nil {
			return 0, false
		}
		return value, true
	}
	return 0, false
}

// PriceNormalizer applies NormalizePrice across a record's price entries,
// optionally converting USD/EUR face values to TRY with configured rates.
type PriceNormalizer struct {
	rates   config.ExchangeRates
	convert bool
}

// NewPriceNormalizer creates a normalizer. With convert false the numeric
// value stays the face value in its original currency.
func NewPriceNormalizer(rates config.ExchangeRates, convert bool) *PriceNormalizer {
	return &PriceNormalizer{rates: rates, convert: convert}
}

// NormalizeEntry fills the normalized fields of one entry in place.
// Normalization never aborts the record: a panic inside parsing is
// captured as PriceScrapeError with value 0.
func (n *PriceNormalizer) NormalizeEntry(entry *PriceEntry) {
	defer func() {
		if r := recover(); r != nil {
			entry.NumericValue = 0
			entry.PriceScrapeError = true
			entry.ParseError = fmt.Sprintf("price parse panic: %v", r)
		}
	}()

	parsed := NormalizePrice(entry.Value)
	entry.NumericValue = parsed.NumericValue
	entry.Currency = parsed.Currency
	entry.UnsetPrice = parsed.UnsetPrice

	if n.convert && parsed.NumericValue > 0 {
		switch parsed.Currency {
		case CurrencyUSD:
			if n.rates.USD > 0 {
				entry.NumericValue = parsed.NumericValue * n.rates.USD
				entry.Currency = CurrencyTRY
			}
		case CurrencyEUR:
			if n.rates.EUR > 0 {
				entry.NumericValue = parsed.NumericValue * n.rates.EUR
				entry.Currency = CurrencyTRY
			}
		}
	}
}

// NormalizeAll normalizes every entry of a record's price slice in place.
func (n *PriceNormalizer) NormalizeAll(entries []PriceEntry) {
	for i := range entries {
		n.NormalizeEntry(&entries[i])
	}
}
