// Package gtin implements EAN-13 / GTIN-13 check digit validation and
// candidate extraction from free text.
package gtin

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// CleanDigits strips every non-digit character from s.
func CleanDigits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// CheckDigit computes the EAN-13 check digit for a 12-digit prefix.
// Digits at even 0-indexed positions weigh 1, odd positions weigh 3.
func CheckDigit(d12 string) (int, error) {
	if len(d12) != 12 {
		return 0, eris.Errorf("gtin: check digit needs 12 digits, got %d", len(d12))
	}
	sum := 0
	for i, ch := range d12 {
		if ch < '0' || ch > '9' {
			return 0, eris.Errorf("gtin: non-digit character %q at position %d", ch, i)
		}
		n := int(ch - '0')
		if i%2 == 1 {
			n *= 3
		}
		sum += n
	}
	return (10 - sum%10) % 10, nil
}

// Valid reports whether code is a syntactically valid EAN-13: exactly 13
// decimal digits with a correct trailing check digit.
func Valid(code string) bool {
	if len(code) != 13 {
		return false
	}
	cd, err := CheckDigit(code[:12])
	if err != nil {
		return false
	}
	last := code[12]
	if last < '0' || last > '9' {
		return false
	}
	return cd == int(last-'0')
}

// FromUPC promotes a 12-digit UPC-A to GTIN-13 by prefixing a zero.
// The second return is false when upc is not 12 digits or the promoted
// code fails validation.
func FromUPC(upc string) (string, bool) {
	d := CleanDigits(upc)
	if len(d) != 12 {
		return "", false
	}
	candidate := "0" + d
	if !Valid(candidate) {
		return "", false
	}
	return candidate, true
}

// codePattern tolerates single spaces, tabs, or hyphens between digits, as
// barcodes are often typeset on retailer pages.
var codePattern = regexp.MustCompile(`\b(?:\d[ \t\-]?){12,14}\b`)

// FindCodes scans text for EAN-13 candidates. Valid 13-digit codes are kept
// as-is; 12-digit runs are promoted via FromUPC. Duplicates are dropped,
// preserving first-seen order.
func FindCodes(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range codePattern.FindAllString(text, -1) {
		digits := CleanDigits(m)
		var code string
		switch len(digits) {
		case 13:
			if Valid(digits) {
				code = digits
			}
		case 12:
			if promoted, ok := FromUPC(digits); ok {
				code = promoted
			}
		}
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

// WeightedText pairs a text blob with its relevance weight for scoring.
type WeightedText struct {
	Text   string
	Weight float64
}

var barcodeContext = regexp.MustCompile(`(ean|gtin|barcode|cod\s*ean|ean-13)`)

// ChooseBest scores every candidate code found across the given texts and
// returns the highest-scoring one, or "" when no candidate exists. A text
// that mentions barcode terminology doubles its contribution. Ties resolve
// to the earliest-seen candidate.
func ChooseBest(texts []WeightedText) string {
	scores := make(map[string]float64)
	var order []string

	for _, wt := range texts {
		base := 1.0
		if barcodeContext.MatchString(strings.ToLower(wt.Text)) {
			base += 1.0
		}
		for _, code := range FindCodes(wt.Text) {
			if _, ok := scores[code]; !ok {
				order = append(order, code)
			}
			scores[code] += base * wt.Weight
		}
	}

	best := ""
	bestScore := 0.0
	for _, code := range order {
		if scores[code] > bestScore {
			best = code
			bestScore = scores[code]
		}
	}
	return best
}
