// Package sequence assigns bidder numbers: 10-digit, zero-padded strings that
// step by exactly 2 through the working selection.
package sequence

import (
	"math/big"
	"strings"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/models"
)

// Width is the fixed bidder number width in decimal digits.
const Width = 10

const step = 2

// Format renders n as a fixed-width decimal string: left-padded with zeros,
// and truncated to the last Width digits when n overflows the field.
func Format(n *big.Int) string {
	s := n.Text(10)
	if len(s) > Width {
		return s[len(s)-Width:]
	}
	return strings.Repeat("0", Width-len(s)) + s
}

// Normalize forces an operator-entered bidder number into the fixed width:
// left-padded or truncated to exactly Width characters. Empty input stays
// empty (export derives a value instead).
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if len(raw) > Width {
		return raw[len(raw)-Width:]
	}
	return strings.Repeat("0", Width-len(raw)) + raw
}

// parseBase parses a base number; it must be a non-negative integer.
func parseBase(base string) (*big.Int, bool) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(base), 10)
	if !ok || n.Sign() < 0 {
		return nil, false
	}
	return n, true
}

// ValidBase reports whether base parses as a non-negative integer.
func ValidBase(base string) bool {
	_, ok := parseBase(base)
	return ok
}

// Assign resequences the whole selection against base: company i receives
// base + 2*i, in the selection's current order. An unparseable base is a
// no-op and the input is returned unchanged. The input slice is not mutated.
func Assign(base string, companies []models.EnrichedCompany) []models.EnrichedCompany {
	n, ok := parseBase(base)
	if !ok {
		return companies
	}

	out := make([]models.EnrichedCompany, len(companies))
	copy(out, companies)
	inc := big.NewInt(step)
	cur := new(big.Int).Set(n)
	for i := range out {
		out[i].BidderNumber = Format(cur)
		cur = new(big.Int).Add(cur, inc)
	}
	return out
}

// Next computes the bidder number for a company appended to the selection:
// the last assigned number plus 2, or the base itself when the selection was
// empty. Falls back to base when the last number is unparseable.
func Next(last, base string) string {
	if last == "" {
		if n, ok := parseBase(base); ok {
			return Format(n)
		}
		return Normalize(base)
	}

	n, ok := parseBase(last)
	if !ok {
		return Normalize(base)
	}
	return Format(new(big.Int).Add(n, big.NewInt(step)))
}

// Derive is the export-side fallback: the row's own number when set,
// otherwise base + 2*rowIndex. Correct even on partially-sequenced
// selections.
func Derive(own, base string, rowIndex int) string {
	if strings.TrimSpace(own) != "" {
		return Normalize(own)
	}
	n, ok := parseBase(base)
	if !ok {
		n = big.NewInt(0)
	}
	return Format(new(big.Int).Add(n, big.NewInt(int64(step*rowIndex))))
}
