// Package core holds the typed ledger model and the normalizers that turn
// raw tabular rows into it.
//
// This file contains money parsing and formatting. Amounts are integer
// cents everywhere inside the engine; they only become decimal strings at
// the transport and storage boundaries.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// String renders the amount as a plain 2-decimal string ("1234.56").
// This is the only representation that crosses the API boundary.
func (m Money) String() string {
	return FormatCents(m.Cents)
}

// FormatCents renders cents as a decimal string with exactly two places.
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// ParseAmount converts a locale-formatted amount string to Money.
//
// If the string contains a comma it is treated as the decimal separator
// and dots are stripped as thousands separators ("1.234,56" -> 1234.56);
// otherwise the dot is the decimal separator. A leading currency symbol
// and surrounding whitespace are ignored. The third decimal digit rounds
// half-up. Unparseable input yields zero cents, never an error: one dirty
// cell must not abort a whole aggregation pass.
func ParseAmount(s string) Money {
	cents, ok := parseCents(s)
	if !ok {
		return Money{}
	}
	return Money{Cents: cents}
}

func parseCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	// Strip a leading currency marker such as "R$", "$" or "€".
	for len(s) > 0 {
		r := []rune(s)[0]
		if unicode.IsDigit(r) || r == '-' || r == '+' || r == '.' || r == ',' {
			break
		}
		s = strings.TrimSpace(s[len(string(r)):])
	}
	if s == "" {
		return 0, false
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, false
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, false
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, false
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, false
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, false
	}

	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}

	cents := iv*100 + frac
	if neg {
		cents = -cents
	}
	return cents, true
}
