// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package detail

import (
	"regexp"
	"strconv"
	"strings"
)

// currencyRe detects a PKR currency marker ("PKR", "PKRs", "Rs", "Rs.").
var currencyRe = regexp.MustCompile(`(?i)\b(pkrs?|rs\.?)\b`)

// amountRe captures a number and an optional magnitude suffix as printed on
// listing pages: "4.8 Crore", "12 Lakh", "1.2M", "4,800,000". The number must
// start with a digit so a stray dot (as in "Rs.") never matches on its own.
var amountRe = regexp.MustCompile(`(?i)(\d[\d,.]*)\s*(crore|lakh|million|thousand|k\b|m\b|b\b)?`)

// plainNumberRe is the fallback when the suffixed form does not parse.
var plainNumberRe = regexp.MustCompile(`\d[\d,]*`)

// multipliers maps magnitude suffixes to their PKR factor. Crore and lakh
// are the South Asian counting units (1 crore = 10^7, 1 lakh = 10^5).
var multipliers = map[string]float64{
	"crore":    1e7,
	"lakh":     1e5,
	"million":  1e6,
	"thousand": 1e3,
	"k":        1e3,
	"m":        1e6,
	"b":        1e9,
}

// ParsePrice converts a human price string ("PKR 4.8 Crore", "Rs. 12 Lakh",
// "PKR 4,800,000", "1.2M") into a plain PKR amount. It returns the amount,
// the detected currency ("PKR" or ""), and whether a number was found.
// Suffixless numbers are taken as already-PKR amounts.
func ParsePrice(text string) (float64, string, bool) {
	if text == "" {
		return 0, "", false
	}

	txt := strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))

	currency := ""
	if currencyRe.MatchString(txt) {
		currency = "PKR"
	}

	m := amountRe.FindStringSubmatch(txt)
	if m == nil {
		p := plainNumberRe.FindString(txt)
		if p == "" {
			return 0, currency, false
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(p, ",", ""), 64)
		if err != nil {
			return 0, currency, false
		}
		return v, currency, true
	}

	base, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		// Numbers like "4.8.5" fail; fall back to the first plain integer.
		p := plainNumberRe.FindString(txt)
		if p == "" {
			return 0, currency, false
		}
		v, perr := strconv.ParseFloat(strings.ReplaceAll(p, ",", ""), 64)
		if perr != nil {
			return 0, currency, false
		}
		return v, currency, true
	}

	if mult, ok := multipliers[strings.ToLower(m[2])]; ok {
		return base * mult, currency, true
	}
	return base, currency, true
}
