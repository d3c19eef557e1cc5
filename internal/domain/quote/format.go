// Package quote reshapes upstream market data into the public response models.
package quote

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Magnitude thresholds for market capitalization labels.
const (
	trillion = 1e12
	billion  = 1e9
	million  = 1e6
)

// PublishedLayout renders publish times older than a week.
const PublishedLayout = "Jan 02, 2006"

// FormatMarketCap renders a market capitalization with a magnitude suffix,
// e.g. 1.5e12 -> "$1.50T", and "$X,XXX.XX" below one million.
func FormatMarketCap(v float64) string {
	switch {
	case v >= trillion:
		return fmt.Sprintf("$%.2fT", v/trillion)
	case v >= billion:
		return fmt.Sprintf("$%.2fB", v/billion)
	case v >= million:
		return fmt.Sprintf("$%.2fM", v/million)
	default:
		return "$" + groupThousands(strconv.FormatFloat(v, 'f', 2, 64))
	}
}

// groupThousands inserts commas into the integer part of a decimal string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return sign + s
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

// FormatPublished renders a unix timestamp relative to now: "N mins ago"
// under an hour, "N hours ago" under a day, "N days ago" under a week and
// an absolute "Mon DD, YYYY" date otherwise. A zero timestamp yields "".
// Timestamps in the future count as zero minutes ago.
func FormatPublished(ts int64, now time.Time) string {
	if ts == 0 {
		return ""
	}
	published := time.Unix(ts, 0).In(now.Location())
	diff := now.Sub(published)
	if diff < 0 {
		diff = 0
	}

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%d mins ago", int64(math.Floor(diff.Minutes())))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int64(math.Floor(diff.Hours())))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int64(diff/(24*time.Hour)))
	default:
		return published.Format(PublishedLayout)
	}
}
