package format

import (
	"fmt"
	"strconv"
	"time"
)

type unit struct {
	size   float64
	suffix string
}

var (
	counts = []unit{{1e12, "T"}, {1e9, "B"}, {1e6, "M"}, {1e3, "K"}}
	sizes  = []unit{{1e12, " TB"}, {1e9, " GB"}, {1e6, " MB"}, {1e3, " KB"}}
)

// HumanNumber renders counts such as corpus words or token totals.
func HumanNumber(n uint64) string {
	for _, u := range counts {
		if f := float64(n); f >= u.size {
			return decimalPlace(f/u.size) + u.suffix
		}
	}

	return strconv.FormatUint(n, 10)
}

// HumanBytes renders snapshot file sizes in decimal units.
func HumanBytes(b int64) string {
	for _, u := range sizes {
		if f := float64(b); f >= u.size {
			return fmt.Sprintf("%.1f%s", f/u.size, u.suffix)
		}
	}

	return fmt.Sprintf("%d B", b)
}

func decimalPlace(number float64) string {
	switch {
	case number >= 100:
		return fmt.Sprintf("%.0f", number)
	case number >= 10:
		return fmt.Sprintf("%.1f", number)
	default:
		return fmt.Sprintf("%.2f", number)
	}
}

// Percent renders a fraction in [0, 1] as a percentage.
func Percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// Ratio renders a compression ratio such as 3.42x.
func Ratio(f float64) string {
	return fmt.Sprintf("%.2fx", f)
}

// Duration limits the rendering of a time.Duration to 2 units.
func Duration(d time.Duration) string {
	switch {
	case d >= 100*time.Hour:
		return "99h+"
	case d >= time.Hour:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Second:
		return d.Round(time.Second).String()
	default:
		return d.Round(time.Microsecond).String()
	}
}
