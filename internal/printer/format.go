package printer

import (
	"fmt"
	"time"
)

// FormatBytes returns a compact ls-style size string that fits a listing
// column. Examples: "0B", "512B", "1.5K", "700M", "10G".
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}

	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%dB", bytes)
	}

	value := float64(bytes)
	for _, suffix := range []string{"K", "M", "G", "T", "P"} {
		value /= unit
		if value < unit {
			if value >= 100 {
				return fmt.Sprintf("%.0f%s", value, suffix)
			}
			return fmt.Sprintf("%.1f%s", value, suffix)
		}
	}

	return fmt.Sprintf("%.1fE", value/unit)
}

// TimeAgo returns a short relative time string. Examples: "now", "5s ago",
// "2m ago", "3h ago", "2d ago".
func TimeAgo(t time.Time) string {
	diff := time.Since(t)
	if diff < 0 {
		diff = 0
	}

	switch {
	case diff < time.Second:
		return "now"
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
