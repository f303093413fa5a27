package event

import (
	"strconv"
	"strings"
)

// FormatTimeLocal formats a time of day given as HH:MM[:SS] in event local time such as "8:00 AM".
// It returns "" if t is empty or has no valid hour.
func FormatTimeLocal(t string) string {
	parts := strings.Split(strings.TrimSpace(t), ":")
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return ""
	}

	minute := "00"
	if len(parts) > 1 {
		minute = parts[1]
		if len(minute) > 2 {
			minute = minute[:2]
		}
	}

	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}
	return strconv.Itoa(h12) + ":" + minute + " " + ampm
}

// TimeRange joins the formatted start and end time, "8:00 AM – 5:00 PM". Missing times are left out.
func TimeRange(start, end *string) string {
	var parts []string
	for _, t := range []*string{start, end} {
		if t == nil {
			continue
		}
		if formatted := FormatTimeLocal(*t); formatted != "" {
			parts = append(parts, formatted)
		}
	}
	return strings.Join(parts, " – ")
}
