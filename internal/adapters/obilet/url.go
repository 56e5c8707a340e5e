package obilet

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://www.obilet.com"
	dateLayout     = "20060102"
)

// NextWeekend returns the coming Friday (today when it is Friday) and the Sunday after it.
func NextWeekend(now time.Time) (checkin, checkout string) {
	days := (int(time.Friday) - int(now.Weekday()) + 7) % 7
	friday := now.AddDate(0, 0, days)
	return friday.Format(dateLayout), friday.AddDate(0, 0, 2).Format(dateLayout)
}

// SearchURL builds the hotel search page for a city code such as "istanbul-250-60649-2".
func SearchURL(base, city, checkin, checkout string, adults int) string {
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf("%s/oteller/%s/%s-%s/%dad", strings.TrimRight(base, "/"), city, checkin, checkout, adults)
}
