package analytics

import (
	"fmt"
	"net/url"
	"sort"
	"time"

	"linkpulse/internal/entities"
)

const (
	// UnknownLabel groups clicks that have no resolved location yet
	UnknownLabel = "Unknown"
	// DirectLabel groups clicks that arrived without a referer
	DirectLabel = "Direct"

	dateLayout  = "2006-01-02"
	windowDays  = 30
	referersCap = 10
)

// LabelCount is one row of a grouped aggregation
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DateCount is one day of the clicks-by-date timeline
type DateCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// GroupByCountry groups clicks by resolved country, sorted by count
// descending. Clicks without a location land under "Unknown". Equal
// counts keep the order in which the countries were first seen.
func GroupByCountry(clicks []entities.Click) []LabelCount {
	return groupBy(clicks, func(c *entities.Click) string {
		if c.Geo == nil || c.Geo.Country == "" {
			return UnknownLabel
		}
		return c.Geo.Country
	})
}

// GroupByCity groups clicks by "<city>, <country>" with the same sort
// rule as GroupByCountry
func GroupByCity(clicks []entities.Click) []LabelCount {
	return groupBy(clicks, func(c *entities.Click) string {
		if c.Geo == nil || c.Geo.City == "" {
			return UnknownLabel
		}
		return fmt.Sprintf("%s, %s", c.Geo.City, c.Geo.Country)
	})
}

// TopReferers groups clicks by referer host and returns at most the
// ten busiest. No referer counts as "Direct"; a referer that does not
// parse as a URL with a host is kept verbatim as its own label.
func TopReferers(clicks []entities.Click) []LabelCount {
	grouped := groupBy(clicks, func(c *entities.Click) string {
		return refererLabel(c.Referer)
	})
	if len(grouped) > referersCap {
		grouped = grouped[:referersCap]
	}
	return grouped
}

// ClicksByDate builds a fixed trailing 30-day timeline ending on
// now's calendar day, oldest first, one zero-seeded entry per day.
// Clicks outside the window are left out of this view only.
func ClicksByDate(clicks []entities.Click, now time.Time) []DateCount {
	out := make([]DateCount, windowDays)
	index := make(map[string]int, windowDays)
	start := now.AddDate(0, 0, -(windowDays - 1))
	for i := range out {
		day := start.AddDate(0, 0, i).Format(dateLayout)
		out[i] = DateCount{Date: day}
		index[day] = i
	}

	for _, click := range clicks {
		day := click.Timestamp.In(now.Location()).Format(dateLayout)
		if i, ok := index[day]; ok {
			out[i].Count++
		}
	}
	return out
}

// groupBy counts clicks per key and sorts by count descending. The
// sort is stable over first-seen key order, which is the documented
// tie-break.
func groupBy(clicks []entities.Click, key func(*entities.Click) string) []LabelCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for i := range clicks {
		k := key(&clicks[i])
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	out := make([]LabelCount, 0, len(order))
	for _, k := range order {
		out = append(out, LabelCount{Label: k, Count: counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func refererLabel(referer string) string {
	if referer == "" {
		return DirectLabel
	}
	u, err := url.Parse(referer)
	if err != nil || u.Host == "" {
		return referer
	}
	return u.Host
}
