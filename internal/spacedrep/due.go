package spacedrep

import (
	"sort"
	"strings"
	"time"
)

// DueQuery selects items due for review.
type DueQuery struct {
	Before   time.Time // Service.Due fills a zero value with now
	Contains string    // substring filter on item id
	Limit    int       // 0 = unlimited
}

// DueItems returns the items whose next review is at or before q.Before,
// earliest first. Ties are broken by item id.
func DueItems(items []ItemState, q DueQuery) []ItemState {
	var due []ItemState
	for _, it := range items {
		if !it.IsDue(q.Before) {
			continue
		}
		if q.Contains != "" && !strings.Contains(it.ItemID, q.Contains) {
			continue
		}
		due = append(due, it)
	}

	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].NextReview.Equal(due[j].NextReview) {
			return due[i].NextReview.Before(due[j].NextReview)
		}
		return due[i].ItemID < due[j].ItemID
	})

	if q.Limit > 0 && len(due) > q.Limit {
		due = due[:q.Limit]
	}
	return due
}
