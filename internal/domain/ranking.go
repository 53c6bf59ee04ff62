package domain

import (
	"sort"
	"time"
)

// RankOptions controls the primary key of the admin listing order
type RankOptions struct {
	// ActiveBoostFirst ranks by derived boost activity instead of the raw flag
	ActiveBoostFirst bool
	Now              time.Time
}

// RankApplications sorts apps for the admin listing: boosted first, then
// newest first within each partition. The sort is stable.
func RankApplications(apps []Application, opts RankOptions) {
	sort.SliceStable(apps, func(i, j int) bool {
		bi, bj := rankBoost(&apps[i], opts), rankBoost(&apps[j], opts)
		if bi != bj {
			return bi
		}
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
}

func rankBoost(app *Application, opts RankOptions) bool {
	if opts.ActiveBoostFirst {
		return app.BoostActive(opts.Now)
	}
	return app.Boosted
}
