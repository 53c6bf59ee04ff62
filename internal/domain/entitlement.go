package domain

import "time"

// IsBoostActive reports whether a stored boost is in effect at now.
// The boosted flag is never cleared on expiry, so activity is always
// derived from both fields.
func IsBoostActive(boosted bool, expiry *time.Time, now time.Time) bool {
	return boosted && expiry != nil && expiry.After(now)
}

// BoostActive evaluates IsBoostActive for the application
func (a *Application) BoostActive(now time.Time) bool {
	return IsBoostActive(a.Boosted, a.BoostExpiry, now)
}

// MaxBoostDays is the longest boost a single grant may carry
const MaxBoostDays = 365

// ValidBoostDays reports whether days is a grantable boost length
func ValidBoostDays(days int) bool {
	return days >= 1 && days <= MaxBoostDays
}

// BoostExpiryFrom returns the expiry of a boost of days granted at now.
// days must satisfy ValidBoostDays.
func BoostExpiryFrom(now time.Time, days int) time.Time {
	return now.Add(time.Duration(days) * 24 * time.Hour)
}
