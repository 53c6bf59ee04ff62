package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/cuongbtq/recruitment-be/shared/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBoostActive(t *testing.T) {
	expiry := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		boosted  bool
		expiry   *time.Time
		now      time.Time
		expected bool
	}{
		{
			name:     "boosted and expiry in the future",
			boosted:  true,
			expiry:   &expiry,
			now:      expiry.Add(-time.Hour),
			expected: true,
		},
		{
			name:     "boosted and expiry equal to now",
			boosted:  true,
			expiry:   &expiry,
			now:      expiry,
			expected: false,
		},
		{
			name:     "boosted and expiry in the past",
			boosted:  true,
			expiry:   &expiry,
			now:      expiry.Add(time.Nanosecond),
			expected: false,
		},
		{
			name:     "boosted without expiry",
			boosted:  true,
			expiry:   nil,
			now:      expiry.Add(-time.Hour),
			expected: false,
		},
		{
			name:     "not boosted with stale future expiry",
			boosted:  false,
			expiry:   &expiry,
			now:      expiry.Add(-time.Hour),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsBoostActive(tt.boosted, tt.expiry, tt.now))
		})
	}
}

func TestIsBoostActive_AcrossNowValues(t *testing.T) {
	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for offset := -48; offset <= 48; offset++ {
		now := expiry.Add(time.Duration(offset) * time.Hour)
		assert.Equal(t, offset < 0, IsBoostActive(true, &expiry, now), "offset %dh", offset)
		assert.False(t, IsBoostActive(false, &expiry, now), "offset %dh", offset)
	}
}

func TestBoostExpiryFrom(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, now.Add(14*24*time.Hour), BoostExpiryFrom(now, 14))
	assert.True(t, BoostExpiryFrom(now, MaxBoostDays).After(now))
}

func TestValidBoostDays(t *testing.T) {
	tests := []struct {
		days     int
		expected bool
	}{
		{days: -1, expected: false},
		{days: 0, expected: false},
		{days: 1, expected: true},
		{days: 14, expected: true},
		{days: MaxBoostDays, expected: true},
		{days: MaxBoostDays + 1, expected: false},
		{days: 200000, expected: false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.days), func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidBoostDays(tt.days))
		})
	}
}

func TestRankApplications(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t1.Add(2 * time.Hour)
	expired := t1.Add(-24 * time.Hour)
	future := t1.Add(30 * 24 * time.Hour)

	t.Run("boosted first then newest first", func(t *testing.T) {
		apps := []Application{
			{ID: "A", Boosted: true, BoostExpiry: &future, CreatedAt: t1},
			{ID: "B", Boosted: false, CreatedAt: t2},
			{ID: "C", Boosted: true, BoostExpiry: &future, CreatedAt: t3},
		}

		RankApplications(apps, RankOptions{Now: t3})

		assert.Equal(t, []string{"C", "A", "B"}, ids(apps))
	})

	t.Run("raw flag ranks expired boosts first", func(t *testing.T) {
		apps := []Application{
			{ID: "A", Boosted: false, CreatedAt: t3},
			{ID: "B", Boosted: true, BoostExpiry: &expired, CreatedAt: t1},
		}

		RankApplications(apps, RankOptions{Now: t3})

		assert.Equal(t, []string{"B", "A"}, ids(apps))
	})

	t.Run("active boost ranking ignores expired boosts", func(t *testing.T) {
		apps := []Application{
			{ID: "A", Boosted: false, CreatedAt: t3},
			{ID: "B", Boosted: true, BoostExpiry: &expired, CreatedAt: t1},
			{ID: "C", Boosted: true, BoostExpiry: &future, CreatedAt: t2},
		}

		RankApplications(apps, RankOptions{Now: t3, ActiveBoostFirst: true})

		assert.Equal(t, []string{"C", "A", "B"}, ids(apps))
	})
}

func TestResolveTier(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantTier  BoostTier
		wantDays  int
		wantPrice int64
		wantKnown bool
	}{
		{name: "basic", value: "basic", wantTier: TierBasic, wantDays: 3, wantPrice: 150000, wantKnown: true},
		{name: "standard", value: "standard", wantTier: TierStandard, wantDays: 7, wantPrice: 300000, wantKnown: true},
		{name: "premium", value: "premium", wantTier: TierPremium, wantDays: 14, wantPrice: 450000, wantKnown: true},
		{name: "unknown falls back to standard", value: "platinum", wantTier: TierStandard, wantDays: 7, wantPrice: 300000},
		{name: "empty falls back to standard", value: "", wantTier: TierStandard, wantDays: 7, wantPrice: 300000},
		{name: "case sensitive", value: "Basic", wantTier: TierStandard, wantDays: 7, wantPrice: 300000},
		{name: "surrounding spaces", value: " premium ", wantTier: TierPremium, wantDays: 14, wantPrice: 450000, wantKnown: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := ResolveTier(tt.value)
			assert.Equal(t, tt.wantTier, plan.Tier)
			assert.Equal(t, tt.wantDays, plan.Days)
			assert.Equal(t, tt.wantPrice, plan.PriceMinorUnits)

			_, known := LookupTier(tt.value)
			assert.Equal(t, tt.wantKnown, known)
		})
	}
}

func TestBoostTier_Valid(t *testing.T) {
	assert.True(t, TierBasic.Valid())
	assert.True(t, TierPremium.Valid())
	assert.False(t, BoostTier("platinum").Valid())
	assert.False(t, BoostTier("").Valid())
}

func TestParseStatus(t *testing.T) {
	for _, status := range AllStatuses {
		parsed, err := ParseStatus(string(status))
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	_, err := ParseStatus("ARCHIVED")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Invalid status value", apperr.MessageOf(err))

	_, err = ParseStatus("pending")
	assert.Error(t, err)
}

func TestCVTypes(t *testing.T) {
	assert.True(t, AllowedCVType(MimePDF))
	assert.True(t, AllowedCVType(MimeDoc))
	assert.True(t, AllowedCVType(MimeDocx))
	assert.False(t, AllowedCVType("image/png"))

	cv := &CV{FirstName: "Ada", LastName: "Lovelace", MimeType: MimeDocx}
	assert.Equal(t, "Ada_Lovelace_CV.docx", cv.Filename())
}

func TestTask_NextAttempt(t *testing.T) {
	task := Task{Type: TaskBoostGrant, ApplicationID: "app-1", BoostDays: 7, Attempt: 1}
	next := task.NextAttempt()

	assert.Equal(t, 2, next.Attempt)
	assert.Equal(t, 1, task.Attempt)

	body, err := next.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"boost_grant","application_id":"app-1","boost_days":7,"attempt":2}`, string(body))
}

func ids(apps []Application) []string {
	out := make([]string, len(apps))
	for i, app := range apps {
		out[i] = app.ID
	}
	return out
}
