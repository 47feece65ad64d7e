package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/timeutil"
)

func TestIsDue_Daily(t *testing.T) {
	for i := 0; i < 7; i++ {
		assert.True(t, IsDue(daily(), tuesday.AddDate(0, 0, i)))
	}
}

func TestIsDue_NilPolicyIsDaily(t *testing.T) {
	assert.True(t, IsDue(nil, tuesday))
}

func TestIsDue_CustomDays(t *testing.T) {
	policy := custom("Mon", "Wed", "Fri")

	assert.False(t, IsDue(policy, tuesday))
	assert.True(t, IsDue(policy, wednesday))
}

func TestIsDue_CustomDaysCaseInsensitive(t *testing.T) {
	assert.True(t, IsDue(custom("wed"), wednesday))
}

func TestIsDue_EmptyCustomDaysNeverDue(t *testing.T) {
	for i := 0; i < 7; i++ {
		assert.False(t, IsDue(custom(), tuesday.AddDate(0, 0, i)))
	}
}

func TestIsDue_UnknownKindNotDue(t *testing.T) {
	assert.False(t, IsDue(&models.SchedulePolicy{Kind: "weekly"}, tuesday))
}

func TestIsDue_AlternateAlwaysDue(t *testing.T) {
	anchor := tuesday
	policy := &models.SchedulePolicy{Kind: models.ScheduleAlternate, AnchorDate: &anchor}
	for i := 0; i < 7; i++ {
		assert.True(t, IsDue(policy, tuesday.AddDate(0, 0, i)))
	}
}

func TestResolver_AlternateAnchored(t *testing.T) {
	r := Resolver{AlternateMode: AlternateAnchored}
	anchor := tuesday
	policy := &models.SchedulePolicy{Kind: models.ScheduleAlternate, AnchorDate: &anchor}

	assert.True(t, r.IsDue(policy, tuesday))
	assert.False(t, r.IsDue(policy, wednesday))
	assert.True(t, r.IsDue(policy, tuesday.AddDate(0, 0, 2)))
	assert.False(t, r.IsDue(policy, tuesday.AddDate(0, 0, -1)))
	assert.True(t, r.IsDue(policy, tuesday.AddDate(0, 0, -2)))
	// time of day is irrelevant
	assert.True(t, r.IsDue(policy, tuesday.Add(23*time.Hour)))
}

func TestResolver_AlternateAnchoredWithoutAnchor(t *testing.T) {
	r := Resolver{AlternateMode: AlternateAnchored}
	policy := &models.SchedulePolicy{Kind: models.ScheduleAlternate}

	assert.True(t, r.IsDue(policy, tuesday))
	assert.True(t, r.IsDue(policy, wednesday))
}

func TestParseAlternateMode(t *testing.T) {
	mode, err := ParseAlternateMode("")
	require.NoError(t, err)
	assert.Equal(t, AlternateAlways, mode)

	mode, err = ParseAlternateMode(" Anchored ")
	require.NoError(t, err)
	assert.Equal(t, AlternateAnchored, mode)

	_, err = ParseAlternateMode("sometimes")
	assert.Error(t, err)
}

func TestNormalizePolicy(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		days    []string
		anchor  string
		want    []string
		wantErr bool
	}{
		{name: "daily clears days", kind: "daily", days: []string{"Mon"}},
		{name: "alternate", kind: "Alternate"},
		{name: "custom sorted and deduplicated", kind: "custom", days: []string{"fri", "Mon", "monday", "Wed"}, want: []string{"Mon", "Wed", "Fri"}},
		{name: "custom needs a day", kind: "custom", wantErr: true},
		{name: "unknown day", kind: "custom", days: []string{"Funday"}, wantErr: true},
		{name: "unknown kind", kind: "weekly", wantErr: true},
		{name: "bad anchor", kind: "alternate", anchor: "07-01-2026", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := NormalizePolicy(tt.kind, tt.days, tt.anchor)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPolicy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, policy.CustomDays)
		})
	}
}

func TestNormalizePolicy_AnchorOnlyForAlternate(t *testing.T) {
	policy, err := NormalizePolicy("alternate", nil, "2026-01-06")
	require.NoError(t, err)
	require.NotNil(t, policy.AnchorDate)
	assert.True(t, timeutil.SameDay(*policy.AnchorDate, tuesday))

	policy, err = NormalizePolicy("daily", nil, "2026-01-06")
	require.NoError(t, err)
	assert.Nil(t, policy.AnchorDate)
}
