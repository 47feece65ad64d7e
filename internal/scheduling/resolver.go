package scheduling

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/timeutil"
)

// AlternateMode selects how alternate-day policies resolve.
type AlternateMode string

const (
	// AlternateAlways treats alternate-day customers as due every day.
	AlternateAlways AlternateMode = "always"
	// AlternateAnchored makes alternate-day customers due on even day
	// offsets from the policy's anchor date. A policy without an anchor
	// stays due every day.
	AlternateAnchored AlternateMode = "anchored"
)

// ErrInvalidPolicy is returned when a schedule policy fails write-time validation.
var ErrInvalidPolicy = errors.New("invalid schedule policy")

// ParseAlternateMode parses a configured mode. Empty means AlternateAlways.
func ParseAlternateMode(s string) (AlternateMode, error) {
	switch AlternateMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", AlternateAlways:
		return AlternateAlways, nil
	case AlternateAnchored:
		return AlternateAnchored, nil
	}
	return "", fmt.Errorf("unknown alternate mode %q", s)
}

// Resolver decides whether a policy is due on a date.
type Resolver struct {
	AlternateMode AlternateMode
}

// IsDue resolves a policy against the calendar day of target. It never
// fails: a nil policy is daily, an empty custom day set and an unknown
// kind are never due.
func (r Resolver) IsDue(policy *models.SchedulePolicy, target time.Time) bool {
	if policy == nil {
		return true
	}
	switch policy.Kind {
	case models.ScheduleDaily:
		return true
	case models.ScheduleAlternate:
		if r.AlternateMode != AlternateAnchored || policy.AnchorDate == nil {
			return true
		}
		return timeutil.DaysBetween(*policy.AnchorDate, target)%2 == 0
	case models.ScheduleCustom:
		day := timeutil.WeekdayShort(target)
		for _, d := range policy.CustomDays {
			if strings.EqualFold(d, day) {
				return true
			}
		}
		return false
	}
	return false
}

// IsDue resolves with the default (always) alternate mode.
func IsDue(policy *models.SchedulePolicy, target time.Time) bool {
	return Resolver{}.IsDue(policy, target)
}

// NormalizePolicy validates a policy as submitted by an admin and returns
// its canonical form: custom days are deduplicated, title-cased and kept in
// calendar order; non-custom kinds carry no days; the anchor is only kept
// for alternate policies.
func NormalizePolicy(kind string, days []string, anchor string) (*models.SchedulePolicy, error) {
	policy := &models.SchedulePolicy{Kind: models.ScheduleKind(strings.ToLower(strings.TrimSpace(kind)))}

	switch policy.Kind {
	case models.ScheduleDaily:
	case models.ScheduleAlternate:
		if anchor != "" {
			t, err := timeutil.ParseDate(anchor)
			if err != nil {
				return nil, fmt.Errorf("%w: anchor_date: %v", ErrInvalidPolicy, err)
			}
			policy.AnchorDate = &t
		}
	case models.ScheduleCustom:
		seen := make(map[string]bool, len(days))
		for _, d := range days {
			name, ok := weekdayName(d)
			if !ok {
				return nil, fmt.Errorf("%w: unknown day %q", ErrInvalidPolicy, d)
			}
			seen[name] = true
		}
		if len(seen) == 0 {
			return nil, fmt.Errorf("%w: custom schedule needs at least one day", ErrInvalidPolicy)
		}
		for _, name := range models.Weekdays {
			if seen[name] {
				policy.CustomDays = append(policy.CustomDays, name)
			}
		}
	default:
		return nil, fmt.Errorf("%w: type must be daily, alternate or custom", ErrInvalidPolicy)
	}
	return policy, nil
}

// weekdayName accepts "mon", "Mon" or "Monday" and returns "Mon".
func weekdayName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return "", false
	}
	for _, name := range models.Weekdays {
		if strings.EqualFold(s[:3], name) && (len(s) == 3 || strings.HasPrefix(strings.ToLower(fullWeekday(name)), strings.ToLower(s))) {
			return name, true
		}
	}
	return "", false
}

func fullWeekday(short string) string {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String()[:3] == short {
			return d.String()
		}
	}
	return short
}
