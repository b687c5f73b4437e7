package usecase

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTarget reports a time target that is neither YYYY.MM nor YYYY.MM.DD.
var ErrInvalidTarget = errors.New("invalid time target")

// CurrentMonthAliases select the month containing "now".
var CurrentMonthAliases = []string{"default", "1949.10"}

// Target is either a whole month or a single day.
type Target struct {
	Year  int
	Month time.Month
	// Day is zero for a month sweep.
	Day int
}

// Single reports whether the target names one day.
func (t Target) Single() bool { return t.Day != 0 }

func (t Target) String() string {
	if t.Single() {
		return fmt.Sprintf("%04d.%02d.%02d", t.Year, int(t.Month), t.Day)
	}
	return fmt.Sprintf("%04d.%02d", t.Year, int(t.Month))
}

// Days lists the calendar dates the target covers in loc. A month sweep stops at today.
func (t Target) Days(now time.Time, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if t.Single() {
		return []time.Time{time.Date(t.Year, t.Month, t.Day, 0, 0, 0, 0, loc)}
	}

	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var days []time.Time
	for d := time.Date(t.Year, t.Month, 1, 0, 0, 0, 0, loc); d.Month() == t.Month; d = d.AddDate(0, 0, 1) {
		if d.After(today) {
			break
		}
		days = append(days, d)
	}
	return days
}

// ParseTargets parses a comma-separated list of YYYY.MM and YYYY.MM.DD entries.
// An empty spec or a current-month alias selects the month containing now.
func ParseTargets(spec string, now time.Time) ([]Target, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = CurrentMonthAliases[0]
	}

	var targets []Target
	seen := make(map[Target]struct{})
	for _, raw := range strings.Split(spec, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t, err := parseTarget(raw, now)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		targets = append(targets, t)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, spec)
	}
	return targets, nil
}

func parseTarget(raw string, now time.Time) (Target, error) {
	for _, alias := range CurrentMonthAliases {
		if strings.EqualFold(raw, alias) {
			return Target{Year: now.Year(), Month: now.Month()}, nil
		}
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 2 && len(parts) != 3 {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
	}

	nums := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Target{}, fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
		}
		nums[i] = n
	}

	t := Target{Year: nums[0], Month: time.Month(nums[1])}
	if len(parts[0]) != 4 || t.Month < time.January || t.Month > time.December {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
	}
	if len(nums) == 3 {
		t.Day = nums[2]
		d := time.Date(t.Year, t.Month, t.Day, 0, 0, 0, 0, time.UTC)
		if t.Day < 1 || d.Month() != t.Month {
			return Target{}, fmt.Errorf("%w: %q is not a calendar day", ErrInvalidTarget, raw)
		}
	}
	return t, nil
}
