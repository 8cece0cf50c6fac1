// Package studyperiod computes funded and unfunded days of an offering's study period.
//
// All functions are pure. Day quantities are fixed-point (hundredths of a day) so that
// FundedDays+UnfundedDays always equals TotalDays exactly.
package studyperiod

import (
	"fmt"
	"time"

	"github.com/yungbote/studentaid-backend/internal/aid/rules"
)

// Days is a day count in hundredths of a day.
type Days int64

const dayScale = 100

func WholeDays(n int) Days { return Days(int64(n) * dayScale) }

func (d Days) Float() float64 { return float64(d) / dayScale }

func (d Days) String() string {
	if d%dayScale == 0 {
		return fmt.Sprintf("%d", int64(d)/dayScale)
	}
	return fmt.Sprintf("%.2f", d.Float())
}

// Break is one study break, both ends inclusive.
type Break struct {
	Start time.Time
	End   time.Time
}

type BreakResult struct {
	Start      time.Time
	End        time.Time
	Days       Days
	Eligible   Days
	Ineligible Days
}

type Result struct {
	Breaks []BreakResult

	TotalDays              Days
	SumEligibleBreakDays   Days
	SumIneligibleBreakDays Days
	AllowableBreakDays     Days
	ExceedingAllowedDays   Days

	FundedDays   Days
	UnfundedDays Days
	FundedWeeks  int
}

// Calculate derives per-break eligibility and the funded/unfunded split of a study period.
func Calculate(start, end time.Time, breaks []Break, r rules.StudyPeriod) Result {
	out := make([]BreakResult, 0, len(breaks))
	for _, b := range breaks {
		out = append(out, breakResult(b.Start, b.End, WholeDays(inclusiveDays(b.Start, b.End)), r))
	}
	return summarize(WholeDays(inclusiveDays(start, end)), out, r)
}

// Adjust recomputes the study period for a new, earlier end date. Breaks starting on or
// after newEnd are dropped; a break running past newEnd is cut at newEnd and counts only
// the days before it; breaks ending on or before newEnd are kept. Funded-period validation is not applied.
func Adjust(start, newEnd time.Time, breaks []Break, r rules.StudyPeriod) Result {
	newEnd = dateOnly(newEnd)
	out := make([]BreakResult, 0, len(breaks))
	for _, b := range breaks {
		bs, be := dateOnly(b.Start), dateOnly(b.End)
		switch {
		case !bs.Before(newEnd):
			continue
		case !be.After(newEnd):
			out = append(out, breakResult(bs, be, WholeDays(inclusiveDays(bs, be)), r))
		default:
			out = append(out, breakResult(bs, newEnd, WholeDays(exclusiveDays(bs, newEnd)), r))
		}
	}
	return summarize(WholeDays(inclusiveDays(start, newEnd)), out, r)
}

func breakResult(start, end time.Time, days Days, r rules.StudyPeriod) BreakResult {
	eligible := days
	if limit := WholeDays(r.MaxBreakDays); eligible > limit {
		eligible = limit
	}
	return BreakResult{
		Start:      dateOnly(start),
		End:        dateOnly(end),
		Days:       days,
		Eligible:   eligible,
		Ineligible: days - eligible,
	}
}

func summarize(total Days, breaks []BreakResult, r rules.StudyPeriod) Result {
	res := Result{Breaks: breaks, TotalDays: total}
	for _, b := range breaks {
		res.SumEligibleBreakDays += b.Eligible
		res.SumIneligibleBreakDays += b.Ineligible
	}
	res.AllowableBreakDays = total * Days(r.CombinedBreakThresholdPercent) / 100
	if res.SumEligibleBreakDays > res.AllowableBreakDays {
		res.ExceedingAllowedDays = res.SumEligibleBreakDays - res.AllowableBreakDays
	}
	unfunded := res.SumIneligibleBreakDays + res.ExceedingAllowedDays
	if unfunded > total {
		unfunded = total
	}
	if unfunded < 0 {
		unfunded = 0
	}
	res.UnfundedDays = unfunded
	res.FundedDays = total - unfunded
	res.FundedWeeks = ceilWeeks(res.FundedDays)
	return res
}

func ceilWeeks(d Days) int {
	if d <= 0 {
		return 0
	}
	week := int64(7 * dayScale)
	return int((int64(d) + week - 1) / week)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func exclusiveDays(start, end time.Time) int {
	n := int(dateOnly(end).Sub(dateOnly(start)).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

func inclusiveDays(start, end time.Time) int {
	if dateOnly(end).Before(dateOnly(start)) {
		return 0
	}
	return exclusiveDays(start, end) + 1
}
