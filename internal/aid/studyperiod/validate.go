package studyperiod

import (
	"fmt"
	"sort"
	"time"

	"github.com/yungbote/studentaid-backend/internal/aid/rules"
)

// Validate applies the funded-period rules to a proposed offering. It is used when an
// offering is created or changed, never by Adjust.
func Validate(start, end time.Time, breaks []Break, fullTime bool, r rules.StudyPeriod) []string {
	var errs []string
	start, end = dateOnly(start), dateOnly(end)
	if !end.After(start) {
		return []string{"study end date must be after study start date"}
	}
	if total := inclusiveDays(start, end); r.MaxStudyPeriodDays > 0 && total > r.MaxStudyPeriodDays {
		errs = append(errs, fmt.Sprintf("study period of %d days exceeds the maximum of %d days", total, r.MaxStudyPeriodDays))
	}

	sorted := append([]Break(nil), breaks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })
	for i, b := range sorted {
		bs, be := dateOnly(b.Start), dateOnly(b.End)
		if bs.Before(start) || be.After(end) {
			errs = append(errs, fmt.Sprintf("study break %s..%s must be within the study period", fmtDate(bs), fmtDate(be)))
		}
		if days := inclusiveDays(bs, be); days < r.MinBreakDays {
			errs = append(errs, fmt.Sprintf("study break %s..%s must be at least %d day(s)", fmtDate(bs), fmtDate(be), r.MinBreakDays))
		}
		if i > 0 && !bs.After(dateOnly(sorted[i-1].End)) {
			errs = append(errs, fmt.Sprintf("study break %s..%s overlaps the previous break", fmtDate(bs), fmtDate(be)))
		}
	}

	res := Calculate(start, end, sorted, r)
	if fullTime && r.MinFundedWeeksFullTime > 0 && res.FundedWeeks < r.MinFundedWeeksFullTime {
		errs = append(errs, fmt.Sprintf("full-time offerings need at least %d funded weeks, got %d", r.MinFundedWeeksFullTime, res.FundedWeeks))
	}
	return errs
}

func fmtDate(t time.Time) string { return t.Format("2006-01-02") }
