// Package restrictions decides which student restrictions a trigger creates.
//
// The functions here only decide; persistence, re-checks inside the transaction and
// notification rows live in the data/aggregates restriction assessor.
package restrictions

import (
	"time"

	"github.com/yungbote/studentaid-backend/internal/aid/rules"
	"github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/domain/students"
)

// DecideSIN reports whether binding an offering ending on studyEnd requires a new SIN
// restriction. A temporary SIN without an expiry date, or expiring before the study ends,
// needs one unless the student already has an active SIN restriction.
func DecideSIN(sin *students.SINValidation, studyEnd time.Time, hasActiveSIN bool) bool {
	if hasActiveSIN || sin == nil || !sin.TemporarySIN {
		return false
	}
	if sin.SINExpiryDate == nil {
		return true
	}
	return dateOnly(*sin.SINExpiryDate).Before(dateOnly(studyEnd))
}

// FullTimeInput is the restriction history relevant to one full-time scholastic standing report.
type FullTimeInput struct {
	ChangeType applications.StandingChangeType
	// TotalUnsuccessfulWeeks sums every full-time report of the student, this one included.
	TotalUnsuccessfulWeeks int
	// HasStepUp is true when the student ever had the base or escalated step-up restriction.
	HasStepUp           bool
	HasActiveEscalated  bool
	HasActiveWithdrawal bool
}

// DecideFullTime returns the restriction codes to create for a full-time report, in order.
func DecideFullTime(in FullTimeInput, r rules.Restrictions) []string {
	var out []string
	stepUpCreated := false

	switch {
	case in.HasStepUp:
		if !in.HasActiveEscalated {
			out = append(out, r.StepUpEscalated)
			stepUpCreated = true
		}
	case in.ChangeType.NonCompletion():
		if in.TotalUnsuccessfulWeeks >= r.UnsuccessfulWeeksThreshold {
			out = append(out, r.StepUp)
			stepUpCreated = true
		}
	}

	if in.ChangeType.Withdrawal() {
		if !in.HasActiveWithdrawal {
			out = append(out, r.Withdrawal)
		} else if !stepUpCreated {
			out = append(out, r.StepUp)
		}
	}
	return out
}

// PartTimeBundle returns the codes every part-time withdrawal or non-completion report adds.
func PartTimeBundle(changeType applications.StandingChangeType, r rules.Restrictions) []string {
	if !changeType.Withdrawal() && !changeType.NonCompletion() {
		return nil
	}
	return append([]string(nil), r.PartTimeBundle...)
}

// StepUpCodes lists the codes that count as step-up history.
func StepUpCodes(r rules.Restrictions) []string {
	return []string{r.StepUp, r.StepUpEscalated}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
