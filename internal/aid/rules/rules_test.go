package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRules(t *testing.T) {
	r := Default()
	if r.StudyPeriod.MaxBreakDays != 21 {
		t.Fatalf("max_break_days: want=21 got=%d", r.StudyPeriod.MaxBreakDays)
	}
	if r.Restrictions.UnsuccessfulWeeksThreshold != 68 {
		t.Fatalf("weeks threshold: want=68 got=%d", r.Restrictions.UnsuccessfulWeeksThreshold)
	}
	if len(r.Restrictions.PartTimeBundle) != 2 {
		t.Fatalf("part-time bundle: want 2 codes got=%v", r.Restrictions.PartTimeBundle)
	}
	if r.Applications.NumberLength != 10 {
		t.Fatalf("number length: want=10 got=%d", r.Applications.NumberLength)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("study_period:\n  max_break_days: 0\n"))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadFallsBackOnBadOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte(":::not yaml"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(rulesEnv, path)
	r := Load(nil)
	if r.StudyPeriod.MaxBreakDays != 21 {
		t.Fatalf("expected embedded fallback, got %+v", r.StudyPeriod)
	}
}

func TestLoadOverride(t *testing.T) {
	doc := `
study_period:
  max_break_days: 14
  min_break_days: 1
  combined_break_threshold_percent: 10
  max_study_period_days: 365
  min_funded_weeks_full_time: 12
restrictions:
  sin: SINR
  step_up: SSR
  step_up_escalated: SSRN
  withdrawal: WTHD
  part_time_bundle: [PTSSR]
  unsuccessful_weeks_threshold: 40
applications:
  number_length: 10
  edit_notification_threshold: 2
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(rulesEnv, path)
	r := Load(nil)
	if r.StudyPeriod.MaxBreakDays != 14 || r.Restrictions.UnsuccessfulWeeksThreshold != 40 {
		t.Fatalf("override not applied: %+v", r)
	}
}
