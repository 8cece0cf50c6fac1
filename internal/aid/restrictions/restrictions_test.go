package restrictions

import (
	"reflect"
	"testing"
	"time"

	"github.com/yungbote/studentaid-backend/internal/aid/rules"
	"github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/domain/students"
)

func TestDecideSIN(t *testing.T) {
	end := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	before := end.AddDate(0, 0, -1)
	after := end.AddDate(0, 1, 0)

	cases := []struct {
		name   string
		sin    *students.SINValidation
		active bool
		want   bool
	}{
		{"no validation", nil, false, false},
		{"permanent sin", &students.SINValidation{SIN: "999999999"}, false, false},
		{"temporary without expiry", &students.SINValidation{TemporarySIN: true}, false, true},
		{"temporary expires before study end", &students.SINValidation{TemporarySIN: true, SINExpiryDate: &before}, false, true},
		{"temporary expires on study end", &students.SINValidation{TemporarySIN: true, SINExpiryDate: &end}, false, false},
		{"temporary expires after study end", &students.SINValidation{TemporarySIN: true, SINExpiryDate: &after}, false, false},
		{"already restricted", &students.SINValidation{TemporarySIN: true}, true, false},
	}
	for _, tc := range cases {
		if got := DecideSIN(tc.sin, end, tc.active); got != tc.want {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
	}
}

func TestDecideFullTime(t *testing.T) {
	r := rules.Default().Restrictions
	cases := []struct {
		name string
		in   FullTimeInput
		want []string
	}{
		{
			name: "non-completion below threshold",
			in:   FullTimeInput{ChangeType: applications.StandingDidNotCompleteProgram, TotalUnsuccessfulWeeks: 40},
		},
		{
			name: "non-completion reaches threshold",
			in:   FullTimeInput{ChangeType: applications.StandingDidNotCompleteProgram, TotalUnsuccessfulWeeks: 70},
			want: []string{"SSR"},
		},
		{
			name: "non-completion at exact threshold",
			in:   FullTimeInput{ChangeType: applications.StandingDidNotCompleteProgram, TotalUnsuccessfulWeeks: 68},
			want: []string{"SSR"},
		},
		{
			name: "step-up history escalates",
			in:   FullTimeInput{ChangeType: applications.StandingDidNotCompleteProgram, TotalUnsuccessfulWeeks: 90, HasStepUp: true},
			want: []string{"SSRN"},
		},
		{
			name: "active escalated restriction is not duplicated",
			in:   FullTimeInput{ChangeType: applications.StandingDidNotCompleteProgram, TotalUnsuccessfulWeeks: 90, HasStepUp: true, HasActiveEscalated: true},
		},
		{
			name: "first withdrawal",
			in:   FullTimeInput{ChangeType: applications.StandingWithdrewFromProgram},
			want: []string{"WTHD"},
		},
		{
			name: "repeat withdrawal adds step-up",
			in:   FullTimeInput{ChangeType: applications.StandingWithdrewFromProgram, HasActiveWithdrawal: true},
			want: []string{"SSR"},
		},
		{
			name: "repeat withdrawal after escalation",
			in:   FullTimeInput{ChangeType: applications.StandingWithdrewFromProgram, HasActiveWithdrawal: true, HasStepUp: true},
			want: []string{"SSRN"},
		},
		{
			name: "early completion creates nothing",
			in:   FullTimeInput{ChangeType: applications.StandingCompletedEarly, TotalUnsuccessfulWeeks: 100},
		},
	}
	for _, tc := range cases {
		got := DecideFullTime(tc.in, r)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
	}
}

func TestCumulativeWeeksCreateStepUpOnce(t *testing.T) {
	r := rules.Default().Restrictions
	first := DecideFullTime(FullTimeInput{ChangeType: applications.StandingDidNotCompleteProgram, TotalUnsuccessfulWeeks: 40}, r)
	if len(first) != 0 {
		t.Fatalf("first report: want none got=%v", first)
	}
	second := DecideFullTime(FullTimeInput{ChangeType: applications.StandingDidNotCompleteProgram, TotalUnsuccessfulWeeks: 70}, r)
	if !reflect.DeepEqual(second, []string{"SSR"}) {
		t.Fatalf("second report: want=[SSR] got=%v", second)
	}
}

func TestPartTimeBundle(t *testing.T) {
	r := rules.Default().Restrictions
	got := PartTimeBundle(applications.StandingWithdrewFromProgram, r)
	if !reflect.DeepEqual(got, []string{"PTSSR", "PTWTHD"}) {
		t.Fatalf("bundle: %v", got)
	}
	got[0] = "mutated"
	if r.PartTimeBundle[0] != "PTSSR" {
		t.Fatalf("bundle must be a copy")
	}
	if got := PartTimeBundle(applications.StandingSchoolTransfer, r); got != nil {
		t.Fatalf("school transfer: want nil got=%v", got)
	}
}
