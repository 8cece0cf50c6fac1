package main

import (
	"go/parser"
	"go/token"
	"testing"
)

const sampleServices = `package services

type applicationService struct {
	apps  repos.ApplicationRepo
	notes repos.NoteRepo
	agg   domainagg.ApplicationAggregate
}

func (s *applicationService) Submit() {
	s.agg.Submit(nil, nil)
}

func (s *applicationService) Shortcut() {
	s.apps.UpdateFields(nil, nil, nil)
	s.notes.Create(nil, nil)
}
`

func TestReportFlagsLifecycleRepoWrites(t *testing.T) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "internal/services/sample.go", sampleServices, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	deps := map[string]serviceDeps{}
	collectDeps(f, deps)
	report := summarize(deps, inspectMethods(fset, f, "internal/services/sample.go", deps))

	if report.LifecycleRepoWriteCallsites != 1 {
		t.Fatalf("lifecycle writes: want=1 got=%d", report.LifecycleRepoWriteCallsites)
	}
	if len(report.Violations) != 1 || report.Violations[0].Method != "Shortcut" {
		t.Fatalf("unexpected violations: %+v", report.Violations)
	}
	if report.AggregateOwnedCallsites != 1 || report.AggregateMethods[0].AggregateOps[0] != "Submit" {
		t.Fatalf("unexpected aggregate methods: %+v", report.AggregateMethods)
	}
	if len(report.ServicesWithLifecycleRepos) != 1 || report.ServicesWithLifecycleRepos[0] != "applicationService" {
		t.Fatalf("unexpected services: %v", report.ServicesWithLifecycleRepos)
	}
}

func TestAreaForRepo(t *testing.T) {
	cases := map[string]bool{
		"ApplicationRepo":        true,
		"StudentRestrictionRepo": true,
		"OfferingRepo":           true,
		"NotificationRepo":       false,
		"SequenceRepo":           false,
	}
	for typ, want := range cases {
		if _, got := areaForRepo(typ); got != want {
			t.Fatalf("%s: want lifecycle=%v got=%v", typ, want, got)
		}
	}
}
