package overlap

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlaps(t *testing.T) {
	existing := Period{Start: day("2024-01-01"), End: day("2024-04-30")}
	cases := []struct {
		name string
		p    Period
		want bool
	}{
		{"starts inside", Period{Start: day("2024-04-15"), End: day("2024-08-31")}, true},
		{"starts next day", Period{Start: day("2024-05-01"), End: day("2024-08-31")}, false},
		{"shares end boundary", Period{Start: day("2024-04-30"), End: day("2024-08-31")}, true},
		{"contains existing", Period{Start: day("2023-12-01"), End: day("2024-06-30")}, true},
		{"ends before", Period{Start: day("2023-09-01"), End: day("2023-12-31")}, false},
	}
	for _, tc := range cases {
		if got := Overlaps(existing, tc.p); got != tc.want {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
		if got := Overlaps(tc.p, existing); got != tc.want {
			t.Fatalf("%s (reversed): want=%v got=%v", tc.name, tc.want, got)
		}
	}
}

func fixed(name string, hit bool, err error) Source {
	return SourceFunc(name, func(context.Context, Request) (bool, error) { return hit, err })
}

func periodSource(name string, existing Period) Source {
	return SourceFunc(name, func(_ context.Context, req Request) (bool, error) {
		return Overlaps(existing, req.Period), nil
	})
}

func TestCheckerRejectsOverlapFromAnySource(t *testing.T) {
	existing := Period{Start: day("2024-01-01"), End: day("2024-04-30")}
	c := NewChecker(nil, false,
		fixed("local", false, nil),
		periodSource("legacy_full_time", existing),
		fixed("legacy_part_time", false, nil),
	)

	err := c.Check(context.Background(), Request{Period: Period{Start: day("2024-04-15"), End: day("2024-08-31")}})
	var conflict *Conflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(conflict.Sources) != 1 || conflict.Sources[0] != "legacy_full_time" {
		t.Fatalf("conflict sources: %v", conflict.Sources)
	}

	if err := c.Check(context.Background(), Request{Period: Period{Start: day("2024-05-01"), End: day("2024-08-31")}}); err != nil {
		t.Fatalf("expected adjacent period accepted, got %v", err)
	}
}

func TestCheckerQueriesEverySource(t *testing.T) {
	var calls int32
	counting := func(name string) Source {
		return SourceFunc(name, func(context.Context, Request) (bool, error) {
			atomic.AddInt32(&calls, 1)
			return true, nil
		})
	}
	c := NewChecker(nil, false, counting("a"), counting("b"), counting("c"))
	err := c.Check(context.Background(), Request{Period: Period{Start: day("2024-01-01"), End: day("2024-01-31")}})
	var conflict *Conflict
	if !errors.As(err, &conflict) || len(conflict.Sources) != 3 {
		t.Fatalf("expected three conflicting sources, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("calls: want=3 got=%d", calls)
	}
}

func TestCheckerPropagatesLookupError(t *testing.T) {
	boom := errors.New("boom")
	c := NewChecker(nil, false, fixed("local", false, nil), fixed("legacy_part_time", false, boom))
	err := c.Check(context.Background(), Request{Period: Period{Start: day("2024-01-01"), End: day("2024-01-31")}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestCheckerBypass(t *testing.T) {
	c := NewChecker(nil, true, fixed("local", true, nil))
	if err := c.Check(context.Background(), Request{Period: Period{Start: day("2024-01-01"), End: day("2024-01-31")}}); err != nil {
		t.Fatalf("bypassed checker must accept, got %v", err)
	}
}
