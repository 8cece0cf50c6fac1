// Package overlap rejects applications whose study period collides with another
// application of the same student, locally or in the legacy aid system.
package overlap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

// Period is a study period with inclusive bounds.
type Period struct {
	Start time.Time
	End   time.Time
}

// Overlaps is true when either boundary of one period falls inside the other, bounds inclusive.
func Overlaps(a, b Period) bool {
	return !dateOnly(a.Start).After(dateOnly(b.End)) && !dateOnly(b.Start).After(dateOnly(a.End))
}

// Request identifies the student and the period being proposed.
type Request struct {
	StudentID uuid.UUID
	SIN       string
	BirthDate time.Time
	LastName  string
	Period    Period
	// ApplicationNumber excludes the application chain being edited from the local lookup.
	ApplicationNumber string
}

// Source answers whether the student already has an application overlapping the request.
type Source interface {
	Name() string
	HasOverlap(ctx context.Context, req Request) (bool, error)
}

type sourceFunc struct {
	name string
	fn   func(ctx context.Context, req Request) (bool, error)
}

func (s sourceFunc) Name() string { return s.name }
func (s sourceFunc) HasOverlap(ctx context.Context, req Request) (bool, error) {
	return s.fn(ctx, req)
}

// SourceFunc adapts a lookup function to Source.
func SourceFunc(name string, fn func(ctx context.Context, req Request) (bool, error)) Source {
	return sourceFunc{name: name, fn: fn}
}

// Conflict is returned when at least one source reports an overlapping application.
type Conflict struct {
	Sources []string
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("study dates overlap an existing application (%s)", strings.Join(c.Sources, ", "))
}

// Checker runs every source concurrently and joins the results before deciding.
type Checker struct {
	log     *logger.Logger
	sources []Source
	bypass  bool
}

func NewChecker(baseLog *logger.Logger, bypass bool, sources ...Source) *Checker {
	var log *logger.Logger
	if baseLog != nil {
		log = baseLog.With("component", "OverlapChecker")
	}
	return &Checker{log: log, sources: sources, bypass: bypass}
}

// Check returns a *Conflict when any source overlaps, or the first lookup error.
func (c *Checker) Check(ctx context.Context, req Request) error {
	if c == nil || c.bypass || len(c.sources) == 0 {
		return nil
	}
	if req.Period.End.Before(req.Period.Start) {
		return fmt.Errorf("invalid study period: end %s before start %s",
			req.Period.End.Format("2006-01-02"), req.Period.Start.Format("2006-01-02"))
	}

	hits := make([]bool, len(c.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range c.sources {
		i, src := i, src
		g.Go(func() error {
			hit, err := src.HasOverlap(gctx, req)
			if err != nil {
				return fmt.Errorf("%s overlap lookup: %w", src.Name(), err)
			}
			hits[i] = hit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var conflict *Conflict
	for i, hit := range hits {
		if !hit {
			continue
		}
		if conflict == nil {
			conflict = &Conflict{}
		}
		conflict.Sources = append(conflict.Sources, c.sources[i].Name())
	}
	if conflict != nil {
		if c.log != nil {
			c.log.Info("study period overlap detected", "student_id", req.StudentID, "sources", conflict.Sources)
		}
		return conflict
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
