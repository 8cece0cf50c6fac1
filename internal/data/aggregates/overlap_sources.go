package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/studentaid-backend/internal/aid/overlap"
	"github.com/yungbote/studentaid-backend/internal/data/repos"
	legacyrepo "github.com/yungbote/studentaid-backend/internal/data/repos/legacy"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

const (
	OverlapSourceLocal          = "local"
	OverlapSourceLegacyFullTime = "legacy_full_time"
	OverlapSourceLegacyPartTime = "legacy_part_time"
)

// NewOverlapChecker wires the local applications table and both legacy imports into one checker.
// Each source reads outside the submitting transaction.
func NewOverlapChecker(baseLog *logger.Logger, bypass bool, apps repos.ApplicationRepo, sfas repos.SFASRepo) *overlap.Checker {
	var sources []overlap.Source
	if apps != nil {
		sources = append(sources, overlap.SourceFunc(OverlapSourceLocal, localOverlap(apps)))
	}
	if sfas != nil {
		sources = append(sources,
			overlap.SourceFunc(OverlapSourceLegacyFullTime, legacyOverlap(sfas.HasFullTimeOverlap)),
			overlap.SourceFunc(OverlapSourceLegacyPartTime, legacyOverlap(sfas.HasPartTimeOverlap)),
		)
	}
	return overlap.NewChecker(baseLog, bypass, sources...)
}

// localOverlap treats a live application without an assessed offering as overlapping,
// unless its program information request was declined.
func localOverlap(apps repos.ApplicationRepo) func(context.Context, overlap.Request) (bool, error) {
	return func(ctx context.Context, req overlap.Request) (bool, error) {
		candidates, err := apps.ListOverlapCandidates(dbctx.Context{Ctx: ctx}, req.StudentID, req.ApplicationNumber)
		if err != nil {
			return false, err
		}
		for _, c := range candidates {
			if c.StudyStart == nil || c.StudyEnd == nil {
				if c.PIRStatus != nil && *c.PIRStatus == string(appdomain.PIRStatusDeclined) {
					continue
				}
				return true, nil
			}
			if overlap.Overlaps(req.Period, overlap.Period{Start: *c.StudyStart, End: *c.StudyEnd}) {
				return true, nil
			}
		}
		return false, nil
	}
}

type legacyLookup func(dbc dbctx.Context, who legacyrepo.Identity, start, end time.Time) (bool, error)

// legacyOverlap skips students without a SIN; legacy records are matched by SIN.
func legacyOverlap(lookup legacyLookup) func(context.Context, overlap.Request) (bool, error) {
	return func(ctx context.Context, req overlap.Request) (bool, error) {
		sin := strings.TrimSpace(req.SIN)
		if sin == "" {
			return false, nil
		}
		return lookup(dbctx.Context{Ctx: ctx}, legacyrepo.Identity{
			SIN:       sin,
			BirthDate: req.BirthDate,
			LastName:  req.LastName,
		}, req.Period.Start, req.Period.End)
	}
}
