package services

import (
	"context"

	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

// OfferingChangeService fronts the offering change aggregate.
type OfferingChangeService interface {
	RequestChange(ctx context.Context, in domainagg.RequestOfferingChangeInput) (domainagg.RequestOfferingChangeResult, error)
	AssessChange(ctx context.Context, in domainagg.AssessOfferingChangeInput) (domainagg.AssessOfferingChangeResult, error)
}

type offeringChangeService struct {
	log *logger.Logger
	agg domainagg.OfferingChangeAggregate
	pub NotificationPublisher
}

func NewOfferingChangeService(baseLog *logger.Logger, agg domainagg.OfferingChangeAggregate, pub NotificationPublisher) OfferingChangeService {
	if pub == nil {
		pub = NewNoopNotificationPublisher()
	}
	return &offeringChangeService{log: baseLog.With("service", "OfferingChangeService"), agg: agg, pub: pub}
}

func (s *offeringChangeService) RequestChange(ctx context.Context, in domainagg.RequestOfferingChangeInput) (domainagg.RequestOfferingChangeResult, error) {
	return s.agg.RequestChange(ctx, in)
}

func (s *offeringChangeService) AssessChange(ctx context.Context, in domainagg.AssessOfferingChangeInput) (domainagg.AssessOfferingChangeResult, error) {
	res, err := s.agg.AssessChangeRequest(ctx, in)
	if err != nil {
		return res, err
	}
	publishAfterCommit(ctx, s.log, s.pub, "AssessOfferingChange", res.NotificationIDs)
	return res, nil
}

// RestrictionService fronts the restriction aggregate.
type RestrictionService interface {
	Resolve(ctx context.Context, in domainagg.ChangeRestrictionInput) (domainagg.RestrictionResult, error)
	Delete(ctx context.Context, in domainagg.ChangeRestrictionInput) (domainagg.RestrictionResult, error)
}

type restrictionService struct {
	log *logger.Logger
	agg domainagg.RestrictionAggregate
}

func NewRestrictionService(baseLog *logger.Logger, agg domainagg.RestrictionAggregate) RestrictionService {
	return &restrictionService{log: baseLog.With("service", "RestrictionService"), agg: agg}
}

func (s *restrictionService) Resolve(ctx context.Context, in domainagg.ChangeRestrictionInput) (domainagg.RestrictionResult, error) {
	res, err := s.agg.Resolve(ctx, in)
	if err == nil {
		s.log.Info("restriction resolved", "student_id", in.StudentID, "student_restriction_id", res.StudentRestrictionID)
	}
	return res, err
}

func (s *restrictionService) Delete(ctx context.Context, in domainagg.ChangeRestrictionInput) (domainagg.RestrictionResult, error) {
	res, err := s.agg.Delete(ctx, in)
	if err == nil {
		s.log.Info("restriction deleted", "student_id", in.StudentID, "student_restriction_id", res.StudentRestrictionID)
	}
	return res, err
}
