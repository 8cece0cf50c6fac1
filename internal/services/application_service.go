package services

import (
	"context"

	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

// ApplicationService fronts the application aggregate for the HTTP layer and publishes the
// notifications each committed write queued.
type ApplicationService interface {
	SaveDraft(ctx context.Context, in domainagg.SaveDraftInput) (domainagg.ApplicationResult, error)
	Submit(ctx context.Context, in domainagg.SubmitApplicationInput) (domainagg.ApplicationResult, error)
	Cancel(ctx context.Context, in domainagg.CancelApplicationInput) (domainagg.ApplicationResult, error)
	SubmitChangeRequest(ctx context.Context, in domainagg.SubmitChangeRequestInput) (domainagg.ApplicationResult, error)
	CancelChangeRequest(ctx context.Context, in domainagg.CancelChangeRequestInput) (domainagg.ApplicationResult, error)
	AssessChangeRequest(ctx context.Context, in domainagg.AssessChangeRequestInput) (domainagg.ApplicationResult, error)
	CompleteProgramInfoRequest(ctx context.Context, in domainagg.CompleteProgramInfoInput) (domainagg.ApplicationResult, error)
	DenyProgramInfoRequest(ctx context.Context, in domainagg.DenyProgramInfoInput) (domainagg.ApplicationResult, error)
	ConfirmAssessment(ctx context.Context, in domainagg.ConfirmAssessmentInput) (domainagg.ApplicationResult, error)
	TransitionStatus(ctx context.Context, in domainagg.TransitionStatusInput) (domainagg.ApplicationResult, error)
	SaveScholasticStanding(ctx context.Context, in domainagg.SaveScholasticStandingInput) (domainagg.ScholasticStandingResult, error)
	CreateApplicationOfferingChange(ctx context.Context, in domainagg.CreateApplicationOfferingChangeInput) (domainagg.ApplicationOfferingChangeResult, error)
	RespondApplicationOfferingChange(ctx context.Context, in domainagg.RespondApplicationOfferingChangeInput) (domainagg.ApplicationOfferingChangeResult, error)
	AssessApplicationOfferingChange(ctx context.Context, in domainagg.AssessApplicationOfferingChangeInput) (domainagg.ApplicationOfferingChangeResult, error)
}

type applicationService struct {
	log *logger.Logger
	agg domainagg.ApplicationAggregate
	pub NotificationPublisher
}

func NewApplicationService(baseLog *logger.Logger, agg domainagg.ApplicationAggregate, pub NotificationPublisher) ApplicationService {
	if pub == nil {
		pub = NewNoopNotificationPublisher()
	}
	return &applicationService{
		log: baseLog.With("service", "ApplicationService"),
		agg: agg,
		pub: pub,
	}
}

func (s *applicationService) SaveDraft(ctx context.Context, in domainagg.SaveDraftInput) (domainagg.ApplicationResult, error) {
	return s.agg.SaveDraft(ctx, in)
}

func (s *applicationService) Submit(ctx context.Context, in domainagg.SubmitApplicationInput) (domainagg.ApplicationResult, error) {
	res, err := s.agg.Submit(ctx, in)
	if err != nil {
		return res, err
	}
	s.log.Info("application submitted",
		"application_id", res.ApplicationID, "application_number", res.ApplicationNumber, "replaced", res.ReplacedApplicationID != nil)
	publishAfterCommit(ctx, s.log, s.pub, "Submit", res.NotificationIDs)
	return res, nil
}

func (s *applicationService) Cancel(ctx context.Context, in domainagg.CancelApplicationInput) (domainagg.ApplicationResult, error) {
	return s.agg.Cancel(ctx, in)
}

func (s *applicationService) SubmitChangeRequest(ctx context.Context, in domainagg.SubmitChangeRequestInput) (domainagg.ApplicationResult, error) {
	res, err := s.agg.SubmitChangeRequest(ctx, in)
	if err != nil {
		return res, err
	}
	publishAfterCommit(ctx, s.log, s.pub, "SubmitChangeRequest", res.NotificationIDs)
	return res, nil
}

func (s *applicationService) CancelChangeRequest(ctx context.Context, in domainagg.CancelChangeRequestInput) (domainagg.ApplicationResult, error) {
	return s.agg.CancelChangeRequest(ctx, in)
}

func (s *applicationService) AssessChangeRequest(ctx context.Context, in domainagg.AssessChangeRequestInput) (domainagg.ApplicationResult, error) {
	res, err := s.agg.AssessChangeRequest(ctx, in)
	if err != nil {
		return res, err
	}
	publishAfterCommit(ctx, s.log, s.pub, "AssessChangeRequest", res.NotificationIDs)
	return res, nil
}

func (s *applicationService) CompleteProgramInfoRequest(ctx context.Context, in domainagg.CompleteProgramInfoInput) (domainagg.ApplicationResult, error) {
	res, err := s.agg.SetOfferingForProgramInfoRequest(ctx, in)
	if err != nil {
		return res, err
	}
	publishAfterCommit(ctx, s.log, s.pub, "CompleteProgramInfoRequest", res.NotificationIDs)
	return res, nil
}

func (s *applicationService) DenyProgramInfoRequest(ctx context.Context, in domainagg.DenyProgramInfoInput) (domainagg.ApplicationResult, error) {
	return s.agg.SetDeniedReasonForProgramInfoRequest(ctx, in)
}

func (s *applicationService) ConfirmAssessment(ctx context.Context, in domainagg.ConfirmAssessmentInput) (domainagg.ApplicationResult, error) {
	return s.agg.ConfirmAssessment(ctx, in)
}

func (s *applicationService) TransitionStatus(ctx context.Context, in domainagg.TransitionStatusInput) (domainagg.ApplicationResult, error) {
	res, err := s.agg.TransitionStatus(ctx, in)
	if err != nil {
		return res, err
	}
	publishAfterCommit(ctx, s.log, s.pub, "TransitionStatus", res.NotificationIDs)
	return res, nil
}

func (s *applicationService) SaveScholasticStanding(ctx context.Context, in domainagg.SaveScholasticStandingInput) (domainagg.ScholasticStandingResult, error) {
	res, err := s.agg.SaveScholasticStanding(ctx, in)
	if err != nil {
		return res, err
	}
	if len(res.RestrictionCodes) > 0 {
		s.log.Info("scholastic standing restricted student", "application_id", res.ApplicationID, "codes", res.RestrictionCodes)
	}
	publishAfterCommit(ctx, s.log, s.pub, "SaveScholasticStanding", res.NotificationIDs)
	return res, nil
}

func (s *applicationService) CreateApplicationOfferingChange(ctx context.Context, in domainagg.CreateApplicationOfferingChangeInput) (domainagg.ApplicationOfferingChangeResult, error) {
	res, err := s.agg.CreateApplicationOfferingChange(ctx, in)
	if err != nil {
		return res, err
	}
	publishAfterCommit(ctx, s.log, s.pub, "CreateApplicationOfferingChange", res.NotificationIDs)
	return res, nil
}

func (s *applicationService) RespondApplicationOfferingChange(ctx context.Context, in domainagg.RespondApplicationOfferingChangeInput) (domainagg.ApplicationOfferingChangeResult, error) {
	return s.agg.StudentRespondOfferingChange(ctx, in)
}

func (s *applicationService) AssessApplicationOfferingChange(ctx context.Context, in domainagg.AssessApplicationOfferingChangeInput) (domainagg.ApplicationOfferingChangeResult, error) {
	res, err := s.agg.AssessApplicationOfferingChange(ctx, in)
	if err != nil {
		return res, err
	}
	publishAfterCommit(ctx, s.log, s.pub, "AssessApplicationOfferingChange", res.NotificationIDs)
	return res, nil
}
