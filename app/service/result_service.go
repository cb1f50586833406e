package service

import (
	"context"
	"log"
	"time"

	"university-results-backend/app/model"
	"university-results-backend/app/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResultService handles score entry: draft result records and their
// weighted components. Grades are never written here; they fall out of
// the grading service when a result is recomputed or finalized.
type ResultService interface {
	// CreateDraft opens a draft result for one enrolled course.
	CreateDraft(ctx context.Context, enrollmentID, courseID uuid.UUID, actor model.Actor) (*model.Result, error)

	// UpsertComponent writes one weighted score entry on a result.
	// Components are keyed by kind; re-entering a kind overwrites it.
	UpsertComponent(ctx context.Context, resultID uuid.UUID, component model.ResultComponent, actor model.Actor) (*model.Result, error)

	GetResult(ctx context.Context, resultID uuid.UUID) (*model.Result, error)
	ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]model.Result, error)
}

type resultService struct {
	resultRepo repository.ResultRepository
	auditRepo  repository.AuditRepository
}

// NewResultService creates a new resultService instance.
func NewResultService(resultRepo repository.ResultRepository, auditRepo repository.AuditRepository) ResultService {
	return &resultService{resultRepo: resultRepo, auditRepo: auditRepo}
}

func (s *resultService) CreateDraft(ctx context.Context, enrollmentID, courseID uuid.UUID, actor model.Actor) (*model.Result, error) {
	if actor.Role == model.RoleStudent {
		return nil, model.ErrForbiddenRole
	}

	enrollment, err := s.resultRepo.GetEnrollment(enrollmentID)
	if err != nil {
		return nil, err
	}
	enrolled := false
	for _, c := range enrollment.Courses {
		if c.CourseID == courseID {
			enrolled = true
			break
		}
	}
	if !enrolled {
		return nil, gorm.ErrRecordNotFound
	}

	now := time.Now()
	result := &model.Result{
		EnrollmentID:   enrollmentID,
		CourseID:       courseID,
		Status:         model.ResultDraft,
		SubmittedByID:  &actor.ID,
		SubmissionDate: &now,
	}
	err = s.resultRepo.InTransaction(func(tx *gorm.DB) error {
		rr := s.resultRepo.WithTx(tx)
		if err := rr.LockEnrollmentRow(enrollmentID); err != nil {
			return err
		}
		if err := checkEnrollmentMutable(rr, enrollmentID); err != nil {
			return err
		}
		return rr.CreateResult(result)
	})
	if err != nil {
		return nil, err
	}

	s.logActivity(actor, "create", "result", result.ID.String())
	return result, nil
}

func (s *resultService) UpsertComponent(ctx context.Context, resultID uuid.UUID, component model.ResultComponent, actor model.Actor) (*model.Result, error) {
	if actor.Role == model.RoleStudent {
		return nil, model.ErrForbiddenRole
	}
	if !component.ComponentType.Valid() {
		return nil, model.ErrInvalidTransition
	}
	if component.MaxScore <= 0 || component.ScoreObtained < 0 ||
		component.ScoreObtained > component.MaxScore || component.Weight < 0 {
		return nil, model.ErrOutOfRange
	}

	result, err := s.resultRepo.FindResultByID(resultID)
	if err != nil {
		return nil, err
	}

	err = s.resultRepo.InTransaction(func(tx *gorm.DB) error {
		rr := s.resultRepo.WithTx(tx)
		if err := rr.LockEnrollmentRow(result.EnrollmentID); err != nil {
			return err
		}
		if err := checkEnrollmentMutable(rr, result.EnrollmentID); err != nil {
			return err
		}

		// Scores freeze the moment the result leaves the editable
		// states; a rejected submission reopens them.
		fresh, err := rr.FindResultByID(resultID)
		if err != nil {
			return err
		}
		if fresh.Status != model.ResultDraft && fresh.Status != model.ResultRejected {
			return model.ErrInvalidTransition
		}

		component.ResultID = resultID
		return rr.UpsertComponent(&component)
	})
	if err != nil {
		return nil, err
	}

	s.logActivity(actor, "update", "result", resultID.String())
	return s.resultRepo.FindResultByID(resultID)
}

func (s *resultService) GetResult(ctx context.Context, resultID uuid.UUID) (*model.Result, error) {
	return s.resultRepo.FindResultByID(resultID)
}

func (s *resultService) ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]model.Result, error) {
	return s.resultRepo.FindResultsByEnrollment(enrollmentID)
}

func (s *resultService) logActivity(actor model.Actor, verb, contentType, objectID string) {
	if s.auditRepo == nil {
		return
	}
	entry := &model.ActivityLog{
		ActorID:     actor.ID.String(),
		ActorRole:   string(actor.Role),
		Action:      verb,
		ContentType: contentType,
		ObjectID:    objectID,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.auditRepo.LogActivity(ctx, entry); err != nil {
			log.Printf("[AUDIT] failed to log %s on %s %s: %v", verb, contentType, objectID, err)
		}
	}()
}
