package service

import (
	"context"
	"log"
	"time"

	"university-results-backend/app/model"
	"university-results-backend/app/repository"

	"github.com/google/uuid"
)

// ReleaseService owns the per-semester visibility switch. The switch
// gates what students can see; it never changes any result's status or
// triggers computation, so flipping it back and forth is always safe.
type ReleaseService interface {
	SetRelease(ctx context.Context, semesterID uuid.UUID, visible bool, actor model.Actor) (*model.ResultRelease, error)
	GetRelease(ctx context.Context, semesterID uuid.UUID) (*model.ResultRelease, error)

	// IsResultVisible reports whether a student may see the result:
	// the result must be finalized and its semester released.
	IsResultVisible(ctx context.Context, result *model.Result, semesterID uuid.UUID) (bool, error)
}

type releaseService struct {
	resultRepo repository.ResultRepository
	auditRepo  repository.AuditRepository
}

// NewReleaseService creates a new releaseService instance.
func NewReleaseService(resultRepo repository.ResultRepository, auditRepo repository.AuditRepository) ReleaseService {
	return &releaseService{resultRepo: resultRepo, auditRepo: auditRepo}
}

func (s *releaseService) SetRelease(ctx context.Context, semesterID uuid.UUID, visible bool, actor model.Actor) (*model.ResultRelease, error) {
	if !actor.Role.Elevated() {
		return nil, model.ErrForbiddenRole
	}

	release, err := s.resultRepo.GetRelease(semesterID)
	if err != nil {
		return nil, err
	}
	if release == nil {
		release = &model.ResultRelease{SemesterID: semesterID}
	}

	release.CanViewResults = visible
	if visible {
		now := time.Now()
		release.ReleasedByID = &actor.ID
		release.ReleasedDate = &now
	}
	if err := s.resultRepo.SaveRelease(release); err != nil {
		return nil, err
	}

	s.logRelease(semesterID, visible, actor)
	return release, nil
}

func (s *releaseService) GetRelease(ctx context.Context, semesterID uuid.UUID) (*model.ResultRelease, error) {
	return s.resultRepo.GetRelease(semesterID)
}

func (s *releaseService) IsResultVisible(ctx context.Context, result *model.Result, semesterID uuid.UUID) (bool, error) {
	if !result.Status.Finalized() {
		return false, nil
	}
	release, err := s.resultRepo.GetRelease(semesterID)
	if err != nil {
		return false, err
	}
	return release != nil && release.CanViewResults, nil
}

func (s *releaseService) logRelease(semesterID uuid.UUID, visible bool, actor model.Actor) {
	if s.auditRepo == nil {
		return
	}
	verb := "release"
	if !visible {
		verb = "withdraw_release"
	}
	entry := &model.ActivityLog{
		ActorID:     actor.ID.String(),
		ActorRole:   string(actor.Role),
		Action:      verb,
		ContentType: "result_release",
		ObjectID:    semesterID.String(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.auditRepo.LogActivity(ctx, entry); err != nil {
			log.Printf("[AUDIT] failed to log %s for semester %s: %v", verb, semesterID, err)
		}
	}()
}
