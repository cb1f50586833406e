package service

import (
	"context"
	"time"

	"university-results-backend/app/model"
	"university-results-backend/app/repository"

	"github.com/google/uuid"
)

// LockService manages the per-enrollment result freeze. While a lock is
// engaged every mutation path (components, grades, submissions,
// recomputation) fails with ErrLockedResult; read paths are unaffected.
type LockService interface {
	CheckMutable(ctx context.Context, enrollmentID uuid.UUID) error
	Lock(ctx context.Context, enrollmentID uuid.UUID, actor model.Actor, reason string) (*model.ResultLock, error)
	Unlock(ctx context.Context, enrollmentID uuid.UUID, actor model.Actor, reason string) (*model.ResultLock, error)
	GetLock(ctx context.Context, enrollmentID uuid.UUID) (*model.ResultLock, error)
}

type lockService struct {
	resultRepo repository.ResultRepository
}

// NewLockService creates a new lockService instance.
func NewLockService(resultRepo repository.ResultRepository) LockService {
	return &lockService{resultRepo: resultRepo}
}

// checkEnrollmentMutable is the shared guard every mutation path calls
// before touching an enrollment's results. Absence of a lock row means
// unlocked.
func checkEnrollmentMutable(repo repository.ResultRepository, enrollmentID uuid.UUID) error {
	lock, err := repo.GetLock(enrollmentID)
	if err != nil {
		return err
	}
	if lock != nil && lock.IsLocked {
		return model.ErrLockedResult
	}
	return nil
}

func (s *lockService) CheckMutable(ctx context.Context, enrollmentID uuid.UUID) error {
	return checkEnrollmentMutable(s.resultRepo, enrollmentID)
}

func (s *lockService) GetLock(ctx context.Context, enrollmentID uuid.UUID) (*model.ResultLock, error) {
	return s.resultRepo.GetLock(enrollmentID)
}

func (s *lockService) Lock(ctx context.Context, enrollmentID uuid.UUID, actor model.Actor, reason string) (*model.ResultLock, error) {
	if !actor.Role.Elevated() {
		return nil, model.ErrForbiddenRole
	}
	if _, err := s.resultRepo.GetEnrollment(enrollmentID); err != nil {
		return nil, err
	}

	lock, err := s.resultRepo.GetLock(enrollmentID)
	if err != nil {
		return nil, err
	}
	if lock != nil && lock.IsLocked {
		return nil, model.ErrInvalidTransition
	}
	if lock == nil {
		lock = &model.ResultLock{EnrollmentID: enrollmentID}
	}

	now := time.Now()
	lock.IsLocked = true
	lock.LockedByID = &actor.ID
	lock.LockedAt = &now
	lock.LockReason = reason

	if err := s.resultRepo.SaveLock(lock); err != nil {
		return nil, err
	}
	return lock, nil
}

func (s *lockService) Unlock(ctx context.Context, enrollmentID uuid.UUID, actor model.Actor, reason string) (*model.ResultLock, error) {
	if !actor.Role.Elevated() {
		return nil, model.ErrForbiddenRole
	}

	lock, err := s.resultRepo.GetLock(enrollmentID)
	if err != nil {
		return nil, err
	}
	if lock == nil || !lock.IsLocked {
		return nil, model.ErrInvalidTransition
	}

	now := time.Now()
	lock.IsLocked = false
	lock.UnlockedByID = &actor.ID
	lock.UnlockedAt = &now
	lock.UnlockReason = reason

	if err := s.resultRepo.SaveLock(lock); err != nil {
		return nil, err
	}
	return lock, nil
}
