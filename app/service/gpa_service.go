package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"university-results-backend/app/model"
	"university-results-backend/app/repository"
	"university-results-backend/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GPAService computes the per-semester GPA and the cumulative CGPA.
// Only finalized results that carry a derived grade contribute to the
// average; draft and in-flight results still count as courses taken.
type GPAService interface {
	// ComputeGPA recomputes and stores the enrollment's GPA record.
	// noGraded flags an enrollment with no contributing results yet; a
	// zero-valued record is still stored, an empty semester is a valid
	// state rather than an error.
	ComputeGPA(ctx context.Context, enrollmentID uuid.UUID) (record *model.GPARecord, noGraded bool, err error)

	// ComputeCGPA folds every stored GPA record of the student into the
	// cumulative record.
	ComputeCGPA(ctx context.Context, studentID uuid.UUID) (*model.CGPARecord, error)

	// RecomputeChainTx runs GPA then CGPA for the enrollment inside an
	// existing transaction. The caller must already hold the enrollment
	// row lock.
	RecomputeChainTx(tx *gorm.DB, enrollmentID uuid.UUID) error
}

type gpaService struct {
	resultRepo repository.ResultRepository
}

// NewGPAService creates a new gpaService instance.
func NewGPAService(resultRepo repository.ResultRepository) GPAService {
	return &gpaService{resultRepo: resultRepo}
}

func (s *gpaService) ComputeGPA(ctx context.Context, enrollmentID uuid.UUID) (*model.GPARecord, bool, error) {
	if err := checkEnrollmentMutable(s.resultRepo, enrollmentID); err != nil {
		return nil, false, err
	}

	var record *model.GPARecord
	var noGraded bool
	err := s.resultRepo.InTransaction(func(tx *gorm.DB) error {
		rr := s.resultRepo.WithTx(tx)
		if err := rr.LockEnrollmentRow(enrollmentID); err != nil {
			return err
		}
		var err error
		record, noGraded, err = computeGPATx(rr, enrollmentID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return record, noGraded, nil
}

// computeGPATx does the actual fold; callers hold the row lock.
func computeGPATx(repo repository.ResultRepository, enrollmentID uuid.UUID) (*model.GPARecord, bool, error) {
	results, err := repo.FindResultsByEnrollment(enrollmentID)
	if err != nil {
		return nil, false, err
	}

	var totalPoints float64
	var totalCredits, passed int
	for _, r := range results {
		if r.Grade == nil || !r.Status.Finalized() {
			continue
		}
		if r.Course == nil {
			return nil, false, fmt.Errorf("result %s has no course loaded", r.ID)
		}
		credits := r.Course.CreditUnits
		totalPoints += float64(credits) * r.Grade.GradePoint
		totalCredits += credits
		if r.Grade.IsPass {
			passed++
		}
	}

	// Every result stands for one enrolled course; courses taken counts
	// them all, graded or not.
	record := &model.GPARecord{
		EnrollmentID:  enrollmentID,
		CoursesTaken:  len(results),
		CoursesPassed: passed,
		TotalPoints:   totalPoints,
		TotalCredits:  totalCredits,
	}
	if totalCredits > 0 {
		record.SemesterGPA = round2(totalPoints / float64(totalCredits))
	}
	if err := repo.SaveGPARecord(record); err != nil {
		return nil, false, err
	}
	return record, totalCredits == 0, nil
}

func (s *gpaService) ComputeCGPA(ctx context.Context, studentID uuid.UUID) (*model.CGPARecord, error) {
	var record *model.CGPARecord
	err := s.resultRepo.InTransaction(func(tx *gorm.DB) error {
		var err error
		record, err = computeCGPATx(s.resultRepo.WithTx(tx), studentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	invalidateCGPACache(ctx, studentID)
	return record, nil
}

// computeCGPATx folds the stored semester totals, not the rounded GPAs,
// so a semester's rounding error never compounds into the CGPA.
func computeCGPATx(repo repository.ResultRepository, studentID uuid.UUID) (*model.CGPARecord, error) {
	gpaRecords, err := repo.GetGPARecordsByStudent(studentID)
	if err != nil {
		return nil, err
	}

	var totalPoints float64
	var totalCredits, taken, passed int
	for _, g := range gpaRecords {
		totalPoints += g.TotalPoints
		totalCredits += g.TotalCredits
		taken += g.CoursesTaken
		passed += g.CoursesPassed
	}

	record := &model.CGPARecord{
		StudentID:          studentID,
		TotalCoursesTaken:  taken,
		TotalCoursesPassed: passed,
		TotalCreditsEarned: totalCredits,
		LastUpdated:        time.Now(),
	}
	if totalCredits > 0 {
		record.CumulativeGPA = round2(totalPoints / float64(totalCredits))
	}
	if err := repo.SaveCGPARecord(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *gpaService) RecomputeChainTx(tx *gorm.DB, enrollmentID uuid.UUID) error {
	rr := s.resultRepo.WithTx(tx)
	if _, _, err := computeGPATx(rr, enrollmentID); err != nil {
		return err
	}
	enrollment, err := rr.GetEnrollment(enrollmentID)
	if err != nil {
		return err
	}
	if _, err := computeCGPATx(rr, enrollment.StudentID); err != nil {
		return err
	}
	invalidateCGPACache(context.Background(), enrollment.StudentID)
	return nil
}

// invalidateCGPACache drops the transcript cache entry after a CGPA
// write. Best effort; a stale delete only shortens the cache hit.
func invalidateCGPACache(ctx context.Context, studentID uuid.UUID) {
	if cache.RedisClient == nil {
		return
	}
	if err := cache.RedisClient.Del(ctx, transcriptCacheKey(studentID)).Err(); err != nil {
		log.Printf("[CACHE] failed to invalidate transcript for student %s: %v", studentID, err)
	}
}

func transcriptCacheKey(studentID uuid.UUID) string {
	return "transcript:" + studentID.String()
}
