package service

import (
	"context"
	"testing"

	"university-results-backend/app/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// addGradedResult stores one approved result with its grade attached.
func addGradedResult(repo *fakeResultRepo, enrollmentID uuid.UUID, credits int, point float64, pass bool) {
	resultID := uuid.New()
	repo.results[resultID] = &model.Result{
		ID:           resultID,
		EnrollmentID: enrollmentID,
		Status:       model.ResultApproved,
		Course:       &model.Course{ID: uuid.New(), CreditUnits: credits},
	}
	repo.grades[resultID] = &model.Grade{
		ResultID:   resultID,
		GradePoint: point,
		IsPass:     pass,
	}
}

func TestComputeGPA(t *testing.T) {
	studentID := uuid.New()

	newEnrollment := func(repo *fakeResultRepo) uuid.UUID {
		enrollmentID := uuid.New()
		repo.enrollments[enrollmentID] = &model.StudentEnrollment{
			ID:        enrollmentID,
			StudentID: studentID,
			Student:   &model.StudentProfile{ID: studentID},
		}
		return enrollmentID
	}

	t.Run("weights grade points by course credits", func(t *testing.T) {
		repo := newFakeResultRepo()
		enrollmentID := newEnrollment(repo)
		addGradedResult(repo, enrollmentID, 3, 4.0, true)
		addGradedResult(repo, enrollmentID, 2, 3.0, true)
		addGradedResult(repo, enrollmentID, 2, 3.0, true)

		svc := NewGPAService(repo)
		record, noGraded, err := svc.ComputeGPA(context.Background(), enrollmentID)
		assert.NoError(t, err)
		assert.False(t, noGraded)
		// (3*4.0 + 2*3.0 + 2*3.0) / 7 = 24/7
		assert.InDelta(t, 3.43, record.SemesterGPA, 0.001)
		assert.Equal(t, 3, record.CoursesTaken)
		assert.Equal(t, 3, record.CoursesPassed)
		assert.Equal(t, 7, record.TotalCredits)
	})

	t.Run("keeps non-finalized results out of the average", func(t *testing.T) {
		repo := newFakeResultRepo()
		enrollmentID := newEnrollment(repo)
		addGradedResult(repo, enrollmentID, 3, 4.0, true)

		draftID := uuid.New()
		repo.results[draftID] = &model.Result{
			ID:           draftID,
			EnrollmentID: enrollmentID,
			Status:       model.ResultDraft,
			Course:       &model.Course{ID: uuid.New(), CreditUnits: 3},
		}
		repo.grades[draftID] = &model.Grade{ResultID: draftID, GradePoint: 0.0}

		svc := NewGPAService(repo)
		record, noGraded, err := svc.ComputeGPA(context.Background(), enrollmentID)
		assert.NoError(t, err)
		assert.False(t, noGraded)
		// The draft counts as taken but contributes no credits or points.
		assert.Equal(t, 2, record.CoursesTaken)
		assert.Equal(t, 1, record.CoursesPassed)
		assert.Equal(t, 3, record.TotalCredits)
		assert.InDelta(t, 4.0, record.SemesterGPA, 0.001)
	})

	t.Run("counts failed courses in the average", func(t *testing.T) {
		repo := newFakeResultRepo()
		enrollmentID := newEnrollment(repo)
		addGradedResult(repo, enrollmentID, 3, 4.0, true)
		addGradedResult(repo, enrollmentID, 3, 0.0, false)

		svc := NewGPAService(repo)
		record, _, err := svc.ComputeGPA(context.Background(), enrollmentID)
		assert.NoError(t, err)
		assert.Equal(t, 2, record.CoursesTaken)
		assert.Equal(t, 1, record.CoursesPassed)
		assert.InDelta(t, 2.0, record.SemesterGPA, 0.001)
	})

	t.Run("stores a zero record for an empty semester", func(t *testing.T) {
		repo := newFakeResultRepo()
		enrollmentID := newEnrollment(repo)

		svc := NewGPAService(repo)
		record, noGraded, err := svc.ComputeGPA(context.Background(), enrollmentID)
		assert.NoError(t, err)
		assert.True(t, noGraded)
		assert.NotNil(t, record)
		assert.Zero(t, record.SemesterGPA)
		assert.Zero(t, record.CoursesTaken)
		assert.NotNil(t, repo.gpaRecords[enrollmentID])
	})

	t.Run("repeated runs over unchanged grades produce an identical record", func(t *testing.T) {
		repo := newFakeResultRepo()
		enrollmentID := newEnrollment(repo)
		addGradedResult(repo, enrollmentID, 3, 4.0, true)
		addGradedResult(repo, enrollmentID, 4, 3.0, true)

		svc := NewGPAService(repo)
		first, _, err := svc.ComputeGPA(context.Background(), enrollmentID)
		assert.NoError(t, err)
		second, _, err := svc.ComputeGPA(context.Background(), enrollmentID)
		assert.NoError(t, err)

		assert.Equal(t, first.SemesterGPA, second.SemesterGPA)
		assert.Equal(t, first.CoursesTaken, second.CoursesTaken)
		assert.Equal(t, first.CoursesPassed, second.CoursesPassed)
		assert.Equal(t, first.TotalPoints, second.TotalPoints)
		assert.Equal(t, first.TotalCredits, second.TotalCredits)
	})

	t.Run("refuses while the enrollment is locked", func(t *testing.T) {
		repo := newFakeResultRepo()
		enrollmentID := newEnrollment(repo)
		repo.locks[enrollmentID] = &model.ResultLock{EnrollmentID: enrollmentID, IsLocked: true}

		svc := NewGPAService(repo)
		_, _, err := svc.ComputeGPA(context.Background(), enrollmentID)
		assert.ErrorIs(t, err, model.ErrLockedResult)
	})
}

func TestComputeCGPA(t *testing.T) {
	t.Run("folds semester totals rather than rounded averages", func(t *testing.T) {
		repo := newFakeResultRepo()
		studentID := uuid.New()

		first := uuid.New()
		second := uuid.New()
		repo.enrollments[first] = &model.StudentEnrollment{ID: first, StudentID: studentID}
		repo.enrollments[second] = &model.StudentEnrollment{ID: second, StudentID: studentID}

		repo.gpaRecords[first] = &model.GPARecord{
			EnrollmentID: first,
			SemesterGPA:  3.43,
			TotalPoints:  24, TotalCredits: 7,
			CoursesTaken: 3, CoursesPassed: 3,
		}
		repo.gpaRecords[second] = &model.GPARecord{
			EnrollmentID: second,
			SemesterGPA:  3.0,
			TotalPoints:  18, TotalCredits: 6,
			CoursesTaken: 2, CoursesPassed: 2,
		}

		svc := NewGPAService(repo)
		record, err := svc.ComputeCGPA(context.Background(), studentID)
		assert.NoError(t, err)
		// (24 + 18) / (7 + 6) = 42/13
		assert.InDelta(t, 3.23, record.CumulativeGPA, 0.005)
		assert.Equal(t, 5, record.TotalCoursesTaken)
		assert.Equal(t, 5, record.TotalCoursesPassed)
		assert.Equal(t, 13, record.TotalCreditsEarned)
	})

	t.Run("stores a zero record for a student with no GPA history", func(t *testing.T) {
		repo := newFakeResultRepo()
		studentID := uuid.New()

		svc := NewGPAService(repo)
		record, err := svc.ComputeCGPA(context.Background(), studentID)
		assert.NoError(t, err)
		assert.Zero(t, record.CumulativeGPA)
		assert.Zero(t, record.TotalCreditsEarned)
	})
}
