package service

import (
	"context"
	"testing"

	"university-results-backend/app/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users    map[uuid.UUID]*model.User
	students map[uuid.UUID]*model.StudentProfile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[uuid.UUID]*model.User),
		students: make(map[uuid.UUID]*model.StudentProfile),
	}
}

func (f *fakeUserRepo) Create(user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindStudentByID(id uuid.UUID) (*model.StudentProfile, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (f *fakeUserRepo) FindStudentByUserID(userID uuid.UUID) (*model.StudentProfile, error) {
	for _, student := range f.students {
		if student.UserID == userID {
			return student, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func TestGetStudentTranscript(t *testing.T) {
	admin := model.Actor{ID: uuid.New(), Role: model.RoleAdmin}

	setup := func() (*fakeResultRepo, *fakeUserRepo, uuid.UUID, uuid.UUID, uuid.UUID) {
		resultRepo := newFakeResultRepo()
		userRepo := newFakeUserRepo()

		studentID := uuid.New()
		ownerUserID := uuid.New()
		userRepo.students[studentID] = &model.StudentProfile{ID: studentID, UserID: ownerUserID}

		semesterID := uuid.New()
		enrollmentID := uuid.New()
		resultRepo.enrollments[enrollmentID] = &model.StudentEnrollment{
			ID:         enrollmentID,
			StudentID:  studentID,
			SemesterID: semesterID,
			Semester:   &model.Semester{ID: semesterID, Name: "First Semester"},
		}
		addGradedResult(resultRepo, enrollmentID, 3, 4.0, true)

		return resultRepo, userRepo, studentID, ownerUserID, semesterID
	}

	newSvc := func(resultRepo *fakeResultRepo, userRepo *fakeUserRepo) TranscriptService {
		release := NewReleaseService(resultRepo, nil)
		return NewTranscriptService(resultRepo, userRepo, release)
	}

	t.Run("hides results until the semester is released", func(t *testing.T) {
		resultRepo, userRepo, studentID, _, _ := setup()
		svc := newSvc(resultRepo, userRepo)

		transcript, err := svc.GetStudentTranscript(context.Background(), studentID, admin)
		assert.NoError(t, err)
		assert.Len(t, transcript.Semesters, 1)
		assert.False(t, transcript.Semesters[0].Released)
		assert.Empty(t, transcript.Semesters[0].Results)
	})

	t.Run("shows finalized results after release", func(t *testing.T) {
		resultRepo, userRepo, studentID, _, semesterID := setup()
		resultRepo.releases[semesterID] = &model.ResultRelease{SemesterID: semesterID, CanViewResults: true}
		svc := newSvc(resultRepo, userRepo)

		transcript, err := svc.GetStudentTranscript(context.Background(), studentID, admin)
		assert.NoError(t, err)
		assert.True(t, transcript.Semesters[0].Released)
		assert.Len(t, transcript.Semesters[0].Results, 1)
	})

	t.Run("a student can only read their own transcript", func(t *testing.T) {
		resultRepo, userRepo, studentID, ownerUserID, _ := setup()
		svc := newSvc(resultRepo, userRepo)

		owner := model.Actor{ID: ownerUserID, Role: model.RoleStudent}
		_, err := svc.GetStudentTranscript(context.Background(), studentID, owner)
		assert.NoError(t, err)

		stranger := model.Actor{ID: uuid.New(), Role: model.RoleStudent}
		_, err = svc.GetStudentTranscript(context.Background(), studentID, stranger)
		assert.ErrorIs(t, err, model.ErrForbiddenRole)
	})

	t.Run("carries the GPA history and CGPA", func(t *testing.T) {
		resultRepo, userRepo, studentID, _, _ := setup()
		for enrollmentID := range resultRepo.enrollments {
			resultRepo.gpaRecords[enrollmentID] = &model.GPARecord{
				EnrollmentID: enrollmentID,
				SemesterGPA:  4.0,
			}
		}
		resultRepo.cgpaRecords[studentID] = &model.CGPARecord{StudentID: studentID, CumulativeGPA: 4.0}
		svc := newSvc(resultRepo, userRepo)

		transcript, err := svc.GetStudentTranscript(context.Background(), studentID, admin)
		assert.NoError(t, err)
		assert.NotNil(t, transcript.CGPA)
		assert.NotNil(t, transcript.Semesters[0].GPA)
		assert.InDelta(t, 4.0, transcript.Semesters[0].GPA.SemesterGPA, 0.001)
	})
}
