package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"university-results-backend/app/model"
	"university-results-backend/app/repository"
	"university-results-backend/cache"

	"github.com/google/uuid"
)

const transcriptCacheTTL = 10 * time.Minute

// TranscriptService assembles the student-facing academic record. Per
// semester it shows only the results the release gate allows; the GPA
// history and CGPA are cached in Redis since they only change on
// finalization.
type TranscriptService interface {
	GetStudentTranscript(ctx context.Context, studentID uuid.UUID, actor model.Actor) (*Transcript, error)
}

// Transcript is the assembled academic record for one student.
type Transcript struct {
	Student   *model.StudentProfile `json:"student"`
	Semesters []TranscriptSemester  `json:"semesters"`
	CGPA      *model.CGPARecord     `json:"cgpa,omitempty"`
}

// TranscriptSemester is one semester's slice of the transcript. Results
// is empty until the semester is released.
type TranscriptSemester struct {
	Semester *model.Semester  `json:"semester"`
	Released bool             `json:"released"`
	Results  []model.Result   `json:"results,omitempty"`
	GPA      *model.GPARecord `json:"gpa,omitempty"`
}

// cachedAggregates is the Redis-side slice of the transcript: the parts
// that only change when an approval finalizes.
type cachedAggregates struct {
	GPAHistory []model.GPARecord `json:"gpaHistory"`
	CGPA       *model.CGPARecord `json:"cgpa,omitempty"`
}

type transcriptService struct {
	resultRepo repository.ResultRepository
	userRepo   repository.UserRepository
	release    ReleaseService
}

// NewTranscriptService creates a new transcriptService instance.
func NewTranscriptService(resultRepo repository.ResultRepository, userRepo repository.UserRepository, release ReleaseService) TranscriptService {
	return &transcriptService{resultRepo: resultRepo, userRepo: userRepo, release: release}
}

func (s *transcriptService) GetStudentTranscript(ctx context.Context, studentID uuid.UUID, actor model.Actor) (*Transcript, error) {
	student, err := s.userRepo.FindStudentByID(studentID)
	if err != nil {
		return nil, err
	}
	// Students see their own record only; staff roles see any.
	if actor.Role == model.RoleStudent && student.UserID != actor.ID {
		return nil, model.ErrForbiddenRole
	}

	aggregates := s.loadAggregates(ctx, studentID)

	enrollments, err := s.resultRepo.GetEnrollmentsByStudent(studentID)
	if err != nil {
		return nil, err
	}

	transcript := &Transcript{Student: student, CGPA: aggregates.CGPA}
	gpaByEnrollment := make(map[uuid.UUID]*model.GPARecord, len(aggregates.GPAHistory))
	for i := range aggregates.GPAHistory {
		gpaByEnrollment[aggregates.GPAHistory[i].EnrollmentID] = &aggregates.GPAHistory[i]
	}

	for _, enrollment := range enrollments {
		semester := TranscriptSemester{
			Semester: enrollment.Semester,
			GPA:      gpaByEnrollment[enrollment.ID],
		}

		// Visibility is read per request, never cached: withdrawing a
		// release must take effect immediately.
		release, err := s.release.GetRelease(ctx, enrollment.SemesterID)
		if err != nil {
			return nil, err
		}
		semester.Released = release != nil && release.CanViewResults

		if semester.Released {
			results, err := s.resultRepo.FindResultsByEnrollment(enrollment.ID)
			if err != nil {
				return nil, err
			}
			for _, r := range results {
				if r.Status.Finalized() {
					semester.Results = append(semester.Results, r)
				}
			}
		}
		transcript.Semesters = append(transcript.Semesters, semester)
	}
	return transcript, nil
}

// loadAggregates reads the GPA history and CGPA through the Redis
// cache. Cache failures fall back to the database silently.
func (s *transcriptService) loadAggregates(ctx context.Context, studentID uuid.UUID) cachedAggregates {
	key := transcriptCacheKey(studentID)
	if cache.RedisClient != nil {
		if raw, err := cache.RedisClient.Get(ctx, key).Bytes(); err == nil {
			var aggregates cachedAggregates
			if err := json.Unmarshal(raw, &aggregates); err == nil {
				return aggregates
			}
		}
	}

	var aggregates cachedAggregates
	history, err := s.resultRepo.GetGPARecordsByStudent(studentID)
	if err != nil {
		log.Printf("[TRANSCRIPT] failed to load GPA history for %s: %v", studentID, err)
		return aggregates
	}
	aggregates.GPAHistory = history

	cgpa, err := s.resultRepo.GetCGPARecord(studentID)
	if err == nil {
		aggregates.CGPA = cgpa
	}

	if cache.RedisClient != nil {
		if raw, err := json.Marshal(aggregates); err == nil {
			if err := cache.RedisClient.Set(ctx, key, raw, transcriptCacheTTL).Err(); err != nil {
				log.Printf("[CACHE] failed to store transcript for %s: %v", studentID, err)
			}
		}
	}
	return aggregates
}
