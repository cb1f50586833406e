package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"university-results-backend/app/model"
	"university-results-backend/app/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Adjacent bands may leave a float gap of at most this much (e.g.
// 49.99 to 50) and still count as covering the range.
const bandGapTolerance = 0.01

// GradingService resolves scores against a university's grading scale
// and aggregates weighted result components into a derived Grade.
type GradingService interface {
	// ValidateScale rejects scales whose bands overlap or leave part of
	// [MinScore, MaxScore] uncovered. Called before a scale is stored;
	// bad configuration surfaces here instead of at grading time.
	ValidateScale(scale *model.GradingScale) error

	// Resolve maps a score onto exactly one band of the scale.
	Resolve(score float64, scale *model.GradingScale) (grade string, point float64, err error)

	// Aggregate folds weighted components into a 0-100 total.
	Aggregate(components []model.ResultComponent) (float64, error)

	// BuildGrade derives the Grade for a result from a config snapshot.
	// Pure: it writes nothing.
	BuildGrade(result *model.Result, scale *model.GradingScale, rule *model.CreditRule) (*model.Grade, error)

	// RecomputeGrade aggregates the result's components and overwrites
	// its Grade. Refuses when the enrollment's results are locked.
	RecomputeGrade(ctx context.Context, resultID uuid.UUID) (*model.Grade, error)
}

type gradingService struct {
	resultRepo repository.ResultRepository
	configRepo repository.ConfigRepository
}

// NewGradingService creates a new gradingService instance.
func NewGradingService(resultRepo repository.ResultRepository, configRepo repository.ConfigRepository) GradingService {
	return &gradingService{resultRepo: resultRepo, configRepo: configRepo}
}

func (s *gradingService) ValidateScale(scale *model.GradingScale) error {
	if scale.MaxScore <= scale.MinScore {
		return fmt.Errorf("scale range [%v, %v] is empty: %w", scale.MinScore, scale.MaxScore, model.ErrBandGap)
	}
	if len(scale.Bands) == 0 {
		return model.ErrBandGap
	}

	bands := make([]model.GradeBand, len(scale.Bands))
	copy(bands, scale.Bands)
	sort.Slice(bands, func(i, j int) bool { return bands[i].MinScore < bands[j].MinScore })

	for i, b := range bands {
		if b.MaxScore < b.MinScore {
			return fmt.Errorf("band %s has inverted range: %w", b.Grade, model.ErrBandGap)
		}
		if i == 0 {
			continue
		}
		prev := bands[i-1]
		// Inclusive ranges: a shared boundary already matches twice.
		if b.MinScore <= prev.MaxScore {
			return fmt.Errorf("bands %s and %s overlap: %w", prev.Grade, b.Grade, model.ErrAmbiguousBand)
		}
		if b.MinScore-prev.MaxScore > bandGapTolerance {
			return fmt.Errorf("gap between bands %s and %s: %w", prev.Grade, b.Grade, model.ErrBandGap)
		}
	}

	if bands[0].MinScore-scale.MinScore > bandGapTolerance {
		return fmt.Errorf("bands start above scale minimum: %w", model.ErrBandGap)
	}
	if scale.MaxScore-bands[len(bands)-1].MaxScore > bandGapTolerance {
		return fmt.Errorf("bands end below scale maximum: %w", model.ErrBandGap)
	}
	return nil
}

func (s *gradingService) Resolve(score float64, scale *model.GradingScale) (string, float64, error) {
	if score < scale.MinScore || score > scale.MaxScore {
		return "", 0, model.ErrOutOfRange
	}

	var match *model.GradeBand
	for i := range scale.Bands {
		band := &scale.Bands[i]
		if score >= band.MinScore && score <= band.MaxScore {
			if match != nil {
				// Misconfigured overlapping bands: refuse rather than
				// silently picking the first hit.
				return "", 0, model.ErrAmbiguousBand
			}
			match = band
		}
	}
	if match == nil {
		return "", 0, model.ErrOutOfRange
	}
	return match.Grade, match.PointValue, nil
}

func (s *gradingService) Aggregate(components []model.ResultComponent) (float64, error) {
	if len(components) == 0 {
		return 0, model.ErrIncompleteResult
	}

	var weighted, totalWeight float64
	for _, c := range components {
		if c.MaxScore <= 0 {
			return 0, fmt.Errorf("component %s has non-positive max score: %w", c.ComponentType, model.ErrOutOfRange)
		}
		weighted += c.ScoreObtained / c.MaxScore * c.Weight
		totalWeight += c.Weight
	}
	if totalWeight == 0 {
		return 0, model.ErrNoWeightedComponents
	}

	return round2(weighted / totalWeight * 100), nil
}

func (s *gradingService) BuildGrade(result *model.Result, scale *model.GradingScale, rule *model.CreditRule) (*model.Grade, error) {
	total, err := s.Aggregate(result.Components)
	if err != nil {
		return nil, err
	}

	letter, point, err := s.Resolve(total, scale)
	if err != nil {
		return nil, err
	}

	return &model.Grade{
		ResultID:    result.ID,
		TotalScore:  total,
		LetterGrade: letter,
		GradePoint:  point,
		IsPass:      point >= rule.PassingGradePoint,
	}, nil
}

func (s *gradingService) RecomputeGrade(ctx context.Context, resultID uuid.UUID) (*model.Grade, error) {
	result, err := s.resultRepo.FindResultByID(resultID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.resultRepo.GetEnrollment(result.EnrollmentID)
	if err != nil {
		return nil, err
	}

	// Immutable config snapshot for the whole operation.
	scale, err := s.configRepo.GetActiveGradingScale(enrollment.Student.UniversityID)
	if err != nil {
		return nil, err
	}
	rule, err := s.configRepo.GetCreditRule(enrollment.Student.UniversityID)
	if err != nil {
		return nil, err
	}

	var grade *model.Grade
	err = s.resultRepo.InTransaction(func(tx *gorm.DB) error {
		rr := s.resultRepo.WithTx(tx)
		if err := rr.LockEnrollmentRow(result.EnrollmentID); err != nil {
			return err
		}
		if err := checkEnrollmentMutable(rr, result.EnrollmentID); err != nil {
			return err
		}

		// Re-read inside the critical section so the aggregate sees the
		// component set as of the lock.
		fresh, err := rr.FindResultByID(resultID)
		if err != nil {
			return err
		}
		grade, err = s.BuildGrade(fresh, scale, rule)
		if err != nil {
			return err
		}
		return rr.SaveGrade(grade)
	})
	if err != nil {
		return nil, err
	}
	return grade, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
