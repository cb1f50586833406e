package repository

import (
	"university-results-backend/app/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConfigRepository loads the per-university configuration the grading
// and approval services run against. Callers fetch a snapshot at the
// start of an operation and never re-read it mid-flight, so an admin
// editing stages cannot change the shape of an in-progress submission.
type ConfigRepository interface {
	// GetActiveGradingScale returns the university's active scale with
	// its bands ordered by ascending min score.
	GetActiveGradingScale(universityID uuid.UUID) (*model.GradingScale, error)

	// GetCreditRule returns the university's credit rule (passing grade
	// point and GPA thresholds).
	GetCreditRule(universityID uuid.UUID) (*model.CreditRule, error)

	// GetActiveStages returns the university's active approval stages
	// ordered by stage number.
	GetActiveStages(universityID uuid.UUID) ([]model.ApprovalStage, error)

	// GetStageByID returns a single stage regardless of active flag
	// (in-flight actions keep referencing deactivated stages).
	GetStageByID(id uuid.UUID) (*model.ApprovalStage, error)

	CreateGradingScale(scale *model.GradingScale) error
	CreateStage(stage *model.ApprovalStage) error
	SaveCreditRule(rule *model.CreditRule) error
}

type configRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new configRepository instance.
func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{db: db}
}

func (r *configRepository) GetActiveGradingScale(universityID uuid.UUID) (*model.GradingScale, error) {
	var scale model.GradingScale
	err := r.db.
		Preload("Bands", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_score ASC")
		}).
		Where("university_id = ? AND is_active = true", universityID).
		First(&scale).Error
	if err != nil {
		return nil, err
	}
	return &scale, nil
}

func (r *configRepository) GetCreditRule(universityID uuid.UUID) (*model.CreditRule, error) {
	var rule model.CreditRule
	err := r.db.Where("university_id = ?", universityID).First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *configRepository) GetActiveStages(universityID uuid.UUID) ([]model.ApprovalStage, error) {
	var stages []model.ApprovalStage
	err := r.db.
		Where("university_id = ? AND is_active = true", universityID).
		Order("stage_number ASC").
		Find(&stages).Error
	return stages, err
}

func (r *configRepository) GetStageByID(id uuid.UUID) (*model.ApprovalStage, error) {
	var stage model.ApprovalStage
	if err := r.db.Where("id = ?", id).First(&stage).Error; err != nil {
		return nil, err
	}
	return &stage, nil
}

// CreateGradingScale stores the scale together with its bands in one
// transaction; a scale without its full band set never becomes visible.
func (r *configRepository) CreateGradingScale(scale *model.GradingScale) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if scale.IsActive {
			// Only one active scale per university.
			if err := tx.Model(&model.GradingScale{}).
				Where("university_id = ?", scale.UniversityID).
				Update("is_active", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(scale).Error
	})
}

func (r *configRepository) CreateStage(stage *model.ApprovalStage) error {
	return r.db.Create(stage).Error
}

func (r *configRepository) SaveCreditRule(rule *model.CreditRule) error {
	return r.db.Save(rule).Error
}
