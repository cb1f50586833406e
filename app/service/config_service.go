package service

import (
	"context"

	"university-results-backend/app/model"
	"university-results-backend/app/repository"

	"github.com/google/uuid"
)

// ConfigService manages per-university academic configuration: grading
// scales, approval stages and credit rules. All validation happens here
// at configuration time so the runtime services can trust what they
// load.
type ConfigService interface {
	CreateGradingScale(ctx context.Context, scale *model.GradingScale, actor model.Actor) error
	GetActiveGradingScale(ctx context.Context, universityID uuid.UUID) (*model.GradingScale, error)

	CreateStage(ctx context.Context, stage *model.ApprovalStage, actor model.Actor) error
	GetActiveStages(ctx context.Context, universityID uuid.UUID) ([]model.ApprovalStage, error)

	SaveCreditRule(ctx context.Context, rule *model.CreditRule, actor model.Actor) error
	GetCreditRule(ctx context.Context, universityID uuid.UUID) (*model.CreditRule, error)
}

type configService struct {
	configRepo repository.ConfigRepository
	grading    GradingService
}

// NewConfigService creates a new configService instance.
func NewConfigService(configRepo repository.ConfigRepository, grading GradingService) ConfigService {
	return &configService{configRepo: configRepo, grading: grading}
}

func (s *configService) CreateGradingScale(ctx context.Context, scale *model.GradingScale, actor model.Actor) error {
	if !actor.Role.Elevated() {
		return model.ErrForbiddenRole
	}
	if err := s.grading.ValidateScale(scale); err != nil {
		return err
	}
	return s.configRepo.CreateGradingScale(scale)
}

func (s *configService) GetActiveGradingScale(ctx context.Context, universityID uuid.UUID) (*model.GradingScale, error) {
	return s.configRepo.GetActiveGradingScale(universityID)
}

func (s *configService) CreateStage(ctx context.Context, stage *model.ApprovalStage, actor model.Actor) error {
	if !actor.Role.Elevated() {
		return model.ErrForbiddenRole
	}
	if !stage.RequiredRole.Valid() || stage.RequiredRole == model.RoleStudent {
		return model.ErrInvalidStageConfig
	}
	// A stage that can neither reject nor bounce back for correction is
	// a dead end: once reached, a bad submission could never leave it.
	if !stage.CanReject && !stage.CanRequestCorrection {
		return model.ErrInvalidStageConfig
	}
	if stage.StageNumber < 1 {
		return model.ErrInvalidStageConfig
	}
	return s.configRepo.CreateStage(stage)
}

func (s *configService) GetActiveStages(ctx context.Context, universityID uuid.UUID) ([]model.ApprovalStage, error) {
	return s.configRepo.GetActiveStages(universityID)
}

func (s *configService) SaveCreditRule(ctx context.Context, rule *model.CreditRule, actor model.Actor) error {
	if !actor.Role.Elevated() {
		return model.ErrForbiddenRole
	}
	if rule.PassingGradePoint < 0 {
		return model.ErrInvalidStageConfig
	}
	return s.configRepo.SaveCreditRule(rule)
}

func (s *configService) GetCreditRule(ctx context.Context, universityID uuid.UUID) (*model.CreditRule, error) {
	return s.configRepo.GetCreditRule(universityID)
}
