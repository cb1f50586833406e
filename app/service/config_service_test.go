package service

import (
	"context"
	"testing"

	"university-results-backend/app/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConfigService(t *testing.T) {
	admin := model.Actor{ID: uuid.New(), Role: model.RoleAdmin}
	lecturer := model.Actor{ID: uuid.New(), Role: model.RoleLecturer}

	newSvc := func() (ConfigService, *fakeConfigRepo) {
		config := &fakeConfigRepo{}
		grading := NewGradingService(newFakeResultRepo(), config)
		return NewConfigService(config, grading), config
	}

	t.Run("stores a valid scale", func(t *testing.T) {
		svc, config := newSvc()
		scale := letterScale()
		assert.NoError(t, svc.CreateGradingScale(context.Background(), scale, admin))
		assert.Equal(t, scale, config.scale)
	})

	t.Run("rejects a broken scale before storage", func(t *testing.T) {
		svc, config := newSvc()
		scale := letterScale()
		scale.Bands[2].MinScore = 55 // overlaps D

		err := svc.CreateGradingScale(context.Background(), scale, admin)
		assert.ErrorIs(t, err, model.ErrAmbiguousBand)
		assert.Nil(t, config.scale)
	})

	t.Run("configuration is elevated-only", func(t *testing.T) {
		svc, _ := newSvc()
		err := svc.CreateGradingScale(context.Background(), letterScale(), lecturer)
		assert.ErrorIs(t, err, model.ErrForbiddenRole)

		err = svc.CreateStage(context.Background(), &model.ApprovalStage{}, lecturer)
		assert.ErrorIs(t, err, model.ErrForbiddenRole)
	})

	t.Run("a stage must keep at least one negative outcome", func(t *testing.T) {
		svc, _ := newSvc()
		stage := &model.ApprovalStage{
			StageNumber:          1,
			StageName:            "Dead End",
			RequiredRole:         model.RoleRegistrar,
			CanReject:            false,
			CanRequestCorrection: false,
		}
		err := svc.CreateStage(context.Background(), stage, admin)
		assert.ErrorIs(t, err, model.ErrInvalidStageConfig)
	})

	t.Run("students cannot be a stage's required role", func(t *testing.T) {
		svc, _ := newSvc()
		stage := &model.ApprovalStage{
			StageNumber:  1,
			StageName:    "Self Review",
			RequiredRole: model.RoleStudent,
			CanReject:    true,
		}
		err := svc.CreateStage(context.Background(), stage, admin)
		assert.ErrorIs(t, err, model.ErrInvalidStageConfig)
	})

	t.Run("accepts a well-formed stage", func(t *testing.T) {
		svc, config := newSvc()
		stage := &model.ApprovalStage{
			StageNumber:          1,
			StageName:            "Department Review",
			RequiredRole:         model.RoleDepartmentHead,
			CanReject:            true,
			CanRequestCorrection: true,
			IsActive:             true,
		}
		assert.NoError(t, svc.CreateStage(context.Background(), stage, admin))
		assert.Len(t, config.stages, 1)
	})
}
