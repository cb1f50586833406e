package repository

import (
	"time"

	"university-results-backend/app/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalRepository is the persistence contract for the approval
// workflow: submissions, per-stage actions, the append-only history and
// correction requests.
//
// Status transitions use compare-and-swap updates: the write carries the
// expected prior status in its WHERE clause and reports whether a row
// was actually hit, so two concurrent decisions on the same action can
// never both apply.
type ApprovalRepository interface {
	InTransaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ApprovalRepository

	// CreateSubmission stores the submission and its eagerly-created
	// actions in one write.
	CreateSubmission(submission *model.Submission) error
	FindSubmissionByID(id uuid.UUID) (*model.Submission, error)
	// FindSubmissionsByEnrollment returns all submissions for the
	// enrollment with their actions preloaded, newest first.
	FindSubmissionsByEnrollment(enrollmentID uuid.UUID) ([]model.Submission, error)

	FindActionByID(id uuid.UUID) (*model.ApprovalAction, error)
	FindActionsBySubmission(submissionID uuid.UUID) ([]model.ApprovalAction, error)
	FindPendingActionsByRole(universityID uuid.UUID, role model.Role) ([]model.ApprovalAction, error)

	// UpdateActionStatusCAS transitions the action from expected to
	// next. It returns false (and no error) when the action no longer
	// holds the expected status, which callers surface as a concurrent
	// modification.
	UpdateActionStatusCAS(actionID uuid.UUID, expected, next model.ApprovalStatus, decidedBy uuid.UUID, comments string, at time.Time) (bool, error)

	// AppendHistory adds one immutable history row. Nothing ever
	// updates or deletes rows in this table.
	AppendHistory(entry *model.ApprovalHistory) error
	FindHistoryByAction(actionID uuid.UUID) ([]model.ApprovalHistory, error)

	CreateCorrection(request *model.CorrectionRequest) error
	FindCorrectionByID(id uuid.UUID) (*model.CorrectionRequest, error)
	// CountOpenCorrections counts pending or in-progress corrections on
	// the action; an approve is blocked while this is non-zero.
	CountOpenCorrections(actionID uuid.UUID) (int64, error)
	// CompleteCorrectionCAS marks the request completed if it is still
	// pending or in progress; returns false when it was already
	// resolved.
	CompleteCorrectionCAS(requestID uuid.UUID, at time.Time) (bool, error)
}

type approvalRepository struct {
	db *gorm.DB
}

// NewApprovalRepository creates a new approvalRepository instance.
func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) InTransaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *approvalRepository) WithTx(tx *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: tx}
}

func (r *approvalRepository) CreateSubmission(submission *model.Submission) error {
	return r.db.Create(submission).Error
}

func (r *approvalRepository) FindSubmissionByID(id uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.
		Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Actions.Stage").
		Where("id = ?", id).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *approvalRepository) FindSubmissionsByEnrollment(enrollmentID uuid.UUID) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.
		Preload("Actions").
		Preload("Actions.Stage").
		Where("enrollment_id = ?", enrollmentID).
		Order("submission_date DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *approvalRepository) FindActionByID(id uuid.UUID) (*model.ApprovalAction, error) {
	var action model.ApprovalAction
	err := r.db.
		Preload("Stage").
		Preload("Submission").
		Where("id = ?", id).
		First(&action).Error
	if err != nil {
		return nil, err
	}
	return &action, nil
}

func (r *approvalRepository) FindActionsBySubmission(submissionID uuid.UUID) ([]model.ApprovalAction, error) {
	var actions []model.ApprovalAction
	err := r.db.
		Preload("Stage").
		Joins("JOIN approval_stages ON approval_stages.id = approval_actions.approval_stage_id").
		Where("approval_actions.submission_id = ?", submissionID).
		Order("approval_stages.stage_number ASC").
		Find(&actions).Error
	return actions, err
}

func (r *approvalRepository) FindPendingActionsByRole(universityID uuid.UUID, role model.Role) ([]model.ApprovalAction, error) {
	var actions []model.ApprovalAction
	err := r.db.
		Preload("Stage").
		Preload("Submission").
		Joins("JOIN approval_stages ON approval_stages.id = approval_actions.approval_stage_id").
		Where("approval_actions.status = ?", model.ApprovalPending).
		Where("approval_stages.university_id = ? AND approval_stages.required_role = ?", universityID, role).
		Order("approval_stages.stage_number ASC").
		Find(&actions).Error
	return actions, err
}

func (r *approvalRepository) UpdateActionStatusCAS(actionID uuid.UUID, expected, next model.ApprovalStatus, decidedBy uuid.UUID, comments string, at time.Time) (bool, error) {
	res := r.db.Model(&model.ApprovalAction{}).
		Where("id = ? AND status = ?", actionID, expected).
		Updates(map[string]interface{}{
			"status":        next,
			"decided_by_id": decidedBy,
			"comments":      comments,
			"action_date":   at,
			"updated_at":    at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *approvalRepository) AppendHistory(entry *model.ApprovalHistory) error {
	return r.db.Create(entry).Error
}

func (r *approvalRepository) FindHistoryByAction(actionID uuid.UUID) ([]model.ApprovalHistory, error) {
	var history []model.ApprovalHistory
	err := r.db.
		Where("approval_action_id = ?", actionID).
		Order("created_at ASC").
		Find(&history).Error
	return history, err
}

func (r *approvalRepository) CreateCorrection(request *model.CorrectionRequest) error {
	return r.db.Create(request).Error
}

func (r *approvalRepository) FindCorrectionByID(id uuid.UUID) (*model.CorrectionRequest, error) {
	var request model.CorrectionRequest
	if err := r.db.Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *approvalRepository) CountOpenCorrections(actionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.CorrectionRequest{}).
		Where("approval_action_id = ? AND status IN ?", actionID,
			[]model.CorrectionStatus{model.CorrectionPending, model.CorrectionInProgress}).
		Count(&count).Error
	return count, err
}

func (r *approvalRepository) CompleteCorrectionCAS(requestID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.Model(&model.CorrectionRequest{}).
		Where("id = ? AND status IN ?", requestID,
			[]model.CorrectionStatus{model.CorrectionPending, model.CorrectionInProgress}).
		Updates(map[string]interface{}{
			"status":         model.CorrectionCompleted,
			"completed_date": at,
			"updated_at":     at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
