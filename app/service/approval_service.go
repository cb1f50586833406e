package service

import (
	"context"
	"log"
	"time"

	"university-results-backend/app/model"
	"university-results-backend/app/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalService drives an enrollment's results through the configured
// multi-stage approval pipeline: submit, per-stage approve/reject,
// correction round-trips and the final grade/GPA materialisation once
// every stage has approved.
type ApprovalService interface {
	// Submit opens a new submission for the enrollment and creates one
	// pending action per active approval stage.
	Submit(ctx context.Context, enrollmentID uuid.UUID, subType model.SubmissionType, actor model.Actor, notes string) (*model.Submission, error)

	// Approve records a stage approval. When it is the last outstanding
	// stage, grades are derived, results finalized, GPA/CGPA recomputed
	// and the enrollment's results locked, all in one transaction.
	Approve(ctx context.Context, actionID uuid.UUID, actor model.Actor, comments string) (*model.ApprovalAction, error)

	// Reject ends the submission; every result drops back to rejected
	// and a fresh submission is required to continue.
	Reject(ctx context.Context, actionID uuid.UUID, actor model.Actor, comments string) (*model.ApprovalAction, error)

	// RequestCorrection raises a correction on a pending stage without
	// deciding it. The stage cannot be approved until the correction is
	// completed.
	RequestCorrection(ctx context.Context, actionID uuid.UUID, actor model.Actor, reason, details string) (*model.CorrectionRequest, error)

	// CompleteCorrection resolves an open correction request. It does
	// not approve the stage; the stage owner still has to decide.
	CompleteCorrection(ctx context.Context, requestID uuid.UUID, actor model.Actor) (*model.CorrectionRequest, error)

	// PendingActions lists the actions waiting on the actor's role.
	PendingActions(ctx context.Context, universityID uuid.UUID, actor model.Actor) ([]model.ApprovalAction, error)

	// Trail returns the submission's actions with their relational
	// history rows, plus whatever the audit mirror holds.
	Trail(ctx context.Context, submissionID uuid.UUID) (*ApprovalTrail, error)
}

// ApprovalTrail bundles the relational and document-side views of one
// submission's progress. StageDecisions counts the mirrored workflow
// events per stage number.
type ApprovalTrail struct {
	Submission     *model.Submission       `json:"submission"`
	Actions        []model.ApprovalAction  `json:"actions"`
	History        []model.ApprovalHistory `json:"history"`
	AuditTrail     []model.ApprovalLog     `json:"auditTrail,omitempty"`
	StageDecisions map[int]int64           `json:"stageDecisions,omitempty"`
}

type approvalService struct {
	approvalRepo repository.ApprovalRepository
	resultRepo   repository.ResultRepository
	configRepo   repository.ConfigRepository
	auditRepo    repository.AuditRepository
	grading      GradingService
	gpa          GPAService
}

// NewApprovalService creates a new approvalService instance.
func NewApprovalService(
	approvalRepo repository.ApprovalRepository,
	resultRepo repository.ResultRepository,
	configRepo repository.ConfigRepository,
	auditRepo repository.AuditRepository,
	grading GradingService,
	gpa GPAService,
) ApprovalService {
	return &approvalService{
		approvalRepo: approvalRepo,
		resultRepo:   resultRepo,
		configRepo:   configRepo,
		auditRepo:    auditRepo,
		grading:      grading,
		gpa:          gpa,
	}
}

func (s *approvalService) Submit(ctx context.Context, enrollmentID uuid.UUID, subType model.SubmissionType, actor model.Actor, notes string) (*model.Submission, error) {
	if !subType.Valid() {
		return nil, model.ErrInvalidTransition
	}

	enrollment, err := s.resultRepo.GetEnrollment(enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := checkEnrollmentMutable(s.resultRepo, enrollmentID); err != nil {
		return nil, err
	}

	results, err := s.resultRepo.FindResultsByEnrollment(enrollmentID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, model.ErrIncompleteResult
	}
	for _, r := range results {
		if len(r.Components) == 0 {
			return nil, model.ErrIncompleteResult
		}
	}

	stages, err := s.configRepo.GetActiveStages(enrollment.Student.UniversityID)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return nil, model.ErrNoApprovalStages
	}

	submission := &model.Submission{
		EnrollmentID:   enrollmentID,
		SubmissionType: subType,
		SubmittedByID:  actor.ID,
		Notes:          notes,
	}
	for _, stage := range stages {
		submission.Actions = append(submission.Actions, model.ApprovalAction{
			ApprovalStageID: stage.ID,
			Status:          model.ApprovalPending,
		})
	}

	err = s.approvalRepo.InTransaction(func(tx *gorm.DB) error {
		rr := s.resultRepo.WithTx(tx)
		ar := s.approvalRepo.WithTx(tx)
		if err := rr.LockEnrollmentRow(enrollmentID); err != nil {
			return err
		}

		// The duplicate check must sit inside the critical section or
		// two concurrent submits both pass it.
		open, err := hasOpenSubmission(ar, enrollmentID)
		if err != nil {
			return err
		}
		if open {
			return model.ErrDuplicateSubmission
		}

		if err := ar.CreateSubmission(submission); err != nil {
			return err
		}
		return rr.UpdateStatusByEnrollment(enrollmentID, model.ResultPendingApproval)
	})
	if err != nil {
		return nil, err
	}

	s.logWorkflow(submission.ID, uuid.Nil, 0, actor, "submitted", notes)
	s.notifyRole(stages[0].RequiredRole, "approval_needed",
		"Results awaiting approval",
		"A result submission is waiting at stage "+stages[0].StageName+".",
		submission.ID.String())

	return submission, nil
}

// hasOpenSubmission reports whether the enrollment has a submission that
// is neither rejected nor fully approved.
func hasOpenSubmission(repo repository.ApprovalRepository, enrollmentID uuid.UUID) (bool, error) {
	submissions, err := repo.FindSubmissionsByEnrollment(enrollmentID)
	if err != nil {
		return false, err
	}
	for _, sub := range submissions {
		rejected := false
		pending := false
		for _, a := range sub.Actions {
			switch a.Status {
			case model.ApprovalRejected:
				rejected = true
			case model.ApprovalPending:
				pending = true
			}
		}
		if !rejected && pending {
			return true, nil
		}
	}
	return false, nil
}

func (s *approvalService) Approve(ctx context.Context, actionID uuid.UUID, actor model.Actor, comments string) (*model.ApprovalAction, error) {
	action, err := s.approvalRepo.FindActionByID(actionID)
	if err != nil {
		return nil, err
	}
	if action.Stage == nil || actor.Role != action.Stage.RequiredRole {
		return nil, model.ErrForbiddenRole
	}
	if action.Status != model.ApprovalPending {
		return nil, model.ErrInvalidTransition
	}

	enrollmentID := action.Submission.EnrollmentID
	enrollment, err := s.resultRepo.GetEnrollment(enrollmentID)
	if err != nil {
		return nil, err
	}

	// Config snapshot taken before the transaction; finalization uses
	// the scale and rule as of the moment of the deciding approval.
	scale, err := s.configRepo.GetActiveGradingScale(enrollment.Student.UniversityID)
	if err != nil {
		return nil, err
	}
	rule, err := s.configRepo.GetCreditRule(enrollment.Student.UniversityID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var finalized bool
	err = s.approvalRepo.InTransaction(func(tx *gorm.DB) error {
		rr := s.resultRepo.WithTx(tx)
		ar := s.approvalRepo.WithTx(tx)
		if err := rr.LockEnrollmentRow(enrollmentID); err != nil {
			return err
		}

		// The correction check must run under the row lock; a correction
		// raised between the pre-checks and the lock still blocks.
		openCorrections, err := ar.CountOpenCorrections(actionID)
		if err != nil {
			return err
		}
		if openCorrections > 0 {
			return model.ErrInvalidTransition
		}

		ok, err := ar.UpdateActionStatusCAS(actionID, model.ApprovalPending, model.ApprovalApproved, actor.ID, comments, now)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrConcurrentModification
		}
		if err := ar.AppendHistory(&model.ApprovalHistory{
			ApprovalActionID: actionID,
			PreviousStatus:   model.ApprovalPending,
			NewStatus:        model.ApprovalApproved,
			ChangedByID:      actor.ID,
			ChangeReason:     comments,
		}); err != nil {
			return err
		}

		done, err := allActionsApproved(ar, action.SubmissionID)
		if err != nil {
			return err
		}
		if !done {
			return nil
		}

		if err := checkEnrollmentMutable(rr, enrollmentID); err != nil {
			return err
		}
		if err := s.finalizeTx(tx, enrollmentID, scale, rule); err != nil {
			return err
		}
		finalized = true

		lock := &model.ResultLock{
			EnrollmentID: enrollmentID,
			IsLocked:     true,
			LockedByID:   &actor.ID,
			LockedAt:     &now,
			LockReason:   "results finalized",
		}
		return rr.SaveLock(lock)
	})
	if err != nil {
		return nil, err
	}

	s.logWorkflow(action.SubmissionID, actionID, action.Stage.StageNumber, actor, "approved", comments)
	if finalized {
		s.notifyUser(enrollment.Student.UserID.String(), "result_published",
			"Results approved",
			"Your semester results have completed approval.",
			enrollmentID.String())
	}

	return s.approvalRepo.FindActionByID(actionID)
}

// allActionsApproved reports whether every action of the submission has
// been approved (reads inside the caller's transaction).
func allActionsApproved(repo repository.ApprovalRepository, submissionID uuid.UUID) (bool, error) {
	actions, err := repo.FindActionsBySubmission(submissionID)
	if err != nil {
		return false, err
	}
	for _, a := range actions {
		if a.Status != model.ApprovalApproved {
			return false, nil
		}
	}
	return len(actions) > 0, nil
}

// finalizeTx derives grades for all of the enrollment's results, marks
// them approved and recomputes the GPA/CGPA chain. Runs inside the
// deciding approval's transaction under the enrollment row lock.
func (s *approvalService) finalizeTx(tx *gorm.DB, enrollmentID uuid.UUID, scale *model.GradingScale, rule *model.CreditRule) error {
	rr := s.resultRepo.WithTx(tx)
	results, err := rr.FindResultsByEnrollment(enrollmentID)
	if err != nil {
		return err
	}
	for i := range results {
		grade, err := s.grading.BuildGrade(&results[i], scale, rule)
		if err != nil {
			return err
		}
		if err := rr.SaveGrade(grade); err != nil {
			return err
		}
		results[i].Grade = grade
		if err := rr.UpdateResultStatus(results[i].ID, model.ResultApproved); err != nil {
			return err
		}
		results[i].Status = model.ResultApproved
	}
	return s.gpa.RecomputeChainTx(tx, enrollmentID)
}

func (s *approvalService) Reject(ctx context.Context, actionID uuid.UUID, actor model.Actor, comments string) (*model.ApprovalAction, error) {
	action, err := s.approvalRepo.FindActionByID(actionID)
	if err != nil {
		return nil, err
	}
	if action.Stage == nil || actor.Role != action.Stage.RequiredRole {
		return nil, model.ErrForbiddenRole
	}
	if !action.Stage.CanReject {
		return nil, model.ErrForbiddenRole
	}
	if action.Status != model.ApprovalPending {
		return nil, model.ErrInvalidTransition
	}

	enrollmentID := action.Submission.EnrollmentID
	now := time.Now()
	err = s.approvalRepo.InTransaction(func(tx *gorm.DB) error {
		rr := s.resultRepo.WithTx(tx)
		ar := s.approvalRepo.WithTx(tx)
		if err := rr.LockEnrollmentRow(enrollmentID); err != nil {
			return err
		}

		ok, err := ar.UpdateActionStatusCAS(actionID, model.ApprovalPending, model.ApprovalRejected, actor.ID, comments, now)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrConcurrentModification
		}
		if err := ar.AppendHistory(&model.ApprovalHistory{
			ApprovalActionID: actionID,
			PreviousStatus:   model.ApprovalPending,
			NewStatus:        model.ApprovalRejected,
			ChangedByID:      actor.ID,
			ChangeReason:     comments,
		}); err != nil {
			return err
		}
		return rr.UpdateStatusByEnrollment(enrollmentID, model.ResultRejected)
	})
	if err != nil {
		return nil, err
	}

	s.logWorkflow(action.SubmissionID, actionID, action.Stage.StageNumber, actor, "rejected", comments)
	s.notifyUser(action.Submission.SubmittedByID.String(), "submission_rejected",
		"Submission rejected",
		"The submission was rejected at stage "+action.Stage.StageName+".",
		action.SubmissionID.String())

	return s.approvalRepo.FindActionByID(actionID)
}

func (s *approvalService) RequestCorrection(ctx context.Context, actionID uuid.UUID, actor model.Actor, reason, details string) (*model.CorrectionRequest, error) {
	action, err := s.approvalRepo.FindActionByID(actionID)
	if err != nil {
		return nil, err
	}
	if action.Stage == nil || actor.Role != action.Stage.RequiredRole {
		return nil, model.ErrForbiddenRole
	}
	if !action.Stage.CanRequestCorrection {
		return nil, model.ErrForbiddenRole
	}
	if action.Status != model.ApprovalPending {
		return nil, model.ErrInvalidTransition
	}

	request := &model.CorrectionRequest{
		ApprovalActionID: actionID,
		RequestedByID:    actor.ID,
		Reason:           reason,
		Details:          details,
		Status:           model.CorrectionPending,
	}
	// The action status stays pending: a correction holds the stage
	// open, it is not a decision.
	err = s.approvalRepo.InTransaction(func(tx *gorm.DB) error {
		rr := s.resultRepo.WithTx(tx)
		if err := rr.LockEnrollmentRow(action.Submission.EnrollmentID); err != nil {
			return err
		}
		return s.approvalRepo.WithTx(tx).CreateCorrection(request)
	})
	if err != nil {
		return nil, err
	}

	s.logWorkflow(action.SubmissionID, actionID, action.Stage.StageNumber, actor, "correction_requested", reason)
	s.notifyUser(action.Submission.SubmittedByID.String(), "correction_requested",
		"Correction requested",
		reason,
		request.ID.String())

	return request, nil
}

func (s *approvalService) CompleteCorrection(ctx context.Context, requestID uuid.UUID, actor model.Actor) (*model.CorrectionRequest, error) {
	request, err := s.approvalRepo.FindCorrectionByID(requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != model.CorrectionPending && request.Status != model.CorrectionInProgress {
		return nil, model.ErrInvalidTransition
	}

	ok, err := s.approvalRepo.CompleteCorrectionCAS(requestID, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrConcurrentModification
	}

	action, err := s.approvalRepo.FindActionByID(request.ApprovalActionID)
	if err == nil && action.Stage != nil {
		s.logWorkflow(action.SubmissionID, action.ID, action.Stage.StageNumber, actor, "correction_completed", request.Reason)
	}

	return s.approvalRepo.FindCorrectionByID(requestID)
}

func (s *approvalService) PendingActions(ctx context.Context, universityID uuid.UUID, actor model.Actor) ([]model.ApprovalAction, error) {
	return s.approvalRepo.FindPendingActionsByRole(universityID, actor.Role)
}

func (s *approvalService) Trail(ctx context.Context, submissionID uuid.UUID) (*ApprovalTrail, error) {
	submission, err := s.approvalRepo.FindSubmissionByID(submissionID)
	if err != nil {
		return nil, err
	}
	actions, err := s.approvalRepo.FindActionsBySubmission(submissionID)
	if err != nil {
		return nil, err
	}

	trail := &ApprovalTrail{Submission: submission, Actions: actions}
	for _, a := range actions {
		history, err := s.approvalRepo.FindHistoryByAction(a.ID)
		if err != nil {
			return nil, err
		}
		trail.History = append(trail.History, history...)
	}

	// The document mirror is best effort; its absence never fails the
	// relational read.
	if s.auditRepo != nil {
		audit, err := s.auditRepo.GetApprovalTrail(ctx, submissionID.String())
		if err != nil {
			log.Printf("[AUDIT] failed to read approval trail for %s: %v", submissionID, err)
		} else {
			trail.AuditTrail = audit
		}

		counts, err := s.auditRepo.CountApprovalsByStage(ctx, submissionID.String())
		if err != nil {
			log.Printf("[AUDIT] failed to count stage decisions for %s: %v", submissionID, err)
		} else {
			trail.StageDecisions = counts
		}
	}
	return trail, nil
}

// logWorkflow mirrors one workflow event into MongoDB asynchronously.
func (s *approvalService) logWorkflow(submissionID, actionID uuid.UUID, stageNumber int, actor model.Actor, verb, comments string) {
	if s.auditRepo == nil {
		return
	}
	entry := &model.ApprovalLog{
		SubmissionID: submissionID.String(),
		StageNumber:  stageNumber,
		ActorID:      actor.ID.String(),
		ActorRole:    string(actor.Role),
		Action:       verb,
		Comments:     comments,
	}
	if actionID != uuid.Nil {
		entry.ActionID = actionID.String()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.auditRepo.LogApproval(ctx, entry); err != nil {
			log.Printf("[AUDIT] failed to log %s for submission %s: %v", verb, entry.SubmissionID, err)
		}
	}()
}

func (s *approvalService) notifyUser(userID, kind, title, message, relatedID string) {
	s.pushNotification(&model.Notification{
		UserID:          userID,
		Type:            kind,
		Title:           title,
		Message:         message,
		RelatedObjectID: relatedID,
	})
}

func (s *approvalService) notifyRole(role model.Role, kind, title, message, relatedID string) {
	s.pushNotification(&model.Notification{
		TargetRole:      string(role),
		Type:            kind,
		Title:           title,
		Message:         message,
		RelatedObjectID: relatedID,
	})
}

func (s *approvalService) pushNotification(n *model.Notification) {
	if s.auditRepo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.auditRepo.PushNotification(ctx, n); err != nil {
			log.Printf("[AUDIT] failed to push %s notification: %v", n.Type, err)
		}
	}()
}
