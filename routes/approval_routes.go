package routes

import (
	"context"
	"net/http"

	"university-results-backend/app/model"
	"university-results-backend/app/service"
	"university-results-backend/middleware"
	"university-results-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ApprovalHandler serves the approval workflow: submissions, per-stage
// decisions, correction round-trips and the audit trail.
type ApprovalHandler struct {
	approvalService service.ApprovalService
}

// NewApprovalHandler creates a new ApprovalHandler instance.
func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

// SetupApprovalRoutes registers the workflow endpoints.
func (h *ApprovalHandler) SetupApprovalRoutes(r *gin.Engine) {
	group := r.Group("/api/v1/approvals")
	group.Use(middleware.AuthMiddleware())
	{
		group.POST("/submissions", h.Submit)
		group.GET("/submissions/:id/trail", h.Trail)
		group.POST("/actions/:id/approve", h.Approve)
		group.POST("/actions/:id/reject", h.Reject)
		group.POST("/actions/:id/corrections", h.RequestCorrection)
		group.POST("/corrections/:id/complete", h.CompleteCorrection)
		group.GET("/pending", h.Pending)
	}
}

// Submit opens a submission for an enrollment's results.
func (h *ApprovalHandler) Submit(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var input struct {
		EnrollmentID   uuid.UUID `json:"enrollmentId" binding:"required"`
		SubmissionType string    `json:"submissionType" binding:"required,submissiontype"`
		Notes          string    `json:"notes"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Invalid input", err.Error(), nil))
		return
	}

	submission, err := h.approvalService.Submit(ctx, input.EnrollmentID,
		model.SubmissionType(input.SubmissionType), actor, input.Notes)
	if err != nil {
		respondError(ctx, "Failed to submit results", err)
		return
	}

	ctx.JSON(http.StatusCreated, utils.BuildResponseSuccess("Results submitted", submission))
}

// Approve records a stage approval.
func (h *ApprovalHandler) Approve(ctx *gin.Context) {
	h.decide(ctx, h.approvalService.Approve, "Stage approved", "Failed to approve")
}

// Reject records a stage rejection.
func (h *ApprovalHandler) Reject(ctx *gin.Context) {
	h.decide(ctx, h.approvalService.Reject, "Stage rejected", "Failed to reject")
}

// decide is the shared shape of approve and reject: parse the action ID
// and an optional comment, run the decision, answer with the action.
func (h *ApprovalHandler) decide(
	ctx *gin.Context,
	decision func(ctx context.Context, actionID uuid.UUID, actor model.Actor, comments string) (*model.ApprovalAction, error),
	okMessage, failMessage string,
) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var input struct {
		Comments string `json:"comments"`
	}
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&input); err != nil {
			ctx.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Invalid input", err.Error(), nil))
			return
		}
	}

	action, err := decision(ctx, id, actor, input.Comments)
	if err != nil {
		respondError(ctx, failMessage, err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess(okMessage, action))
}

// RequestCorrection raises a correction request on a pending stage.
func (h *ApprovalHandler) RequestCorrection(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var input struct {
		Reason  string `json:"reason" binding:"required"`
		Details string `json:"details"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Invalid input", err.Error(), nil))
		return
	}

	request, err := h.approvalService.RequestCorrection(ctx, id, actor, input.Reason, input.Details)
	if err != nil {
		respondError(ctx, "Failed to request correction", err)
		return
	}

	ctx.JSON(http.StatusCreated, utils.BuildResponseSuccess("Correction requested", request))
}

// CompleteCorrection resolves an open correction request.
func (h *ApprovalHandler) CompleteCorrection(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	request, err := h.approvalService.CompleteCorrection(ctx, id, actor)
	if err != nil {
		respondError(ctx, "Failed to complete correction", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Correction completed", request))
}

// Pending lists the actions waiting on the caller's role.
func (h *ApprovalHandler) Pending(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	universityID, err := uuid.Parse(ctx.Query("universityId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Invalid universityId", err.Error(), nil))
		return
	}

	actions, err := h.approvalService.PendingActions(ctx, universityID, actor)
	if err != nil {
		respondError(ctx, "Failed to load pending actions", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Pending actions loaded", actions))
}

// Trail returns the full progress view of one submission.
func (h *ApprovalHandler) Trail(ctx *gin.Context) {
	if _, ok := actorFrom(ctx); !ok {
		return
	}
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	trail, err := h.approvalService.Trail(ctx, id)
	if err != nil {
		respondError(ctx, "Failed to load approval trail", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Approval trail loaded", trail))
}
