package routes

import (
	"net/http"

	"university-results-backend/app/model"
	"university-results-backend/app/service"
	"university-results-backend/middleware"
	"university-results-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ResultHandler serves score entry and grade recomputation.
type ResultHandler struct {
	resultService  service.ResultService
	gradingService service.GradingService
}

// NewResultHandler creates a new ResultHandler instance.
func NewResultHandler(resultService service.ResultService, gradingService service.GradingService) *ResultHandler {
	return &ResultHandler{resultService: resultService, gradingService: gradingService}
}

// SetupResultRoutes registers the result endpoints. All of them require
// authentication.
func (h *ResultHandler) SetupResultRoutes(r *gin.Engine) {
	group := r.Group("/api/v1/results")
	group.Use(middleware.AuthMiddleware())
	{
		group.POST("/", h.CreateDraft)
		group.GET("/:id", h.GetResult)
		group.PUT("/:id/components", h.UpsertComponent)
		group.POST("/:id/recompute", h.RecomputeGrade)
	}

	enrollments := r.Group("/api/v1/enrollments")
	enrollments.Use(middleware.AuthMiddleware())
	{
		enrollments.GET("/:id/results", h.ListByEnrollment)
	}
}

// CreateDraft opens a draft result for one enrolled course.
func (h *ResultHandler) CreateDraft(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var input struct {
		EnrollmentID uuid.UUID `json:"enrollmentId" binding:"required"`
		CourseID     uuid.UUID `json:"courseId" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Invalid input", err.Error(), nil))
		return
	}

	result, err := h.resultService.CreateDraft(ctx, input.EnrollmentID, input.CourseID, actor)
	if err != nil {
		respondError(ctx, "Failed to create result", err)
		return
	}

	ctx.JSON(http.StatusCreated, utils.BuildResponseSuccess("Result created", result))
}

// GetResult returns one result with its components and grade.
func (h *ResultHandler) GetResult(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	result, err := h.resultService.GetResult(ctx, id)
	if err != nil {
		respondError(ctx, "Failed to load result", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Result loaded", result))
}

// UpsertComponent writes one weighted score entry on the result.
func (h *ResultHandler) UpsertComponent(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var input struct {
		ComponentType string  `json:"componentType" binding:"required,componentkind"`
		MaxScore      float64 `json:"maxScore" binding:"required,gt=0"`
		ScoreObtained float64 `json:"scoreObtained" binding:"gte=0"`
		Weight        float64 `json:"weight" binding:"gte=0"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Invalid input", err.Error(), nil))
		return
	}

	component := model.ResultComponent{
		ComponentType: model.ComponentKind(input.ComponentType),
		MaxScore:      input.MaxScore,
		ScoreObtained: input.ScoreObtained,
		Weight:        input.Weight,
	}

	result, err := h.resultService.UpsertComponent(ctx, id, component, actor)
	if err != nil {
		respondError(ctx, "Failed to save component", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Component saved", result))
}

// RecomputeGrade re-aggregates the result's components into its grade.
func (h *ResultHandler) RecomputeGrade(ctx *gin.Context) {
	if _, ok := actorFrom(ctx); !ok {
		return
	}
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	grade, err := h.gradingService.RecomputeGrade(ctx, id)
	if err != nil {
		respondError(ctx, "Failed to recompute grade", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Grade recomputed", grade))
}

// ListByEnrollment returns all of an enrollment's results.
func (h *ResultHandler) ListByEnrollment(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	results, err := h.resultService.ListByEnrollment(ctx, id)
	if err != nil {
		respondError(ctx, "Failed to load results", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Results loaded", results))
}
