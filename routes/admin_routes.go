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

// AdminHandler serves the elevated operations: result locks, the
// semester release gate and academic configuration.
type AdminHandler struct {
	lockService    service.LockService
	releaseService service.ReleaseService
	configService  service.ConfigService
}

// NewAdminHandler creates a new AdminHandler instance.
func NewAdminHandler(lockService service.LockService, releaseService service.ReleaseService, configService service.ConfigService) *AdminHandler {
	return &AdminHandler{
		lockService:    lockService,
		releaseService: releaseService,
		configService:  configService,
	}
}

// SetupAdminRoutes registers the admin endpoints. Role checks beyond
// admin/registrar happen in the services.
func (h *AdminHandler) SetupAdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(model.RoleAdmin, model.RoleRegistrar))
	{
		admin.POST("/enrollments/:id/lock", h.Lock)
		admin.POST("/enrollments/:id/unlock", h.Unlock)
		admin.GET("/enrollments/:id/lock", h.GetLock)

		admin.PUT("/semesters/:id/release", h.SetRelease)
		admin.GET("/semesters/:id/release", h.GetRelease)

		admin.POST("/config/grading-scales", h.CreateGradingScale)
		admin.POST("/config/stages", h.CreateStage)
		admin.PUT("/config/credit-rules", h.SaveCreditRule)
	}

	// Reads are open to any authenticated caller.
	config := r.Group("/api/v1/config")
	config.Use(middleware.AuthMiddleware())
	{
		config.GET("/grading-scales/:universityId", h.GetGradingScale)
		config.GET("/stages/:universityId", h.GetStages)
		config.GET("/credit-rules/:universityId", h.GetCreditRule)
	}
}

// Lock freezes all result mutation for the enrollment.
func (h *AdminHandler) Lock(ctx *gin.Context) {
	h.toggleLock(ctx, true)
}

// Unlock lifts the freeze.
func (h *AdminHandler) Unlock(ctx *gin.Context) {
	h.toggleLock(ctx, false)
}

func (h *AdminHandler) toggleLock(ctx *gin.Context, lock bool) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&input); err != nil {
			ctx.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Invalid input", err.Error(), nil))
			return
		}
	}

	var result *model.ResultLock
	var err error
	if lock {
		result, err = h.lockService.Lock(ctx, id, actor, input.Reason)
	} else {
		result, err = h.lockService.Unlock(ctx, id, actor, input.Reason)
	}
	if err != nil {
		respondError(ctx, "Failed to update lock", err)
		return
	}

	message := "Results locked"
	if !lock {
		message = "Results unlocked"
	}
	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess(message, result))
}

// GetLock returns the enrollment's lock state.
func (h *AdminHandler) GetLock(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	lock, err := h.lockService.GetLock(ctx, id)
	if err != nil {
		respondError(ctx, "Failed to load lock", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Lock loaded", lock))
}

// SetRelease flips the semester's result visibility switch.
func (h *AdminHandler) SetRelease(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var input struct {
		CanViewResults *bool `json:"canViewResults" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Invalid input", err.Error(), nil))
		return
	}

	release, err := h.releaseService.SetRelease(ctx, id, *input.CanViewResults, actor)
	if err != nil {
		respondError(ctx, "Failed to update release", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Release updated", release))
}

// GetRelease returns the semester's release state.
func (h *AdminHandler) GetRelease(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	release, err := h.releaseService.GetRelease(ctx, id)
	if err != nil {
		respondError(ctx, "Failed to load release", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Release loaded", release))
}

// CreateGradingScale stores a validated grading scale with its bands.
func (h *AdminHandler) CreateGradingScale(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var input struct {
		UniversityID uuid.UUID `json:"universityId" binding:"required"`
		Name         string    `json:"name" binding:"required"`
		ScaleType    string    `json:"scaleType" binding:"required"`
		MinScore     float64   `json:"minScore"`
		MaxScore     float64   `json:"maxScore" binding:"required"`
		IsActive     bool      `json:"isActive"`
		Bands        []struct {
			Grade      string  `json:"grade" binding:"required"`
			MinScore   float64 `json:"minScore"`
			MaxScore   float64 `json:"maxScore" binding:"required"`
			PointValue float64 `json:"pointValue"`
		} `json:"bands" binding:"required,min=1,dive"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Invalid input", err.Error(), nil))
		return
	}

	scale := model.GradingScale{
		UniversityID: input.UniversityID,
		Name:         input.Name,
		ScaleType:    model.ScaleType(input.ScaleType),
		MinScore:     input.MinScore,
		MaxScore:     input.MaxScore,
		IsActive:     input.IsActive,
	}
	for _, b := range input.Bands {
		scale.Bands = append(scale.Bands, model.GradeBand{
			Grade:      b.Grade,
			MinScore:   b.MinScore,
			MaxScore:   b.MaxScore,
			PointValue: b.PointValue,
		})
	}

	if err := h.configService.CreateGradingScale(ctx, &scale, actor); err != nil {
		respondError(ctx, "Failed to create grading scale", err)
		return
	}

	ctx.JSON(http.StatusCreated, utils.BuildResponseSuccess("Grading scale created", scale))
}

// GetGradingScale returns the university's active scale.
func (h *AdminHandler) GetGradingScale(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "universityId")
	if !ok {
		return
	}

	scale, err := h.configService.GetActiveGradingScale(ctx, id)
	if err != nil {
		respondError(ctx, "Failed to load grading scale", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Grading scale loaded", scale))
}

// CreateStage adds one approval stage to a university's pipeline.
func (h *AdminHandler) CreateStage(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var input struct {
		UniversityID         uuid.UUID `json:"universityId" binding:"required"`
		StageNumber          int       `json:"stageNumber" binding:"required,min=1"`
		StageName            string    `json:"stageName" binding:"required"`
		Description          string    `json:"description"`
		RequiredRole         string    `json:"requiredRole" binding:"required,rolename"`
		CanReject            *bool     `json:"canReject"`
		CanRequestCorrection *bool     `json:"canRequestCorrection"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Invalid input", err.Error(), nil))
		return
	}

	stage := model.ApprovalStage{
		UniversityID:         input.UniversityID,
		StageNumber:          input.StageNumber,
		StageName:            input.StageName,
		Description:          input.Description,
		RequiredRole:         model.Role(input.RequiredRole),
		CanReject:            true,
		CanRequestCorrection: true,
		IsActive:             true,
	}
	if input.CanReject != nil {
		stage.CanReject = *input.CanReject
	}
	if input.CanRequestCorrection != nil {
		stage.CanRequestCorrection = *input.CanRequestCorrection
	}

	if err := h.configService.CreateStage(ctx, &stage, actor); err != nil {
		respondError(ctx, "Failed to create approval stage", err)
		return
	}

	ctx.JSON(http.StatusCreated, utils.BuildResponseSuccess("Approval stage created", stage))
}

// GetStages returns the university's active stages in order.
func (h *AdminHandler) GetStages(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "universityId")
	if !ok {
		return
	}

	stages, err := h.configService.GetActiveStages(ctx, id)
	if err != nil {
		respondError(ctx, "Failed to load approval stages", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Approval stages loaded", stages))
}

// SaveCreditRule stores or replaces the university's credit rule.
func (h *AdminHandler) SaveCreditRule(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var input struct {
		UniversityID          uuid.UUID `json:"universityId" binding:"required"`
		Name                  string    `json:"name" binding:"required"`
		PassingGradePoint     float64   `json:"passingGradePoint" binding:"gte=0"`
		MinGPAForGraduation   float64   `json:"minGpaForGraduation" binding:"gte=0"`
		MinGPAForGoodStanding float64   `json:"minGpaForGoodStanding" binding:"gte=0"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Invalid input", err.Error(), nil))
		return
	}

	rule := model.CreditRule{
		UniversityID:          input.UniversityID,
		Name:                  input.Name,
		PassingGradePoint:     input.PassingGradePoint,
		MinGPAForGraduation:   input.MinGPAForGraduation,
		MinGPAForGoodStanding: input.MinGPAForGoodStanding,
	}

	if err := h.configService.SaveCreditRule(ctx, &rule, actor); err != nil {
		respondError(ctx, "Failed to save credit rule", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Credit rule saved", rule))
}

// GetCreditRule returns the university's credit rule.
func (h *AdminHandler) GetCreditRule(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "universityId")
	if !ok {
		return
	}

	rule, err := h.configService.GetCreditRule(ctx, id)
	if err != nil {
		respondError(ctx, "Failed to load credit rule", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Credit rule loaded", rule))
}
