package routes

import (
	"net/http"

	"university-results-backend/app/service"
	"university-results-backend/middleware"
	"university-results-backend/utils"

	"github.com/gin-gonic/gin"
)

// StudentHandler serves the student-facing read side: transcripts and
// GPA/CGPA queries.
type StudentHandler struct {
	transcriptService service.TranscriptService
	gpaService        service.GPAService
}

// NewStudentHandler creates a new StudentHandler instance.
func NewStudentHandler(transcriptService service.TranscriptService, gpaService service.GPAService) *StudentHandler {
	return &StudentHandler{transcriptService: transcriptService, gpaService: gpaService}
}

// SetupStudentRoutes registers the student read endpoints.
func (h *StudentHandler) SetupStudentRoutes(r *gin.Engine) {
	students := r.Group("/api/v1/students")
	students.Use(middleware.AuthMiddleware())
	{
		students.GET("/:id/transcript", h.GetTranscript)
	}

	enrollments := r.Group("/api/v1/enrollments")
	enrollments.Use(middleware.AuthMiddleware())
	{
		enrollments.POST("/:id/gpa", h.ComputeGPA)
	}
}

// GetTranscript assembles the student's academic record. Students can
// only fetch their own.
func (h *StudentHandler) GetTranscript(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	transcript, err := h.transcriptService.GetStudentTranscript(ctx, id, actor)
	if err != nil {
		respondError(ctx, "Failed to load transcript", err)
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Transcript loaded", transcript))
}

// ComputeGPA recomputes the enrollment's GPA record on demand.
func (h *StudentHandler) ComputeGPA(ctx *gin.Context) {
	if _, ok := actorFrom(ctx); !ok {
		return
	}
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	record, noGraded, err := h.gpaService.ComputeGPA(ctx, id)
	if err != nil {
		respondError(ctx, "Failed to compute GPA", err)
		return
	}
	if noGraded {
		ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("No finalized results to average yet", record))
		return
	}

	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("GPA computed", record))
}
