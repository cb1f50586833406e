package routes

import (
	"errors"
	"net/http"

	"university-results-backend/app/model"
	"university-results-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// respondError translates a domain error into the HTTP envelope. The
// service layer only returns sentinel errors; everything unknown is a
// plain 500.
func respondError(ctx *gin.Context, message string, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrForbiddenRole):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrDuplicateSubmission),
		errors.Is(err, model.ErrLockedResult),
		errors.Is(err, model.ErrConcurrentModification):
		status = http.StatusConflict
	case errors.Is(err, model.ErrOutOfRange),
		errors.Is(err, model.ErrAmbiguousBand),
		errors.Is(err, model.ErrNoWeightedComponents),
		errors.Is(err, model.ErrBandGap),
		errors.Is(err, model.ErrNoApprovalStages),
		errors.Is(err, model.ErrInvalidStageConfig),
		errors.Is(err, model.ErrIncompleteResult):
		status = http.StatusUnprocessableEntity
	}

	ctx.JSON(status, utils.BuildResponseFailed(message, err.Error(), nil))
}

// actorFrom reads the Actor the auth middleware stored on the context.
func actorFrom(ctx *gin.Context) (model.Actor, bool) {
	value, ok := ctx.Get("actor")
	if !ok {
		ctx.JSON(http.StatusUnauthorized,
			utils.BuildResponseFailed("Authorization token required", "missing_identity", nil))
		return model.Actor{}, false
	}
	return value.(model.Actor), true
}

// parseUUIDParam parses a path parameter as a UUID, answering 400 on
// failure.
func parseUUIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	parsed, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest,
			utils.BuildResponseFailed("Invalid "+name, err.Error(), nil))
		return uuid.Nil, false
	}
	return parsed, true
}
