package model

import "errors"

// Domain errors raised by the grading, GPA and approval services.
// Handlers map these onto HTTP statuses; nothing in the service layer
// ever inspects error strings.

// Configuration errors: bad setup data, surfaced to the configuring
// actor instead of being silently defaulted.
var (
	ErrOutOfRange           = errors.New("score falls outside the grading scale range")
	ErrAmbiguousBand        = errors.New("score matches more than one grade band")
	ErrNoWeightedComponents = errors.New("result components carry zero total weight")
	ErrBandGap              = errors.New("grade bands do not cover the full scale range")
	ErrNoApprovalStages     = errors.New("no active approval stages configured for university")
	ErrInvalidStageConfig   = errors.New("approval stage must allow rejection or correction request")
)

// State errors: the caller attempted an operation inconsistent with the
// current entity state. The prior state is always left untouched.
var (
	ErrInvalidTransition      = errors.New("operation is not valid for the current status")
	ErrDuplicateSubmission    = errors.New("an unresolved submission already exists for this enrollment")
	ErrLockedResult           = errors.New("results for this enrollment are locked")
	ErrConcurrentModification = errors.New("record was modified by a concurrent operation")
)

// Authorization errors: rejected before any state mutation.
var ErrForbiddenRole = errors.New("actor role is not permitted to perform this action")

// Incompleteness errors.
var ErrIncompleteResult = errors.New("result has no components to aggregate")
