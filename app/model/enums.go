package model

// Role is the closed set of actor roles recognised by the approval
// workflow. Stage requirements reference these values directly; there is
// no free-form role matching anywhere in the system.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleRegistrar      Role = "registrar"
	RoleDepartmentHead Role = "department_head"
	RoleLecturer       Role = "lecturer"
	RoleStudent        Role = "student"
	RoleClerk          Role = "clerk"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleRegistrar, RoleDepartmentHead, RoleLecturer, RoleStudent, RoleClerk:
		return true
	}
	return false
}

// Elevated reports whether r may lock/unlock results and toggle the
// semester release gate.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleRegistrar
}

// ResultStatus tracks a result through its lifecycle.
type ResultStatus string

const (
	ResultDraft           ResultStatus = "draft"
	ResultSubmitted       ResultStatus = "submitted"
	ResultPendingApproval ResultStatus = "pending_approval"
	ResultApproved        ResultStatus = "approved"
	ResultRejected        ResultStatus = "rejected"
	ResultReleased        ResultStatus = "released"
)

// Finalized reports whether the result's grade counts towards GPA.
func (s ResultStatus) Finalized() bool {
	return s == ResultApproved || s == ResultReleased
}

// ApprovalStatus is the per-stage decision state.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// CorrectionStatus tracks a correction request raised against a stage.
type CorrectionStatus string

const (
	CorrectionPending    CorrectionStatus = "pending"
	CorrectionInProgress CorrectionStatus = "in_progress"
	CorrectionCompleted  CorrectionStatus = "completed"
	CorrectionRejected   CorrectionStatus = "rejected"
)

// SubmissionType distinguishes first submissions from re-runs.
type SubmissionType string

const (
	SubmissionInitial      SubmissionType = "initial"
	SubmissionResubmission SubmissionType = "resubmission"
	SubmissionCorrection   SubmissionType = "correction"
)

// Valid reports whether t is a known submission type.
func (t SubmissionType) Valid() bool {
	return t == SubmissionInitial || t == SubmissionResubmission || t == SubmissionCorrection
}

// ComponentKind is the kind of a result component. Kinds are unique
// within a result: a result can carry at most one "final", one
// "midterm", and so on.
type ComponentKind string

const (
	ComponentAssignment    ComponentKind = "assignment"
	ComponentMidterm       ComponentKind = "midterm"
	ComponentFinal         ComponentKind = "final"
	ComponentPractical     ComponentKind = "practical"
	ComponentProject       ComponentKind = "project"
	ComponentParticipation ComponentKind = "participation"
)

// Valid reports whether k is a known component kind.
func (k ComponentKind) Valid() bool {
	switch k {
	case ComponentAssignment, ComponentMidterm, ComponentFinal,
		ComponentPractical, ComponentProject, ComponentParticipation:
		return true
	}
	return false
}

// ScaleType is the presentation style of a grading scale.
type ScaleType string

const (
	ScaleLetter     ScaleType = "letter"
	ScaleNumeric    ScaleType = "numeric"
	ScalePercentage ScaleType = "percentage"
)
