package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a system account. Role is a closed enumeration; per-stage
// requirements in the approval workflow compare against it directly.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	Email        string    `gorm:"unique;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"not null" json:"fullName"`
	Role         Role      `gorm:"type:varchar(30);not null;check:role IN ('admin','registrar','department_head','lecturer','student','clerk')" json:"role"`
	IsActive     bool      `gorm:"default:true" json:"isActive"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Actor is the identity attached to every workflow operation. It is not
// persisted; handlers build it from the JWT claims.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

// University owns grading scales, approval stages and credit rules.
type University struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"unique;not null" json:"name"`
	Code         string    `gorm:"type:varchar(10);unique;not null" json:"code"`
	Abbreviation string    `gorm:"type:varchar(20)" json:"abbreviation"`
	Country      string    `gorm:"type:varchar(100)" json:"country"`
	City         string    `gorm:"type:varchar(100)" json:"city"`
	IsActive     bool      `gorm:"default:true" json:"isActive"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Semester is the release-gate unit: one ResultRelease row per semester.
type Semester struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UniversityID uuid.UUID `gorm:"type:uuid;not null;index" json:"universityId"`
	AcademicYear string    `gorm:"type:varchar(9);not null" json:"academicYear"` // e.g. "2025/2026"
	Name         string    `gorm:"type:varchar(50);not null" json:"name"`
	Number       int       `gorm:"not null" json:"number"` // 1, 2, 3 (summer)
	IsCurrent    bool      `gorm:"default:false" json:"isCurrent"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Program is an academic degree programme. Consumed read-only.
type Program struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UniversityID uuid.UUID `gorm:"type:uuid;not null;index" json:"universityId"`
	Name         string    `gorm:"not null" json:"name"`
	Code         string    `gorm:"type:varchar(20);not null" json:"code"`
	TotalCredits int       `json:"totalCredits"`
	IsActive     bool      `gorm:"default:true" json:"isActive"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// Course carries the credit units the GPA engine weights by.
type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProgramID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_program_course" json:"programId"`
	Code        string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_program_course" json:"code"`
	Name        string    `gorm:"not null" json:"name"`
	CreditUnits int       `gorm:"not null" json:"creditUnits"`
	Level       int       `json:"level"` // 100, 200, ...
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// StudentProfile links a user account to its academic identity.
type StudentProfile struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StudentID    string    `gorm:"type:varchar(20);unique;not null;column:student_id" json:"studentId"`
	UniversityID uuid.UUID `gorm:"type:uuid;not null;index" json:"universityId"`
	ProgramID    uuid.UUID `gorm:"type:uuid;index" json:"programId"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// StudentEnrollment is one student registered for one semester. GPA is
// computed per enrollment; the result lock hangs off it too.
type StudentEnrollment struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StudentID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_student_semester" json:"studentId"`
	Student      *StudentProfile  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	ProgramID    uuid.UUID        `gorm:"type:uuid;not null" json:"programId"`
	SemesterID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_student_semester" json:"semesterId"`
	Semester     *Semester        `gorm:"foreignKey:SemesterID" json:"semester,omitempty"`
	TotalCredits int              `gorm:"default:0" json:"totalCredits"`
	IsRegistered bool             `gorm:"default:false" json:"isRegistered"`
	Courses      []EnrolledCourse `gorm:"foreignKey:EnrollmentID" json:"courses,omitempty"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

// EnrolledCourse links an enrollment to a catalog course.
type EnrolledCourse struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EnrollmentID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_course" json:"enrollmentId"`
	CourseID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_course" json:"courseId"`
	Course        *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	IsRetake      bool      `gorm:"default:false" json:"isRetake"`
	PreviousGrade *string   `gorm:"type:varchar(10)" json:"previousGrade,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// GradingScale maps numeric scores onto letter grades and points through
// its ordered bands. Bands must not overlap and must jointly cover
// [MinScore, MaxScore]; the grading service validates this before a
// scale is accepted.
type GradingScale struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UniversityID uuid.UUID   `gorm:"type:uuid;not null;index" json:"universityId"`
	Name         string      `gorm:"not null" json:"name"`
	ScaleType    ScaleType   `gorm:"type:varchar(20);not null;check:scale_type IN ('letter','numeric','percentage')" json:"scaleType"`
	MinScore     float64     `gorm:"not null" json:"minScore"`
	MaxScore     float64     `gorm:"not null" json:"maxScore"`
	IsActive     bool        `gorm:"default:true" json:"isActive"`
	Bands        []GradeBand `gorm:"foreignKey:GradingScaleID" json:"bands,omitempty"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
}

// GradeBand is one inclusive score range on a grading scale.
type GradeBand struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GradingScaleID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_scale_grade" json:"gradingScaleId"`
	Grade          string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_scale_grade" json:"grade"`
	MinScore       float64   `gorm:"not null" json:"minScore"`
	MaxScore       float64   `gorm:"not null" json:"maxScore"`
	PointValue     float64   `gorm:"not null" json:"pointValue"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// CreditRule holds per-university academic thresholds. The aggregator
// reads PassingGradePoint to set the pass flag on grades.
type CreditRule struct {
	ID                    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UniversityID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"universityId"`
	Name                  string    `gorm:"not null" json:"name"`
	PassingGradePoint     float64   `gorm:"not null;default:1.0" json:"passingGradePoint"`
	MinGPAForGraduation   float64   `gorm:"default:2.0" json:"minGpaForGraduation"`
	MinGPAForGoodStanding float64   `gorm:"default:2.0" json:"minGpaForGoodStanding"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Result is the scoring record for one student in one course.
type Result struct {
	ID             uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EnrollmentID   uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_result" json:"enrollmentId"`
	CourseID       uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_result" json:"courseId"`
	Course         *Course           `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Status         ResultStatus      `gorm:"type:varchar(20);not null;default:'draft';check:status IN ('draft','submitted','pending_approval','approved','rejected','released')" json:"status"`
	SubmittedByID  *uuid.UUID        `gorm:"type:uuid" json:"submittedById,omitempty"`
	SubmissionDate *time.Time        `json:"submissionDate,omitempty"`
	Components     []ResultComponent `gorm:"foreignKey:ResultID" json:"components,omitempty"`
	Grade          *Grade            `gorm:"foreignKey:ResultID" json:"grade,omitempty"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ResultComponent is one weighted score entry (assignment, final, ...).
type ResultComponent struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ResultID      uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_result_kind" json:"resultId"`
	ComponentType ComponentKind `gorm:"type:varchar(50);not null;uniqueIndex:idx_result_kind" json:"componentType"`
	MaxScore      float64       `gorm:"not null" json:"maxScore"`
	ScoreObtained float64       `gorm:"not null" json:"scoreObtained"`
	Weight        float64       `gorm:"not null;default:1.0" json:"weight"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Grade is derived by the aggregator; users never write it directly. It
// is overwritten, not appended, on recomputation while unlocked.
type Grade struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ResultID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"resultId"`
	TotalScore  float64   `gorm:"not null" json:"totalScore"`
	LetterGrade string    `gorm:"type:varchar(10);not null" json:"letterGrade"`
	GradePoint  float64   `gorm:"not null" json:"gradePoint"`
	IsPass      bool      `gorm:"not null" json:"isPass"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// GPARecord is the per-enrollment (student + semester) GPA snapshot.
type GPARecord struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EnrollmentID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"enrollmentId"`
	SemesterGPA   float64   `gorm:"not null" json:"semesterGpa"`
	CoursesTaken  int       `gorm:"not null" json:"coursesTaken"`
	CoursesPassed int       `gorm:"not null" json:"coursesPassed"`
	TotalPoints   float64   `gorm:"not null" json:"totalPoints"`
	TotalCredits  int       `gorm:"not null" json:"totalCredits"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// CGPARecord is the cumulative fold over all of a student's GPARecords.
type CGPARecord struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StudentID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"studentId"`
	CumulativeGPA      float64   `gorm:"not null" json:"cumulativeGpa"`
	TotalCoursesTaken  int       `gorm:"not null" json:"totalCoursesTaken"`
	TotalCoursesPassed int       `gorm:"not null" json:"totalCoursesPassed"`
	TotalCreditsEarned int       `gorm:"not null" json:"totalCreditsEarned"`
	LastUpdated        time.Time `gorm:"autoUpdateTime" json:"lastUpdated"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// ResultLock freezes all result mutation for one enrollment, regardless
// of workflow status.
type ResultLock struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EnrollmentID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"enrollmentId"`
	IsLocked     bool       `gorm:"not null;default:false" json:"isLocked"`
	LockedByID   *uuid.UUID `gorm:"type:uuid" json:"lockedById,omitempty"`
	LockedAt     *time.Time `json:"lockedAt,omitempty"`
	LockReason   string     `json:"lockReason,omitempty"`
	UnlockedByID *uuid.UUID `gorm:"type:uuid" json:"unlockedById,omitempty"`
	UnlockedAt   *time.Time `json:"unlockedAt,omitempty"`
	UnlockReason string     `json:"unlockReason,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ResultRelease is the per-semester visibility switch. It gates what
// students can see; it never drives computation or result status.
type ResultRelease struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SemesterID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"semesterId"`
	CanViewResults bool       `gorm:"not null;default:false" json:"canViewResults"`
	ReleasedByID   *uuid.UUID `gorm:"type:uuid" json:"releasedById,omitempty"`
	ReleasedDate   *time.Time `json:"releasedDate,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Submission is one attempt to move an enrollment's results through the
// approval pipeline. Its ApprovalActions are created eagerly, one per
// active stage, at submission time.
type Submission struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EnrollmentID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"enrollmentId"`
	SubmissionType SubmissionType   `gorm:"type:varchar(20);not null;check:submission_type IN ('initial','resubmission','correction')" json:"submissionType"`
	SubmittedByID  uuid.UUID        `gorm:"type:uuid;not null" json:"submittedById"`
	SubmissionDate time.Time        `gorm:"autoCreateTime" json:"submissionDate"`
	Notes          string           `json:"notes,omitempty"`
	Actions        []ApprovalAction `gorm:"foreignKey:SubmissionID" json:"actions,omitempty"`
}

// ApprovalStage is one configured, role-gated step in a university's
// approval pipeline. Editing a stage never alters actions already
// created for in-flight submissions.
type ApprovalStage struct {
	ID                   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UniversityID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_university_stage" json:"universityId"`
	StageNumber          int       `gorm:"not null;uniqueIndex:idx_university_stage" json:"stageNumber"`
	StageName            string    `gorm:"not null" json:"stageName"`
	Description          string    `json:"description,omitempty"`
	RequiredRole         Role      `gorm:"type:varchar(30);not null" json:"requiredRole"`
	CanReject            bool      `gorm:"default:true" json:"canReject"`
	CanRequestCorrection bool      `gorm:"default:true" json:"canRequestCorrection"`
	IsActive             bool      `gorm:"default:true" json:"isActive"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ApprovalAction records one stage's decision for one submission.
type ApprovalAction struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SubmissionID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_submission_stage" json:"submissionId"`
	Submission      *Submission    `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
	ApprovalStageID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_submission_stage" json:"approvalStageId"`
	Stage           *ApprovalStage `gorm:"foreignKey:ApprovalStageID" json:"stage,omitempty"`
	AssignedToID    *uuid.UUID     `gorm:"type:uuid" json:"assignedToId,omitempty"`
	Status          ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';check:status IN ('pending','approved','rejected')" json:"status"`
	DecidedByID     *uuid.UUID     `gorm:"type:uuid" json:"decidedById,omitempty"`
	ActionDate      *time.Time     `json:"actionDate,omitempty"`
	Comments        string         `json:"comments,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ApprovalHistory is the append-only audit trail of action status
// changes. Rows are never edited or deleted, even when a later operation
// supersedes the decision they record.
type ApprovalHistory struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ApprovalActionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"approvalActionId"`
	PreviousStatus   ApprovalStatus `gorm:"type:varchar(20);not null" json:"previousStatus"`
	NewStatus        ApprovalStatus `gorm:"type:varchar(20);not null" json:"newStatus"`
	ChangedByID      uuid.UUID      `gorm:"type:uuid;not null" json:"changedById"`
	ChangeReason     string         `json:"changeReason,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"createdAt"`
}

// CorrectionRequest holds a stage open pending remediation, short of
// rejecting the submission outright. Completing it is the only way the
// bounced-back stage can be approved afterwards.
type CorrectionRequest struct {
	ID               uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ApprovalActionID uuid.UUID        `gorm:"type:uuid;not null;index" json:"approvalActionId"`
	RequestedByID    uuid.UUID        `gorm:"type:uuid;not null" json:"requestedById"`
	Reason           string           `gorm:"not null" json:"reason"`
	Details          string           `json:"details,omitempty"`
	Status           CorrectionStatus `gorm:"type:varchar(20);not null;default:'pending';check:status IN ('pending','in_progress','completed','rejected')" json:"status"`
	CompletedDate    *time.Time       `json:"completedDate,omitempty"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}
