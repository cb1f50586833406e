package repository

import (
	"errors"

	"university-results-backend/app/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResultRepository is the persistence contract for results and all the
// state derived from them (grades, GPA/CGPA records, locks, the release
// switch).
//
// Mutations that have to be atomic with a lock check run inside
// InTransaction; WithTx rebinds the repository to the transaction handle
// so services compose multi-entity writes without reaching into GORM.
type ResultRepository interface {
	// InTransaction runs fn inside one database transaction.
	InTransaction(fn func(tx *gorm.DB) error) error
	// WithTx returns a copy of the repository bound to tx.
	WithTx(tx *gorm.DB) ResultRepository

	// LockEnrollmentRow takes the row-level lock that serialises
	// recompute-and-write cycles for one enrollment. Only meaningful on
	// a transaction-bound repository.
	LockEnrollmentRow(enrollmentID uuid.UUID) error

	GetEnrollment(id uuid.UUID) (*model.StudentEnrollment, error)
	GetEnrollmentsByStudent(studentID uuid.UUID) ([]model.StudentEnrollment, error)

	CreateResult(result *model.Result) error
	FindResultByID(id uuid.UUID) (*model.Result, error)
	FindResultsByEnrollment(enrollmentID uuid.UUID) ([]model.Result, error)
	UpdateResultStatus(resultID uuid.UUID, status model.ResultStatus) error
	UpdateStatusByEnrollment(enrollmentID uuid.UUID, status model.ResultStatus) error

	UpsertComponent(component *model.ResultComponent) error
	SaveGrade(grade *model.Grade) error

	GetGPARecord(enrollmentID uuid.UUID) (*model.GPARecord, error)
	SaveGPARecord(record *model.GPARecord) error
	GetGPARecordsByStudent(studentID uuid.UUID) ([]model.GPARecord, error)
	GetCGPARecord(studentID uuid.UUID) (*model.CGPARecord, error)
	SaveCGPARecord(record *model.CGPARecord) error

	// GetLock returns the enrollment's lock row, or nil when no lock
	// has ever been created for it.
	GetLock(enrollmentID uuid.UUID) (*model.ResultLock, error)
	SaveLock(lock *model.ResultLock) error

	GetRelease(semesterID uuid.UUID) (*model.ResultRelease, error)
	SaveRelease(release *model.ResultRelease) error
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository creates a new resultRepository instance.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) InTransaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *resultRepository) WithTx(tx *gorm.DB) ResultRepository {
	return &resultRepository{db: tx}
}

func (r *resultRepository) LockEnrollmentRow(enrollmentID uuid.UUID) error {
	var enrollment model.StudentEnrollment
	return r.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", enrollmentID).
		First(&enrollment).Error
}

func (r *resultRepository) GetEnrollment(id uuid.UUID) (*model.StudentEnrollment, error) {
	var enrollment model.StudentEnrollment
	err := r.db.
		Preload("Student").
		Preload("Semester").
		Preload("Courses.Course").
		Where("id = ?", id).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *resultRepository) GetEnrollmentsByStudent(studentID uuid.UUID) ([]model.StudentEnrollment, error) {
	var enrollments []model.StudentEnrollment
	err := r.db.
		Preload("Semester").
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *resultRepository) CreateResult(result *model.Result) error {
	return r.db.Create(result).Error
}

func (r *resultRepository) FindResultByID(id uuid.UUID) (*model.Result, error) {
	var result model.Result
	err := r.db.
		Preload("Components").
		Preload("Grade").
		Preload("Course").
		Where("id = ?", id).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *resultRepository) FindResultsByEnrollment(enrollmentID uuid.UUID) ([]model.Result, error) {
	var results []model.Result
	err := r.db.
		Preload("Components").
		Preload("Grade").
		Preload("Course").
		Where("enrollment_id = ?", enrollmentID).
		Order("created_at ASC").
		Find(&results).Error
	return results, err
}

func (r *resultRepository) UpdateResultStatus(resultID uuid.UUID, status model.ResultStatus) error {
	return r.db.Model(&model.Result{}).
		Where("id = ?", resultID).
		Update("status", status).Error
}

func (r *resultRepository) UpdateStatusByEnrollment(enrollmentID uuid.UUID, status model.ResultStatus) error {
	return r.db.Model(&model.Result{}).
		Where("enrollment_id = ?", enrollmentID).
		Update("status", status).Error
}

// UpsertComponent writes a component keyed on (result, kind): a second
// "final" entry overwrites the first instead of duplicating it.
func (r *resultRepository) UpsertComponent(component *model.ResultComponent) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "result_id"}, {Name: "component_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"max_score", "score_obtained", "weight", "updated_at",
		}),
	}).Create(component).Error
}

// SaveGrade overwrites the result's derived grade in place (one grade
// per result, recomputation replaces rather than appends).
func (r *resultRepository) SaveGrade(grade *model.Grade) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "result_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_score", "letter_grade", "grade_point", "is_pass", "updated_at",
		}),
	}).Create(grade).Error
}

func (r *resultRepository) GetGPARecord(enrollmentID uuid.UUID) (*model.GPARecord, error) {
	var record model.GPARecord
	err := r.db.Where("enrollment_id = ?", enrollmentID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *resultRepository) SaveGPARecord(record *model.GPARecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "enrollment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"semester_gpa", "courses_taken", "courses_passed",
			"total_points", "total_credits", "updated_at",
		}),
	}).Create(record).Error
}

func (r *resultRepository) GetGPARecordsByStudent(studentID uuid.UUID) ([]model.GPARecord, error) {
	var records []model.GPARecord
	err := r.db.
		Joins("JOIN student_enrollments ON student_enrollments.id = gpa_records.enrollment_id").
		Where("student_enrollments.student_id = ?", studentID).
		Order("gpa_records.created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *resultRepository) GetCGPARecord(studentID uuid.UUID) (*model.CGPARecord, error) {
	var record model.CGPARecord
	err := r.db.Where("student_id = ?", studentID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *resultRepository) SaveCGPARecord(record *model.CGPARecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cumulative_gpa", "total_courses_taken", "total_courses_passed",
			"total_credits_earned", "last_updated",
		}),
	}).Create(record).Error
}

func (r *resultRepository) GetLock(enrollmentID uuid.UUID) (*model.ResultLock, error) {
	var lock model.ResultLock
	err := r.db.Where("enrollment_id = ?", enrollmentID).First(&lock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lock, nil
}

func (r *resultRepository) SaveLock(lock *model.ResultLock) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "enrollment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_locked", "locked_by_id", "locked_at", "lock_reason",
			"unlocked_by_id", "unlocked_at", "unlock_reason", "updated_at",
		}),
	}).Create(lock).Error
}

func (r *resultRepository) GetRelease(semesterID uuid.UUID) (*model.ResultRelease, error) {
	var release model.ResultRelease
	err := r.db.Where("semester_id = ?", semesterID).First(&release).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &release, nil
}

func (r *resultRepository) SaveRelease(release *model.ResultRelease) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "semester_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"can_view_results", "released_by_id", "released_date", "updated_at",
		}),
	}).Create(release).Error
}
