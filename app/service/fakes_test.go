package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"university-results-backend/app/model"
	"university-results-backend/app/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. Transactions are flattened: WithTx
// returns the fake itself and InTransaction just runs the callback, so
// service logic is exercised without a database.

type fakeResultRepo struct {
	enrollments map[uuid.UUID]*model.StudentEnrollment
	results     map[uuid.UUID]*model.Result
	grades      map[uuid.UUID]*model.Grade     // by result ID
	gpaRecords  map[uuid.UUID]*model.GPARecord // by enrollment ID
	cgpaRecords map[uuid.UUID]*model.CGPARecord
	locks       map[uuid.UUID]*model.ResultLock
	releases    map[uuid.UUID]*model.ResultRelease

	// onLock runs right after the row lock is taken; tests use it to
	// interleave a concurrent write into the critical section.
	onLock func(enrollmentID uuid.UUID)
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{
		enrollments: make(map[uuid.UUID]*model.StudentEnrollment),
		results:     make(map[uuid.UUID]*model.Result),
		grades:      make(map[uuid.UUID]*model.Grade),
		gpaRecords:  make(map[uuid.UUID]*model.GPARecord),
		cgpaRecords: make(map[uuid.UUID]*model.CGPARecord),
		locks:       make(map[uuid.UUID]*model.ResultLock),
		releases:    make(map[uuid.UUID]*model.ResultRelease),
	}
}

func (f *fakeResultRepo) InTransaction(fn func(tx *gorm.DB) error) error { return fn(nil) }

func (f *fakeResultRepo) WithTx(tx *gorm.DB) repository.ResultRepository { return f }

func (f *fakeResultRepo) LockEnrollmentRow(enrollmentID uuid.UUID) error {
	if _, ok := f.enrollments[enrollmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if f.onLock != nil {
		f.onLock(enrollmentID)
	}
	return nil
}

func (f *fakeResultRepo) GetEnrollment(id uuid.UUID) (*model.StudentEnrollment, error) {
	enrollment, ok := f.enrollments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return enrollment, nil
}

func (f *fakeResultRepo) GetEnrollmentsByStudent(studentID uuid.UUID) ([]model.StudentEnrollment, error) {
	var out []model.StudentEnrollment
	for _, e := range f.enrollments {
		if e.StudentID == studentID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeResultRepo) CreateResult(result *model.Result) error {
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	copied := *result
	f.results[result.ID] = &copied
	return nil
}

func (f *fakeResultRepo) FindResultByID(id uuid.UUID) (*model.Result, error) {
	stored, ok := f.results[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	result := *stored
	result.Grade = f.grades[id]
	return &result, nil
}

func (f *fakeResultRepo) FindResultsByEnrollment(enrollmentID uuid.UUID) ([]model.Result, error) {
	var out []model.Result
	for _, stored := range f.results {
		if stored.EnrollmentID != enrollmentID {
			continue
		}
		result := *stored
		result.Grade = f.grades[result.ID]
		out = append(out, result)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeResultRepo) UpdateResultStatus(resultID uuid.UUID, status model.ResultStatus) error {
	stored, ok := f.results[resultID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = status
	return nil
}

func (f *fakeResultRepo) UpdateStatusByEnrollment(enrollmentID uuid.UUID, status model.ResultStatus) error {
	for _, stored := range f.results {
		if stored.EnrollmentID == enrollmentID {
			stored.Status = status
		}
	}
	return nil
}

func (f *fakeResultRepo) UpsertComponent(component *model.ResultComponent) error {
	stored, ok := f.results[component.ResultID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range stored.Components {
		if stored.Components[i].ComponentType == component.ComponentType {
			stored.Components[i] = *component
			return nil
		}
	}
	if component.ID == uuid.Nil {
		component.ID = uuid.New()
	}
	stored.Components = append(stored.Components, *component)
	return nil
}

func (f *fakeResultRepo) SaveGrade(grade *model.Grade) error {
	if grade.ID == uuid.Nil {
		grade.ID = uuid.New()
	}
	copied := *grade
	f.grades[grade.ResultID] = &copied
	return nil
}

func (f *fakeResultRepo) GetGPARecord(enrollmentID uuid.UUID) (*model.GPARecord, error) {
	record, ok := f.gpaRecords[enrollmentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeResultRepo) SaveGPARecord(record *model.GPARecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	copied := *record
	f.gpaRecords[record.EnrollmentID] = &copied
	return nil
}

func (f *fakeResultRepo) GetGPARecordsByStudent(studentID uuid.UUID) ([]model.GPARecord, error) {
	var out []model.GPARecord
	for enrollmentID, record := range f.gpaRecords {
		enrollment, ok := f.enrollments[enrollmentID]
		if ok && enrollment.StudentID == studentID {
			out = append(out, *record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeResultRepo) GetCGPARecord(studentID uuid.UUID) (*model.CGPARecord, error) {
	record, ok := f.cgpaRecords[studentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeResultRepo) SaveCGPARecord(record *model.CGPARecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	copied := *record
	f.cgpaRecords[record.StudentID] = &copied
	return nil
}

func (f *fakeResultRepo) GetLock(enrollmentID uuid.UUID) (*model.ResultLock, error) {
	return f.locks[enrollmentID], nil
}

func (f *fakeResultRepo) SaveLock(lock *model.ResultLock) error {
	if lock.ID == uuid.Nil {
		lock.ID = uuid.New()
	}
	copied := *lock
	f.locks[lock.EnrollmentID] = &copied
	return nil
}

func (f *fakeResultRepo) GetRelease(semesterID uuid.UUID) (*model.ResultRelease, error) {
	return f.releases[semesterID], nil
}

func (f *fakeResultRepo) SaveRelease(release *model.ResultRelease) error {
	if release.ID == uuid.Nil {
		release.ID = uuid.New()
	}
	copied := *release
	f.releases[release.SemesterID] = &copied
	return nil
}

type fakeConfigRepo struct {
	scale  *model.GradingScale
	rule   *model.CreditRule
	stages []model.ApprovalStage
}

func (f *fakeConfigRepo) GetActiveGradingScale(universityID uuid.UUID) (*model.GradingScale, error) {
	if f.scale == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.scale, nil
}

func (f *fakeConfigRepo) GetCreditRule(universityID uuid.UUID) (*model.CreditRule, error) {
	if f.rule == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.rule, nil
}

func (f *fakeConfigRepo) GetActiveStages(universityID uuid.UUID) ([]model.ApprovalStage, error) {
	var active []model.ApprovalStage
	for _, s := range f.stages {
		if s.IsActive {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].StageNumber < active[j].StageNumber })
	return active, nil
}

func (f *fakeConfigRepo) GetStageByID(id uuid.UUID) (*model.ApprovalStage, error) {
	for i := range f.stages {
		if f.stages[i].ID == id {
			return &f.stages[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConfigRepo) CreateGradingScale(scale *model.GradingScale) error {
	f.scale = scale
	return nil
}

func (f *fakeConfigRepo) CreateStage(stage *model.ApprovalStage) error {
	if stage.ID == uuid.Nil {
		stage.ID = uuid.New()
	}
	f.stages = append(f.stages, *stage)
	return nil
}

func (f *fakeConfigRepo) SaveCreditRule(rule *model.CreditRule) error {
	f.rule = rule
	return nil
}

type fakeApprovalRepo struct {
	config      *fakeConfigRepo
	submissions map[uuid.UUID]*model.Submission
	actions     map[uuid.UUID]*model.ApprovalAction
	history     []model.ApprovalHistory
	corrections map[uuid.UUID]*model.CorrectionRequest
}

func newFakeApprovalRepo(config *fakeConfigRepo) *fakeApprovalRepo {
	return &fakeApprovalRepo{
		config:      config,
		submissions: make(map[uuid.UUID]*model.Submission),
		actions:     make(map[uuid.UUID]*model.ApprovalAction),
		corrections: make(map[uuid.UUID]*model.CorrectionRequest),
	}
}

func (f *fakeApprovalRepo) InTransaction(fn func(tx *gorm.DB) error) error { return fn(nil) }

func (f *fakeApprovalRepo) WithTx(tx *gorm.DB) repository.ApprovalRepository { return f }

func (f *fakeApprovalRepo) CreateSubmission(submission *model.Submission) error {
	if submission.ID == uuid.Nil {
		submission.ID = uuid.New()
	}
	submission.SubmissionDate = time.Now()
	for i := range submission.Actions {
		if submission.Actions[i].ID == uuid.Nil {
			submission.Actions[i].ID = uuid.New()
		}
		submission.Actions[i].SubmissionID = submission.ID
		action := submission.Actions[i]
		f.actions[action.ID] = &action
	}
	copied := *submission
	f.submissions[submission.ID] = &copied
	return nil
}

func (f *fakeApprovalRepo) FindSubmissionByID(id uuid.UUID) (*model.Submission, error) {
	stored, ok := f.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	submission := *stored
	submission.Actions = f.actionsFor(id)
	return &submission, nil
}

func (f *fakeApprovalRepo) FindSubmissionsByEnrollment(enrollmentID uuid.UUID) ([]model.Submission, error) {
	var out []model.Submission
	for id, stored := range f.submissions {
		if stored.EnrollmentID != enrollmentID {
			continue
		}
		submission := *stored
		submission.Actions = f.actionsFor(id)
		out = append(out, submission)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmissionDate.After(out[j].SubmissionDate) })
	return out, nil
}

func (f *fakeApprovalRepo) actionsFor(submissionID uuid.UUID) []model.ApprovalAction {
	var out []model.ApprovalAction
	for _, stored := range f.actions {
		if stored.SubmissionID != submissionID {
			continue
		}
		action := *stored
		f.attachStage(&action)
		out = append(out, action)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Stage.StageNumber < out[j].Stage.StageNumber
	})
	return out
}

func (f *fakeApprovalRepo) attachStage(action *model.ApprovalAction) {
	stage, err := f.config.GetStageByID(action.ApprovalStageID)
	if err == nil {
		action.Stage = stage
	}
}

func (f *fakeApprovalRepo) FindActionByID(id uuid.UUID) (*model.ApprovalAction, error) {
	stored, ok := f.actions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	action := *stored
	f.attachStage(&action)
	if submission, ok := f.submissions[action.SubmissionID]; ok {
		copied := *submission
		action.Submission = &copied
	}
	return &action, nil
}

func (f *fakeApprovalRepo) FindActionsBySubmission(submissionID uuid.UUID) ([]model.ApprovalAction, error) {
	return f.actionsFor(submissionID), nil
}

func (f *fakeApprovalRepo) FindPendingActionsByRole(universityID uuid.UUID, role model.Role) ([]model.ApprovalAction, error) {
	var out []model.ApprovalAction
	for _, stored := range f.actions {
		if stored.Status != model.ApprovalPending {
			continue
		}
		action := *stored
		f.attachStage(&action)
		if action.Stage != nil && action.Stage.RequiredRole == role {
			out = append(out, action)
		}
	}
	return out, nil
}

func (f *fakeApprovalRepo) UpdateActionStatusCAS(actionID uuid.UUID, expected, next model.ApprovalStatus, decidedBy uuid.UUID, comments string, at time.Time) (bool, error) {
	stored, ok := f.actions[actionID]
	if !ok || stored.Status != expected {
		return false, nil
	}
	stored.Status = next
	stored.DecidedByID = &decidedBy
	stored.Comments = comments
	stored.ActionDate = &at
	return true, nil
}

func (f *fakeApprovalRepo) AppendHistory(entry *model.ApprovalHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	f.history = append(f.history, *entry)
	return nil
}

func (f *fakeApprovalRepo) FindHistoryByAction(actionID uuid.UUID) ([]model.ApprovalHistory, error) {
	var out []model.ApprovalHistory
	for _, entry := range f.history {
		if entry.ApprovalActionID == actionID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeApprovalRepo) CreateCorrection(request *model.CorrectionRequest) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	copied := *request
	f.corrections[request.ID] = &copied
	return nil
}

func (f *fakeApprovalRepo) FindCorrectionByID(id uuid.UUID) (*model.CorrectionRequest, error) {
	stored, ok := f.corrections[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	request := *stored
	return &request, nil
}

func (f *fakeApprovalRepo) CountOpenCorrections(actionID uuid.UUID) (int64, error) {
	var count int64
	for _, request := range f.corrections {
		if request.ApprovalActionID != actionID {
			continue
		}
		if request.Status == model.CorrectionPending || request.Status == model.CorrectionInProgress {
			count++
		}
	}
	return count, nil
}

func (f *fakeApprovalRepo) CompleteCorrectionCAS(requestID uuid.UUID, at time.Time) (bool, error) {
	stored, ok := f.corrections[requestID]
	if !ok {
		return false, nil
	}
	if stored.Status != model.CorrectionPending && stored.Status != model.CorrectionInProgress {
		return false, nil
	}
	stored.Status = model.CorrectionCompleted
	stored.CompletedDate = &at
	return true, nil
}

// fakeAuditRepo records the document-side writes in memory. A mutex
// guards the slices because the services log asynchronously.
type fakeAuditRepo struct {
	mu            sync.Mutex
	activityLogs  []model.ActivityLog
	approvalLogs  []model.ApprovalLog
	notifications []model.Notification
}

func newFakeAuditRepo() *fakeAuditRepo { return &fakeAuditRepo{} }

func (f *fakeAuditRepo) LogActivity(ctx context.Context, entry *model.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activityLogs = append(f.activityLogs, *entry)
	return nil
}

func (f *fakeAuditRepo) LogApproval(ctx context.Context, entry *model.ApprovalLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approvalLogs = append(f.approvalLogs, *entry)
	return nil
}

func (f *fakeAuditRepo) PushNotification(ctx context.Context, notification *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeAuditRepo) GetApprovalTrail(ctx context.Context, submissionID string) ([]model.ApprovalLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var trail []model.ApprovalLog
	for _, entry := range f.approvalLogs {
		if entry.SubmissionID == submissionID {
			trail = append(trail, entry)
		}
	}
	return trail, nil
}

func (f *fakeAuditRepo) CountApprovalsByStage(ctx context.Context, submissionID string) (map[int]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[int]int64)
	for _, entry := range f.approvalLogs {
		if entry.SubmissionID == submissionID {
			counts[entry.StageNumber]++
		}
	}
	return counts, nil
}

// letterScale is the default five-band scale used across the tests.
func letterScale() *model.GradingScale {
	return &model.GradingScale{
		ID:        uuid.New(),
		Name:      "Standard Letter Scale",
		ScaleType: model.ScaleLetter,
		MinScore:  0,
		MaxScore:  100,
		IsActive:  true,
		Bands: []model.GradeBand{
			{Grade: "F", MinScore: 0, MaxScore: 49.99, PointValue: 0.0},
			{Grade: "D", MinScore: 50, MaxScore: 59.99, PointValue: 1.0},
			{Grade: "C", MinScore: 60, MaxScore: 69.99, PointValue: 2.0},
			{Grade: "B", MinScore: 70, MaxScore: 79.99, PointValue: 3.0},
			{Grade: "A", MinScore: 80, MaxScore: 100, PointValue: 4.0},
		},
	}
}

func defaultCreditRule() *model.CreditRule {
	return &model.CreditRule{
		ID:                uuid.New(),
		Name:              "Default Credit Rule",
		PassingGradePoint: 1.0,
	}
}
