package database

import (
	"log"

	"university-results-backend/app/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RunSeeders loads the baseline data a fresh installation needs: one
// university with its academic configuration plus the initial accounts.
// Call once from main.go after InitDB succeeds. Every seeder is
// idempotent and skips itself when its table already has rows.
func RunSeeders(db *gorm.DB) {
	SeedUniversity(db)
	SeedUsers(db)
	SeedGradingScale(db)
	SeedApprovalStages(db)
	SeedCreditRule(db)
}

// ===============================
//  SEED UNIVERSITY & SEMESTER
// ===============================

// SeedUniversity creates the demo university and its current semester.
func SeedUniversity(db *gorm.DB) {
	var count int64
	db.Model(&model.University{}).Count(&count)
	if count > 0 {
		log.Println("[SEEDER] University already exists, skipping.")
		return
	}

	university := model.University{
		ID:           uuid.New(),
		Name:         "Central State University",
		Code:         "CSU",
		Abbreviation: "CSU",
		Country:      "Nigeria",
		City:         "Abuja",
		IsActive:     true,
	}
	if err := db.Create(&university).Error; err != nil {
		log.Fatalf("[SEEDER] Failed to seed university: %v", err)
	}

	semester := model.Semester{
		UniversityID: university.ID,
		AcademicYear: "2025/2026",
		Name:         "First Semester",
		Number:       1,
		IsCurrent:    true,
	}
	if err := db.Create(&semester).Error; err != nil {
		log.Fatalf("[SEEDER] Failed to seed semester: %v", err)
	}

	log.Println("[SEEDER] Seeded university and current semester")
}

// ===============================
//  SEED USERS
// ===============================

// SeedUsers creates the initial accounts, one per workflow role.
func SeedUsers(db *gorm.DB) {
	var count int64
	db.Model(&model.User{}).Count(&count)
	if count > 0 {
		log.Println("[SEEDER] Users already exist, skipping.")
		return
	}

	password := "changeme123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	users := []model.User{
		{
			Username:     "admin",
			Email:        "admin@university.edu",
			PasswordHash: string(hash),
			FullName:     "System Administrator",
			Role:         model.RoleAdmin,
			IsActive:     true,
		},
		{
			Username:     "registrar",
			Email:        "registrar@university.edu",
			PasswordHash: string(hash),
			FullName:     "University Registrar",
			Role:         model.RoleRegistrar,
			IsActive:     true,
		},
		{
			Username:     "depthead",
			Email:        "depthead@university.edu",
			PasswordHash: string(hash),
			FullName:     "Department Head",
			Role:         model.RoleDepartmentHead,
			IsActive:     true,
		},
	}

	if err := db.Create(&users).Error; err != nil {
		log.Fatalf("[SEEDER] Failed to seed users: %v", err)
	}

	log.Printf("[SEEDER] Seeded %d users, password: %s", len(users), password)
}

// ===============================
//  SEED GRADING SCALE
// ===============================

// SeedGradingScale creates the default five-band letter scale.
func SeedGradingScale(db *gorm.DB) {
	var count int64
	db.Model(&model.GradingScale{}).Count(&count)
	if count > 0 {
		log.Println("[SEEDER] Grading scale already exists, skipping.")
		return
	}

	var university model.University
	if err := db.First(&university).Error; err != nil {
		log.Println("[SEEDER] No university found, skipping grading scale.")
		return
	}

	scale := model.GradingScale{
		UniversityID: university.ID,
		Name:         "Standard Letter Scale",
		ScaleType:    model.ScaleLetter,
		MinScore:     0,
		MaxScore:     100,
		IsActive:     true,
		Bands: []model.GradeBand{
			{Grade: "A", MinScore: 80, MaxScore: 100, PointValue: 4.0},
			{Grade: "B", MinScore: 70, MaxScore: 79.99, PointValue: 3.0},
			{Grade: "C", MinScore: 60, MaxScore: 69.99, PointValue: 2.0},
			{Grade: "D", MinScore: 50, MaxScore: 59.99, PointValue: 1.0},
			{Grade: "F", MinScore: 0, MaxScore: 49.99, PointValue: 0.0},
		},
	}
	if err := db.Create(&scale).Error; err != nil {
		log.Fatalf("[SEEDER] Failed to seed grading scale: %v", err)
	}

	log.Println("[SEEDER] Seeded default grading scale (A-F)")
}

// ===============================
//  SEED APPROVAL STAGES
// ===============================

// SeedApprovalStages creates the three-stage default pipeline:
// department head, then registrar, then admin.
func SeedApprovalStages(db *gorm.DB) {
	var count int64
	db.Model(&model.ApprovalStage{}).Count(&count)
	if count > 0 {
		log.Println("[SEEDER] Approval stages already exist, skipping.")
		return
	}

	var university model.University
	if err := db.First(&university).Error; err != nil {
		log.Println("[SEEDER] No university found, skipping approval stages.")
		return
	}

	stages := []model.ApprovalStage{
		{
			UniversityID:         university.ID,
			StageNumber:          1,
			StageName:            "Department Review",
			Description:          "Department head validates submitted scores",
			RequiredRole:         model.RoleDepartmentHead,
			CanReject:            true,
			CanRequestCorrection: true,
			IsActive:             true,
		},
		{
			UniversityID:         university.ID,
			StageNumber:          2,
			StageName:            "Registrar Review",
			Description:          "Registrar checks records for consistency",
			RequiredRole:         model.RoleRegistrar,
			CanReject:            true,
			CanRequestCorrection: true,
			IsActive:             true,
		},
		{
			UniversityID:         university.ID,
			StageNumber:          3,
			StageName:            "Final Approval",
			Description:          "Administration signs off the results",
			RequiredRole:         model.RoleAdmin,
			CanReject:            true,
			CanRequestCorrection: false,
			IsActive:             true,
		},
	}

	if err := db.Create(&stages).Error; err != nil {
		log.Fatalf("[SEEDER] Failed to seed approval stages: %v", err)
	}

	log.Println("[SEEDER] Seeded 3 approval stages")
}

// ===============================
//  SEED CREDIT RULE
// ===============================

// SeedCreditRule creates the default passing thresholds.
func SeedCreditRule(db *gorm.DB) {
	var count int64
	db.Model(&model.CreditRule{}).Count(&count)
	if count > 0 {
		log.Println("[SEEDER] Credit rule already exists, skipping.")
		return
	}

	var university model.University
	if err := db.First(&university).Error; err != nil {
		log.Println("[SEEDER] No university found, skipping credit rule.")
		return
	}

	rule := model.CreditRule{
		UniversityID:          university.ID,
		Name:                  "Default Credit Rule",
		PassingGradePoint:     1.0,
		MinGPAForGraduation:   2.0,
		MinGPAForGoodStanding: 2.0,
	}
	if err := db.Create(&rule).Error; err != nil {
		log.Fatalf("[SEEDER] Failed to seed credit rule: %v", err)
	}

	log.Println("[SEEDER] Seeded default credit rule")
}
