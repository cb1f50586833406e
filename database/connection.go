package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"university-results-backend/app/model"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Database struct {
	Postgres *gorm.DB
	Mongo    *mongo.Database
}

func InitDB() (*Database, error) {
	// 1. PostgreSQL
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	pgDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %v", err)
	}

	log.Println("Running PostgreSQL migrations...")
	err = pgDB.AutoMigrate(
		&model.User{},
		&model.University{},
		&model.Semester{},
		&model.Program{},
		&model.Course{},
		&model.StudentProfile{},
		&model.StudentEnrollment{},
		&model.EnrolledCourse{},
		&model.GradingScale{},
		&model.GradeBand{},
		&model.CreditRule{},
		&model.Result{},
		&model.ResultComponent{},
		&model.Grade{},
		&model.GPARecord{},
		&model.CGPARecord{},
		&model.ResultLock{},
		&model.ResultRelease{},
		&model.Submission{},
		&model.ApprovalStage{},
		&model.ApprovalAction{},
		&model.ApprovalHistory{},
		&model.CorrectionRequest{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	// 2. MongoDB
	mongoURI := os.Getenv("MONGO_URI")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %v", err)
	}

	if err := mongoClient.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %v", err)
	}

	mongoDBName := os.Getenv("MONGO_DB_NAME")
	mongoDatabase := mongoClient.Database(mongoDBName)

	log.Println("Connected to PostgreSQL and MongoDB!")

	return &Database{
		Postgres: pgDB,
		Mongo:    mongoDatabase,
	}, nil
}
