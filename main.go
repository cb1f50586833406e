package main

import (
	"log"
	"os"
	"strconv"

	"university-results-backend/app/repository"
	"university-results-backend/app/service"
	"university-results-backend/cache"
	"university-results-backend/database"
	"university-results-backend/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	// =================================================================
	// LOAD ENV
	// =================================================================
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found, using default environment")
	}

	// =================================================================
	// INIT DB (POSTGRES + MONGODB)
	// =================================================================
	dbConn, err := database.InitDB()
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}

	// =================================================================
	// INIT REDIS (TRANSCRIPT CACHE)
	// =================================================================
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	cache.InitRedis(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"), redisDB)

	// =================================================================
	// SEED DATA (UNIVERSITY + USERS + CONFIG)
	// =================================================================
	database.RunSeeders(dbConn.Postgres)

	// =================================================================
	// REPOSITORIES
	// =================================================================
	userRepo := repository.NewUserRepository(dbConn.Postgres)
	configRepo := repository.NewConfigRepository(dbConn.Postgres)
	resultRepo := repository.NewResultRepository(dbConn.Postgres)
	approvalRepo := repository.NewApprovalRepository(dbConn.Postgres)
	auditRepo := repository.NewAuditRepository(dbConn.Mongo)

	// =================================================================
	// SERVICES
	// =================================================================
	authService := service.NewAuthService(userRepo)
	gradingService := service.NewGradingService(resultRepo, configRepo)
	gpaService := service.NewGPAService(resultRepo)
	lockService := service.NewLockService(resultRepo)
	releaseService := service.NewReleaseService(resultRepo, auditRepo)
	resultService := service.NewResultService(resultRepo, auditRepo)
	configService := service.NewConfigService(configRepo, gradingService)
	approvalService := service.NewApprovalService(
		approvalRepo,
		resultRepo,
		configRepo,
		auditRepo,
		gradingService,
		gpaService,
	)
	transcriptService := service.NewTranscriptService(resultRepo, userRepo, releaseService)

	// =================================================================
	// ROUTER
	// =================================================================
	r := gin.Default()

	routes.RegisterValidations()

	routes.NewAuthHandler(authService).SetupAuthRoutes(r)
	routes.NewResultHandler(resultService, gradingService).SetupResultRoutes(r)
	routes.NewApprovalHandler(approvalService).SetupApprovalRoutes(r)
	routes.NewAdminHandler(lockService, releaseService, configService).SetupAdminRoutes(r)
	routes.NewStudentHandler(transcriptService, gpaService).SetupStudentRoutes(r)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "University Results API RUNNING",
			"version": "1.0.0",
		})
	})

	// =================================================================
	// START SERVER
	// =================================================================
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("🚀 Server running at http://localhost:" + port)

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
