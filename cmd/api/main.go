package main

import (
	"context"
	"log"
	"os"

	_ "rental-backend/api/swagger" // swagger docs
	"rental-backend/internal/database"
	"rental-backend/internal/handler"
	"rental-backend/internal/repository"
	"rental-backend/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Equipment Rental API
// @version         1.0
// @description     Backend for the equipment rental dashboard: item catalogs, availability, rental transactions, returns and reports.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	itemRepo := repository.NewItemRepository(db)
	rentalRepo := repository.NewRentalRepository(db)
	reportRepo := repository.NewReportRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)

	catalogService := service.NewCatalogService(itemRepo, rentalRepo)
	itemService := service.NewItemService(itemRepo, rentalRepo, auditRepo, txManager)
	availabilityService := service.NewAvailabilityService(itemRepo, rentalRepo)
	rentalService := service.NewRentalService(itemRepo, rentalRepo, reportRepo, auditRepo, txManager)
	returnService := service.NewReturnService(itemRepo, rentalRepo, reportRepo, auditRepo, txManager)
	calendarService := service.NewCalendarService(rentalService)
	reportService := service.NewReportService(reportRepo, rentalRepo, itemRepo, auditRepo)
	overdueService := service.NewOverdueService(rentalRepo, auditRepo)
	statisticsService := service.NewStatisticsService(db)
	auditService := service.NewAuditService(auditRepo)
	userService := service.NewUserService(userRepo)

	// Initialize Handlers
	itemHandler := handler.NewItemHandler(catalogService, itemService)
	rentalHandler := handler.NewRentalHandler(rentalService, availabilityService, returnService, calendarService)
	reportHandler := handler.NewReportHandler(reportService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	auditHandler := handler.NewAuditHandler(auditService)
	userHandler := handler.NewUserHandler(userService)

	// Overdue sweep: every night shortly after midnight, plus once at boot
	// so a restarted server catches up immediately.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("5 0 * * *", func() {
		if count, err := overdueService.Sweep(context.Background()); err != nil {
			log.Printf("overdue sweep failed: %v", err)
		} else if count > 0 {
			log.Printf("overdue sweep: %d rentals marked overdue", count)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule overdue sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	if _, err := overdueService.Sweep(context.Background()); err != nil {
		log.Printf("startup overdue sweep failed: %v", err)
	}

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Register API Routes
	api := router.Group("")
	userHandler.RegisterRoutes(api)
	itemHandler.RegisterRoutes(api)
	rentalHandler.RegisterRoutes(api)
	reportHandler.RegisterRoutes(api)
	statisticsHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
