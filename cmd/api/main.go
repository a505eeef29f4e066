package main

import (
	"fmt"
	"net/http"
	"os"

	"moneta/internal/config"
	"moneta/internal/database"
	"moneta/internal/handlers"
	"moneta/internal/logger"
	"moneta/internal/middleware"
	"moneta/internal/services"
	"moneta/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "moneta/internal/docs" // Import swagger docs
)

// @title           Moneta API
// @version         1.0
// @description     Moneta is a personal bookkeeping application for tracking accounts, transactions, loans, installment plans, and budgets across multiple ledgers.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	ledgerService := services.NewLedgerService(db)
	categoryService := services.NewCategoryService(db)
	accountService := services.NewAccountService(db)
	transactionService := services.NewTransactionService(db, accountService)
	loanService := services.NewLoanService(db, transactionService)
	installmentService := services.NewInstallmentService(db, accountService)
	budgetService := services.NewBudgetService(db)
	netWorthService := services.NewNetWorthService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	accountHandler := handlers.NewAccountHandler(accountService, loanService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	installmentHandler := handlers.NewInstallmentHandler(installmentService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	summaryHandler := handlers.NewSummaryHandler(netWorthService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.POST("/auth/logout", authHandler.Logout)

	// Ledger routes
	ledgers := protected.Group("/ledgers")
	ledgers.POST("", ledgerHandler.CreateLedger)
	ledgers.GET("", ledgerHandler.GetUserLedgers)
	ledgers.GET("/:id", ledgerHandler.GetLedgerByID)
	ledgers.PUT("/:id", ledgerHandler.UpdateLedger)
	ledgers.DELETE("/:id", ledgerHandler.DeleteLedger)
	ledgers.POST("/:id/categories", categoryHandler.CreateCategory)
	ledgers.GET("/:id/categories", categoryHandler.GetLedgerCategories)
	ledgers.GET("/:id/transactions", transactionHandler.GetLedgerTransactions)

	// Category routes
	categories := protected.Group("/categories")
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Account routes
	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.POST("/:id/hide", accountHandler.HideAccount)
	accounts.POST("/:id/unhide", accountHandler.UnhideAccount)
	accounts.POST("/:id/repay", accountHandler.RepayLoan)
	accounts.POST("/:id/installments", installmentHandler.CreatePlan)
	accounts.GET("/:id/installments", installmentHandler.GetAccountPlans)

	// Installment plan routes
	installments := protected.Group("/installments")
	installments.GET("/:id", installmentHandler.GetPlanByID)
	installments.PUT("/:id", installmentHandler.UpdatePlan)
	installments.DELETE("/:id", installmentHandler.DeletePlan)
	installments.POST("/:id/repay", installmentHandler.RepayPlan)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetUserBudgets)
	budgets.GET("/overview", budgetHandler.GetBudgetOverview)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.POST("/:id/merge", budgetHandler.MergeBudgets)

	// Summary routes
	summary := protected.Group("/summary")
	summary.GET("/net-worth", summaryHandler.GetNetWorth)

	log.Infof("Starting Moneta backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
