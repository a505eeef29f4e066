package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"moneta/internal/handlers"
	"moneta/internal/logger"
	"moneta/internal/middleware"
	"moneta/internal/models"
	"moneta/internal/services"
	"moneta/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Ledger{},
		&models.Category{},
		&models.Account{},
		&models.Transaction{},
		&models.Budget{},
		&models.InstallmentPlan{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
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

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	accountHandler := handlers.NewAccountHandler(accountService, loanService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	installmentHandler := handlers.NewInstallmentHandler(installmentService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	summaryHandler := handlers.NewSummaryHandler(netWorthService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.POST("/auth/logout", authHandler.Logout)

	ledgers := protected.Group("/ledgers")
	ledgers.POST("", ledgerHandler.CreateLedger)
	ledgers.GET("", ledgerHandler.GetUserLedgers)
	ledgers.GET("/:id", ledgerHandler.GetLedgerByID)
	ledgers.PUT("/:id", ledgerHandler.UpdateLedger)
	ledgers.DELETE("/:id", ledgerHandler.DeleteLedger)
	ledgers.POST("/:id/categories", categoryHandler.CreateCategory)
	ledgers.GET("/:id/categories", categoryHandler.GetLedgerCategories)
	ledgers.GET("/:id/transactions", transactionHandler.GetLedgerTransactions)

	categories := protected.Group("/categories")
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

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

	installments := protected.Group("/installments")
	installments.GET("/:id", installmentHandler.GetPlanByID)
	installments.PUT("/:id", installmentHandler.UpdatePlan)
	installments.DELETE("/:id", installmentHandler.DeletePlan)
	installments.POST("/:id/repay", installmentHandler.RepayPlan)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetUserBudgets)
	budgets.GET("/overview", budgetHandler.GetBudgetOverview)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.POST("/:id/merge", budgetHandler.MergeBudgets)

	summary := protected.Group("/summary")
	summary.GET("/net-worth", summaryHandler.GetNetWorth)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string), result["refresh_token"].(string)
}

// createLedger creates a ledger and returns its ID.
func (app *testApp) createLedger(t *testing.T, token, name string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/ledgers", fmt.Sprintf(`{"name":%q}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create ledger failed: %d %s", rec.Code, rec.Body.String())
	}
	ledger := parseJSON(t, rec)["ledger"].(map[string]interface{})
	return ledger["id"].(string)
}

// createAccount creates an account from a raw JSON body and returns the account object.
func (app *testApp) createAccount(t *testing.T, token, body string) map[string]interface{} {
	t.Helper()
	rec := app.request("POST", "/api/v1/accounts", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["account"].(map[string]interface{})
}

// getAccount fetches an account by ID.
func (app *testApp) getAccount(t *testing.T, token, accountID string) map[string]interface{} {
	t.Helper()
	rec := app.request("GET", "/api/v1/accounts/"+accountID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get account failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["account"].(map[string]interface{})
}

// assertAmount compares a decimal JSON field (serialized as a string) against
// an expected value, ignoring formatting differences like trailing zeros.
func assertAmount(t *testing.T, got interface{}, want, name string) {
	t.Helper()
	s, ok := got.(string)
	if !ok {
		t.Fatalf("%s: expected decimal string, got %T (%v)", name, got, got)
	}
	gotDec, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("%s: invalid decimal %q: %v", name, s, err)
	}
	if !gotDec.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: expected %s, got %s", name, want, s)
	}
}

// assertErrorCode checks the status code and the error code in the response body.
func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	if errObj["code"] != code {
		t.Errorf("expected %s, got %v", code, errObj["code"])
	}
}
