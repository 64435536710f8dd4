package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/auth"
	"github.com/hugh/go-gatekeeper/internal/database"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Every connection to :memory: is a separate database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// DiscardLogger returns a logger that drops everything
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestHasher uses the minimum bcrypt cost to keep tests fast
func TestHasher() *auth.BcryptHasher {
	return auth.NewBcryptHasher(bcrypt.MinCost)
}

// CreateTestProfile creates a profile with a unique name
func CreateTestProfile(t *testing.T, db *gorm.DB, isAdmin bool) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		Name:        "profile-" + uuid.New().String()[:8],
		Description: "Test profile",
		IsAdmin:     isAdmin,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return profile
}

// CreateTestUser creates a user assigned to the profile. The password is "testpassword123".
func CreateTestUser(t *testing.T, db *gorm.DB, profile *models.Profile) *models.User {
	t.Helper()

	hash, err := TestHasher().Hash("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	suffix := uuid.New().String()[:8]
	user := &models.User{
		Name:         "Test User",
		Username:     "user-" + suffix,
		Email:        "test-" + suffix + "@example.com",
		Registration: suffix[:6],
		PasswordHash: hash,
		ProfileID:    profile.ID,
	}
	if err := db.Omit("Profile").Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	user.Profile = profile
	return user
}

func CreateTestModule(t *testing.T, db *gorm.DB, name string) *models.Module {
	t.Helper()

	module := &models.Module{
		Name:            name,
		Description:     name + " module",
		TextColor:       "#ffffff",
		BackgroundColor: "#000000",
	}
	if err := db.Create(module).Error; err != nil {
		t.Fatalf("failed to create test module: %v", err)
	}
	return module
}

func CreateTestTransaction(t *testing.T, db *gorm.DB, module *models.Module, name string) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{ModuleID: module.ID, Name: name}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

func CreateTestFunction(t *testing.T, db *gorm.DB, module *models.Module, name string) *models.Function {
	t.Helper()

	function := &models.Function{ModuleID: module.ID, Name: name}
	if err := db.Create(function).Error; err != nil {
		t.Fatalf("failed to create test function: %v", err)
	}
	return function
}

// CountRows returns the number of rows in the model's table
func CountRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	var profile string
	var isAdmin bool
	if user.Profile != nil {
		profile = user.Profile.Name
		isAdmin = user.Profile.IsAdmin
	}

	token, err := jwtService.GenerateToken(user.ID, user.Username, profile, isAdmin)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB           *gorm.DB
	JWTService   *auth.JWTService
	AdminProfile *models.Profile
	Admin        *models.User
	AdminToken   string
	Profile      *models.Profile
	User         *models.User
	Token        string
}

// NewTestContext creates a test setup with an admin user and a regular user, each with a token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()

	adminProfile := CreateTestProfile(t, db, true)
	admin := CreateTestUser(t, db, adminProfile)
	profile := CreateTestProfile(t, db, false)
	user := CreateTestUser(t, db, profile)

	return &TestSetup{
		DB:           db,
		JWTService:   jwtService,
		AdminProfile: adminProfile,
		Admin:        admin,
		AdminToken:   GenerateTestToken(t, jwtService, admin),
		Profile:      profile,
		User:         user,
		Token:        GenerateTestToken(t, jwtService, user),
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
