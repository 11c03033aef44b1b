package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studybuddy/internal/app"
	"studybuddy/internal/model"
	"studybuddy/internal/repository"
	"studybuddy/internal/transport/http/handler"
	"studybuddy/internal/transport/http/middleware"
)

const testSecret = "test-secret"

const cannedResponse = "Q1: What is the main topic? A1: The submitted notes. " +
	"Q2: Why study it? A2: To learn. " +
	"Q3: How to apply it? A3: Practice. " +
	"Q4: What matters most? A4: The core message. " +
	"Q5: What next? A5: Review."

type stubGenerator struct {
	raw string
	err error
}

func (g stubGenerator) GenerateCards(_ context.Context, _ string) (string, error) {
	return g.raw, g.err
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T, generator app.Generator) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.ChatSession{},
		&model.FlashcardSet{},
		&model.Flashcard{},
	))

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewChatSessionRepository(db)
	flashcardRepo := repository.NewFlashcardRepository(db)

	authService := app.NewAuthService(userRepo, testSecret, time.Hour)
	quota := app.NewQuotaPolicy(userRepo, 5)
	studyService := app.NewStudyService(
		userRepo, sessionRepo, flashcardRepo, quota, generator, nil,
		app.StudyServiceOptions{},
	)

	authHandler := handler.NewAuthHandler(authService, nil)
	studyHandler := handler.NewStudyHandler(studyService)
	authRequired := middleware.AuthJWT(testSecret, nil)

	router := gin.New()
	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authRequired, authHandler.Logout)
	authGroup.GET("/me", authRequired, authHandler.Me)

	studyGroup := v1.Group("")
	studyGroup.Use(authRequired)
	studyGroup.GET("/dashboard", studyHandler.Dashboard)
	studyGroup.POST("/generate", studyHandler.Generate)
	studyGroup.GET("/sets/:id", studyHandler.GetSet)
	studyGroup.POST("/upgrade", studyHandler.Upgrade)

	adminGroup := v1.Group("/admin")
	adminGroup.Use(authRequired, middleware.RequireAdmin())
	adminGroup.POST("/users/:id/pro", studyHandler.PromoteUser)

	return router, db
}

func perform(router *gin.Engine, method, path, token string, payload interface{}) (*httptest.ResponseRecorder, apiResponse) {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp apiResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func registerAndLogin(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()

	rec, _ := perform(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":            email,
		"password":         "password123",
		"confirm_password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := perform(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestRegisterLoginGenerateFetchFlow(t *testing.T) {
	router, _ := newTestRouter(t, stubGenerator{raw: cannedResponse})
	token := registerAndLogin(t, router, "student@example.com")

	rec, resp := perform(router, http.MethodPost, "/api/v1/generate", token, gin.H{
		"user_input": "My study notes about Go.",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var generated struct {
		SetID uint `json:"set_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &generated))
	require.NotZero(t, generated.SetID)

	rec, resp = perform(router, http.MethodGet,
		"/api/v1/sets/"+strconv.Itoa(int(generated.SetID)), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Title string `json:"title"`
		Cards []struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		} `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, "My study notes about Go.", view.Title)
	require.Len(t, view.Cards, 5)
	assert.Equal(t, "What is the main topic", view.Cards[0].Question)
	assert.Equal(t, "The submitted notes.", view.Cards[0].Answer)
}

func TestDuplicateEmailRejected(t *testing.T) {
	router, db := newTestRouter(t, stubGenerator{raw: cannedResponse})

	payload := gin.H{
		"email":            "dup@example.com",
		"password":         "password123",
		"confirm_password": "password123",
	}
	rec, _ := perform(router, http.MethodPost, "/api/v1/auth/register", "", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := perform(router, http.MethodPost, "/api/v1/auth/register", "", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEqual(t, 0, resp.Code)

	var total int64
	require.NoError(t, db.Model(&model.User{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

func TestQuotaRejectionCarriesUpgradeHint(t *testing.T) {
	router, _ := newTestRouter(t, stubGenerator{raw: cannedResponse})
	token := registerAndLogin(t, router, "student@example.com")

	for n := 0; n < 5; n++ {
		rec, _ := perform(router, http.MethodPost, "/api/v1/generate", token, gin.H{
			"user_input": "notes",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, resp := perform(router, http.MethodPost, "/api/v1/generate", token, gin.H{
		"user_input": "notes",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var data struct {
		ShowUpgrade bool `json:"show_upgrade"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.True(t, data.ShowUpgrade)
}

func TestGeneratorErrorReported(t *testing.T) {
	router, _ := newTestRouter(t, stubGenerator{err: assert.AnError})
	token := registerAndLogin(t, router, "student@example.com")

	rec, resp := perform(router, http.MethodPost, "/api/v1/generate", token, gin.H{
		"user_input": "notes",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, resp.Message, "ai service error")
}

func TestSetAccessRequiresOwnership(t *testing.T) {
	router, _ := newTestRouter(t, stubGenerator{raw: cannedResponse})
	ownerToken := registerAndLogin(t, router, "owner@example.com")
	otherToken := registerAndLogin(t, router, "other@example.com")

	_, resp := perform(router, http.MethodPost, "/api/v1/generate", ownerToken, gin.H{
		"user_input": "secret notes",
	})
	var generated struct {
		SetID uint `json:"set_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &generated))

	rec, _ := perform(router, http.MethodGet,
		"/api/v1/sets/"+strconv.Itoa(int(generated.SetID)), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t, stubGenerator{raw: cannedResponse})

	rec, _ := perform(router, http.MethodPost, "/api/v1/generate", "", gin.H{
		"user_input": "notes",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminPromoteRequiresRole(t *testing.T) {
	router, db := newTestRouter(t, stubGenerator{raw: cannedResponse})
	userToken := registerAndLogin(t, router, "student@example.com")

	// A regular user cannot reach the admin route.
	rec, _ := perform(router, http.MethodPost, "/api/v1/admin/users/1/pro", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	admin := &model.User{
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Plan:         model.PlanStandard,
		Role:         model.RoleAdmin,
		DailyQuota:   5,
	}
	require.NoError(t, db.Create(admin).Error)

	_, resp := perform(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "admin@example.com",
		"password": "password123",
	})
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))

	rec, _ = perform(router, http.MethodPost, "/api/v1/admin/users/1/pro", data.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var promoted model.User
	require.NoError(t, db.First(&promoted, 1).Error)
	assert.Equal(t, model.PlanPro, promoted.Plan)
}

func TestUpgradePreference(t *testing.T) {
	router, db := newTestRouter(t, stubGenerator{raw: cannedResponse})
	token := registerAndLogin(t, router, "student@example.com")

	rec, resp := perform(router, http.MethodPost, "/api/v1/upgrade", token, gin.H{
		"payment_method": "paypal",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Contains(t, data.Message, "student@example.com")

	var stored model.User
	require.NoError(t, db.Where("email = ?", "student@example.com").First(&stored).Error)
	assert.Equal(t, "paypal", stored.PreferredPayment)
	assert.Equal(t, model.PlanStandard, stored.Plan)
}

func TestDashboardPayload(t *testing.T) {
	router, _ := newTestRouter(t, stubGenerator{raw: cannedResponse})
	token := registerAndLogin(t, router, "student@example.com")

	_, _ = perform(router, http.MethodPost, "/api/v1/generate", token, gin.H{
		"user_input": "notes for the dashboard",
	})

	rec, resp := perform(router, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		User struct {
			Plan       string `json:"plan"`
			DailyQuota int    `json:"daily_quota"`
		} `json:"user"`
		Sessions         []json.RawMessage `json:"sessions"`
		TotalStudents    int64             `json:"total_students"`
		AdvancedStudents int64             `json:"advanced_students"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "standard", data.User.Plan)
	assert.Equal(t, 4, data.User.DailyQuota)
	assert.Len(t, data.Sessions, 1)
	assert.Equal(t, int64(1248), data.TotalStudents)
	assert.Equal(t, int64(911), data.AdvancedStudents)
}
