package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Whateverdoa/vertical-slice-service/internals/events"
	"github.com/Whateverdoa/vertical-slice-service/internals/storage/mocks"
	"github.com/Whateverdoa/vertical-slice-service/internals/storage/models"
	"github.com/Whateverdoa/vertical-slice-service/pkg/config"
)

func setupRouter(service *AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	api := r.Group("/api/v1")
	service.RegisterRoutes(api)
	return r
}

func newService() (*AuthService, *mocks.MockUserStorage, *mocks.MockSessionStore) {
	config.Auth.JWTSecret = "test-secret"
	config.Auth.TokenTTLMinute = 30

	userStorage := mocks.NewMockUserStorage()
	sessions := mocks.NewMockSessionStore()
	return New(userStorage, sessions), userStorage, sessions
}

func seedUser(userStorage *mocks.MockUserStorage, email, password string, isActive bool) uuid.UUID {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	userID := uuid.New()
	userStorage.Users[userID] = models.User{
		ID:           userID,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
		IsActive:     isActive,
	}
	return userID
}

func doLogin(t *testing.T, router *gin.Engine, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(LoginRequest{Email: email, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	service, userStorage, _ := newService()
	router := setupRouter(service)

	seedUser(userStorage, "alice@example.com", "supersecret", true)

	w := doLogin(t, router, "alice@example.com", "supersecret")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response LoginResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.AccessToken == "" {
		t.Error("Expected an access token")
	}
	if response.TokenType != "Bearer" {
		t.Errorf("Expected Bearer token type, got %s", response.TokenType)
	}
	if response.ExpiresIn != int((30 * time.Minute).Seconds()) {
		t.Errorf("Expected 1800s expiry, got %d", response.ExpiresIn)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	service, userStorage, _ := newService()
	router := setupRouter(service)

	seedUser(userStorage, "alice@example.com", "supersecret", true)

	w := doLogin(t, router, "alice@example.com", "wrongpassword")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INVALID_CREDENTIALS") {
		t.Errorf("Expected INVALID_CREDENTIALS code, got %s", w.Body.String())
	}
}

func TestLogin_UnknownEmailSameAnswer(t *testing.T) {
	service, _, _ := newService()
	router := setupRouter(service)

	w := doLogin(t, router, "nobody@example.com", "whatever123")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INVALID_CREDENTIALS") {
		t.Errorf("Expected INVALID_CREDENTIALS code, got %s", w.Body.String())
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	service, userStorage, _ := newService()
	router := setupRouter(service)

	seedUser(userStorage, "alice@example.com", "supersecret", false)

	w := doLogin(t, router, "alice@example.com", "supersecret")

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "USER_INACTIVE") {
		t.Errorf("Expected USER_INACTIVE code, got %s", w.Body.String())
	}
}

func TestMe_Success(t *testing.T) {
	service, userStorage, _ := newService()
	router := setupRouter(service)

	userID := seedUser(userStorage, "alice@example.com", "supersecret", true)

	login := doLogin(t, router, "alice@example.com", "supersecret")
	var loginResp LoginResponse
	json.Unmarshal(login.Body.Bytes(), &loginResp)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.AccessToken)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response MeResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.User.ID != userID {
		t.Errorf("Expected user %s, got %s", userID, response.User.ID)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("Response must not contain password material")
	}
}

func TestMe_MissingToken(t *testing.T) {
	service, _, _ := newService()
	router := setupRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestMe_GarbageToken(t *testing.T) {
	service, _, _ := newService()
	router := setupRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	service, userStorage, sessions := newService()
	router := setupRouter(service)

	seedUser(userStorage, "alice@example.com", "supersecret", true)

	login := doLogin(t, router, "alice@example.com", "supersecret")
	var loginResp LoginResponse
	json.Unmarshal(login.Body.Bytes(), &loginResp)

	logout := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	logout.Header.Set("Authorization", "Bearer "+loginResp.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, logout)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(sessions.Denylisted) != 1 {
		t.Fatalf("Expected 1 denylisted token, got %d", len(sessions.Denylisted))
	}

	// The same token must now be rejected
	me := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	me.Header.Set("Authorization", "Bearer "+loginResp.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, me)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 after logout, got %d", w.Code)
	}
}

func TestDeactivationEvent_RevokesSessions(t *testing.T) {
	service, userStorage, sessions := newService()
	router := setupRouter(service)

	userID := seedUser(userStorage, "alice@example.com", "supersecret", true)

	login := doLogin(t, router, "alice@example.com", "supersecret")
	var loginResp LoginResponse
	json.Unmarshal(login.Body.Bytes(), &loginResp)

	bus := events.NewBus()
	bus.Subscribe(events.UserDeactivated, service.HandleUserDeactivated)

	event := events.NewUserEvent(events.UserDeactivated, userID)
	event.Timestamp = time.Now().Add(time.Second)
	bus.Publish(event)

	if _, revoked := sessions.Revoked[userID]; !revoked {
		t.Fatal("Expected a revocation watermark for the user")
	}

	me := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	me.Header.Set("Authorization", "Bearer "+loginResp.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, me)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 after deactivation, got %d", w.Code)
	}
}

func TestMe_TamperedToken(t *testing.T) {
	service, userStorage, _ := newService()
	router := setupRouter(service)

	seedUser(userStorage, "alice@example.com", "supersecret", true)

	login := doLogin(t, router, "alice@example.com", "supersecret")
	var loginResp LoginResponse
	json.Unmarshal(login.Body.Bytes(), &loginResp)

	tampered := loginResp.AccessToken + "x"

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tampered)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}
