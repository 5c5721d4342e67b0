package handler_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"workwise/internal/domain"
	"workwise/internal/handler"
	"workwise/internal/service"
	"workwise/mocks"
)

func authTestRouter(svc service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewAuthHandler(svc)
	r.POST("/api/v1/auth/register", h.Register)
	r.POST("/api/v1/auth/login", h.Login)
	return r
}

func TestRegister_Created(t *testing.T) {
	svc := new(mocks.MockAuthService)
	r := authTestRouter(svc)

	user := &domain.User{ID: uuid.New(), Email: "ana@example.com", Name: "Ana"}
	token := &service.Token{AccessToken: "signed-token", ExpiresAt: time.Now().Add(time.Hour)}
	svc.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
		return in.Email == "ana@example.com"
	})).Return(user, token, nil)

	body := bytes.NewBufferString(`{"email":"ana@example.com","name":"Ana","password":"secret123"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "signed-token")
}

func TestRegister_InvalidBody(t *testing.T) {
	svc := new(mocks.MockAuthService)
	r := authTestRouter(svc)

	body := bytes.NewBufferString(`{"email":"not-an-email"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := new(mocks.MockAuthService)
	r := authTestRouter(svc)

	svc.On("Register", mock.Anything, mock.Anything).
		Return(nil, nil, domain.ErrDuplicateEmail)

	body := bytes.NewBufferString(`{"email":"ana@example.com","name":"Ana","password":"secret123"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "DUPLICATE_EMAIL")
}

func TestLogin_OK(t *testing.T) {
	svc := new(mocks.MockAuthService)
	r := authTestRouter(svc)

	token := &service.Token{AccessToken: "signed-token", ExpiresAt: time.Now().Add(time.Hour)}
	svc.On("Login", mock.Anything, mock.Anything).Return(token, nil)

	body := bytes.NewBufferString(`{"email":"ana@example.com","password":"secret123"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "signed-token")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := new(mocks.MockAuthService)
	r := authTestRouter(svc)

	svc.On("Login", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidCredentials)

	body := bytes.NewBufferString(`{"email":"ana@example.com","password":"wrongpassword"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}
