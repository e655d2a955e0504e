package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nusaiba/backend/internal/auth"
	"github.com/nusaiba/backend/internal/database"
	"github.com/nusaiba/backend/internal/kvstore"
)

func newAuthFixture(t *testing.T) (AuthHandler, *database.Service, *auth.Service) {
	t.Helper()
	db := database.New(kvstore.NewMemory(), nil, nil)
	authSvc := auth.NewService(db, nil)
	manager := auth.NewManager(time.Minute, time.Hour, auth.NewInMemorySessionStore())
	handler := AuthHandler{Auth: authSvc, Users: db, Sessions: manager}
	return handler, db, authSvc
}

func TestAuthHandlerSignUp(t *testing.T) {
	handler, db, _ := newAuthFixture(t)

	body, err := json.Marshal(signUpRequest{Email: "test@example.com", Password: "supersafe", Username: "tester"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SignUp(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued, got %+v", resp.Tokens)
	}
	if resp.User == nil || resp.User.Email != "test@example.com" {
		t.Fatalf("expected user in response, got %+v", resp.User)
	}

	if _, err := db.GetUserByEmail(context.Background(), "test@example.com"); err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}
}

func TestAuthHandlerSignUpDuplicate(t *testing.T) {
	handler, db, _ := newAuthFixture(t)

	if _, err := db.CreateUser(context.Background(), database.CreateUserInput{Email: "taken@example.com", Password: "supersafe"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	body, _ := json.Marshal(signUpRequest{Email: "taken@example.com", Password: "supersafe"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SignUp(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d got %d", http.StatusConflict, rec.Code)
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	handler, db, _ := newAuthFixture(t)

	if _, err := db.CreateUser(context.Background(), database.CreateUserInput{Email: "login@example.com", Password: "password123"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	body, _ := json.Marshal(loginRequest{Email: "login@example.com", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued, got %+v", resp.Tokens)
	}
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	handler, db, _ := newAuthFixture(t)

	if _, err := db.CreateUser(context.Background(), database.CreateUserInput{Email: "login@example.com", Password: "password123"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	for _, attempt := range []loginRequest{
		{Email: "login@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "password123"},
	} {
		body, _ := json.Marshal(attempt)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %+v: expected status %d got %d", attempt, http.StatusUnauthorized, rec.Code)
		}
	}
}

func TestAuthHandlerSocial(t *testing.T) {
	handler, _, authSvc := newAuthFixture(t)

	body, _ := json.Marshal(socialRequest{Email: "social@example.com", Name: "Social", Provider: "google"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/social", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Social(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if _, ok := authSvc.CurrentUser(); !ok {
		t.Fatal("expected social sign-in to authenticate the session")
	}

	// Repeating the sign-in resolves to the same account.
	var first authResponse
	if err := json.NewDecoder(rec.Body).Decode(&first); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/social", bytes.NewReader(body))
	handler.Social(rec, req)

	var second authResponse
	if err := json.NewDecoder(rec.Body).Decode(&second); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if first.User.ID != second.User.ID {
		t.Fatalf("expected idempotent social sign-in: %q vs %q", first.User.ID, second.User.ID)
	}
}

func TestAuthHandlerRefresh(t *testing.T) {
	handler, _, _ := newAuthFixture(t)

	tokens, err := handler.Sessions.Issue(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	body, _ := json.Marshal(refreshRequest{RefreshToken: tokens.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	// The spent token no longer refreshes.
	body, _ = json.Marshal(refreshRequest{RefreshToken: tokens.RefreshToken})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	rec = httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func TestAuthHandlerLoginRateLimited(t *testing.T) {
	handler, _, _ := newAuthFixture(t)
	handler.Limiter = denyAllLimiter{}

	body, _ := json.Marshal(loginRequest{Email: "login@example.com", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d got %d", http.StatusTooManyRequests, rec.Code)
	}
}
