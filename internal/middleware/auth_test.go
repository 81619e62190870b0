package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func signToken(t testing.TB, secret string, userID uuid.UUID, role string, expiry time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    userID.String(),
		"email": "user@example.com",
		"role":  role,
		"exp":   time.Now().Add(expiry).Unix(),
		"iat":   time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func TestProperty_ProtectedEndpointsRejectMissingTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests without cookie or header are rejected", prop.ForAll(
		func(pathSuffix string, method string) bool {
			logger, _ := zap.NewDevelopment()
			mw := AuthMiddleware("test-secret", logger)

			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			path := "/" + pathSuffix
			if path == "/" {
				path = "/test"
			}

			req := httptest.NewRequest(method, path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
		gen.OneConstOf("GET", "POST", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthMiddlewareAcceptsCookieToken(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mw := AuthMiddleware("test-secret", logger)

	userID := uuid.New()
	var gotID uuid.UUID
	var gotRole domain.Role

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r.Context())
		gotRole, _ = GetUserRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{
		Name:  AuthCookieName,
		Value: signToken(t, "test-secret", userID, "ADMIN", time.Hour),
	})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotID != userID {
		t.Errorf("Expected user id %s in context, got %s", userID, gotID)
	}
	if gotRole != domain.RoleAdmin {
		t.Errorf("Expected ADMIN role in context, got %s", gotRole)
	}
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mw := AuthMiddleware("test-secret", logger)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", uuid.New(), "USER", time.Hour))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}

func TestProperty_ExpiredTokensAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("expired tokens are rejected with 401", prop.ForAll(
		func(role string) bool {
			logger, _ := zap.NewDevelopment()
			mw := AuthMiddleware("test-secret", logger)

			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/me", nil)
			req.AddCookie(&http.Cookie{
				Name:  AuthCookieName,
				Value: signToken(t, "test-secret", uuid.New(), role, -time.Hour),
			})
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.OneConstOf("USER", "ADMIN"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mw := AuthMiddleware("right-secret", logger)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{
		Name:  AuthCookieName,
		Value: signToken(t, "wrong-secret", uuid.New(), "USER", time.Hour),
	})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
}

func TestAuthMiddlewareRejectsUnknownRole(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mw := AuthMiddleware("test-secret", logger)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{
		Name:  AuthCookieName,
		Value: signToken(t, "test-secret", uuid.New(), "superuser", time.Hour),
	})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for unknown role, got %d", w.Code)
	}
}
