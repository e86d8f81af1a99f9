package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/username/duitdash/src/config"
	"github.com/username/duitdash/src/logger"
)

func setupCSRF(t *testing.T) {
	t.Helper()
	if logger.L == nil {
		logger.InitLogger("error")
	}
	config.Cfg = &config.AppConfig{
		CSRFAuthKey: []byte("a-very-secure-32-byte-long-key!!"),
	}
}

func issueToken(t *testing.T) (token string, cookie *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	GetCSRFToken(rec, httptest.NewRequest(http.MethodGet, "/api/auth/csrf", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GetCSRFToken status = %d", rec.Code)
	}
	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding token body: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == csrfCookieName {
			cookie = c
		}
	}
	if cookie == nil || body.CSRFToken == "" {
		t.Fatal("token endpoint returned no cookie or empty token")
	}
	if cookie.Value != body.CSRFToken {
		t.Fatal("cookie and body token differ")
	}
	return body.CSRFToken, cookie
}

func TestCSRFMiddleware(t *testing.T) {
	setupCSRF(t)

	var reached bool
	protected := CSRFMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("GET passes without token", func(t *testing.T) {
		reached = false
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		if !reached || rec.Code != http.StatusOK {
			t.Errorf("GET blocked: %d", rec.Code)
		}
	})

	t.Run("POST without token is rejected", func(t *testing.T) {
		reached = false
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
		if reached || rec.Code != http.StatusForbidden {
			t.Errorf("POST without token: reached=%v code=%d", reached, rec.Code)
		}
	})

	t.Run("POST with matching signed pair passes", func(t *testing.T) {
		token, cookie := issueToken(t)
		reached = false
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("X-CSRF-Token", token)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if !reached || rec.Code != http.StatusOK {
			t.Errorf("valid pair rejected: %d", rec.Code)
		}
	})

	t.Run("forged matching pair is rejected", func(t *testing.T) {
		// Header and cookie match, but the value was never signed by us.
		reached = false
		forged := "forgedvalue.forgedmac"
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("X-CSRF-Token", forged)
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: forged})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if reached || rec.Code != http.StatusForbidden {
			t.Errorf("forged pair accepted: reached=%v code=%d", reached, rec.Code)
		}
	})

	t.Run("header cookie mismatch is rejected", func(t *testing.T) {
		token, _ := issueToken(t)
		otherToken, otherCookie := issueToken(t)
		if token == otherToken {
			t.Fatal("expected distinct tokens")
		}
		reached = false
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("X-CSRF-Token", token)
		req.AddCookie(otherCookie)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if reached || rec.Code != http.StatusForbidden {
			t.Errorf("mismatched pair accepted: reached=%v code=%d", reached, rec.Code)
		}
	})
}
