package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/username/duitdash/src/config"
	"github.com/username/duitdash/src/logger"
	"github.com/username/duitdash/src/utils"
)

const csrfCookieName = "csrf_token"

// GetCSRFToken issues a double-submit CSRF token: the same value goes into a
// cookie and the response body, and mutating requests must echo it back in
// the X-CSRF-Token header. Tokens are HMAC-signed with CSRF_AUTH_KEY so a
// forged cookie/header pair is rejected even when they match each other.
func GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.L.Error("Failed to generate CSRF token", "error", err)
		utils.SendJSONError(w, "Failed to generate CSRF token", http.StatusInternalServerError)
		return
	}
	token := signCSRFToken(b)

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		MaxAge:   3600,
	})

	w.Header().Set("X-CSRF-Token", token)
	utils.SendJSON(w, map[string]string{"csrfToken": token}, http.StatusOK)
}

func signCSRFToken(raw []byte) string {
	mac := hmac.New(sha256.New, config.Cfg.CSRFAuthKey)
	mac.Write(raw)
	return base64.RawURLEncoding.EncodeToString(raw) + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func validCSRFToken(token string) bool {
	rawPart, _, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(rawPart)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(token), []byte(signCSRFToken(raw)))
}

// CSRFMiddleware validates the double-submit pair on every mutating request.
// Safe methods and CORS preflights pass through.
func CSRFMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			headerToken := r.Header.Get("X-CSRF-Token")
			cookie, err := r.Cookie(csrfCookieName)
			if headerToken != "" && err == nil && headerToken == cookie.Value && validCSRFToken(headerToken) {
				next.ServeHTTP(w, r)
				return
			}

			logger.L.Warn("CSRF validation failed", "method", r.Method, "path", r.URL.Path)
			utils.SendJSONError(w, "CSRF token validation failed", http.StatusForbidden)
		})
	}
}
