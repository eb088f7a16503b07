package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/username/termtrack/backend/src/logger"
	"github.com/username/termtrack/backend/src/utils"
)

const csrfCookieName = "_csrf_token"

// GetCSRFToken issues a signed double-submit token: the value is set as an
// HttpOnly cookie and returned in the body, and mutating requests must echo
// it back in the X-CSRF-Token header.
func GetCSRFToken(authKey []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := generateSignedToken(authKey)
		if err != nil {
			logger.L.Error("Failed to generate CSRF token", "error", err)
			utils.SendJSONError(w, "Failed to generate CSRF token", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     csrfCookieName,
			Value:    token,
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
			HttpOnly: true,
			Secure:   false, // set true behind HTTPS
			MaxAge:   3600,
		})

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-CSRF-Token", token)
		json.NewEncoder(w).Encode(map[string]string{"csrfToken": token})
	}
}

// CSRFMiddleware validates the double-submit pair: header token and cookie
// token must match and carry a valid signature under authKey. Safe methods
// pass through untouched.
func CSRFMiddleware(authKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			headerToken := r.Header.Get("X-CSRF-Token")
			cookie, err := r.Cookie(csrfCookieName)
			if headerToken == "" || err != nil {
				logger.L.Warn("CSRF validation failed: token missing", "method", r.Method, "path", r.URL.Path, "hasHeader", headerToken != "")
				utils.SendJSONError(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			if !hmac.Equal([]byte(headerToken), []byte(cookie.Value)) || !verifySignedToken(authKey, headerToken) {
				logger.L.Warn("CSRF validation failed: token mismatch or bad signature", "method", r.Method, "path", r.URL.Path)
				utils.SendJSONError(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func generateSignedToken(authKey []byte) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(b)
	return payload + "." + signPayload(authKey, payload), nil
}

func verifySignedToken(authKey []byte, token string) bool {
	payload, signature, found := strings.Cut(token, ".")
	if !found {
		return false
	}
	expected := signPayload(authKey, payload)
	return hmac.Equal([]byte(signature), []byte(expected))
}

func signPayload(authKey []byte, payload string) string {
	mac := hmac.New(sha256.New, authKey)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
