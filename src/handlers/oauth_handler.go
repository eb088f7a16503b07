package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/username/termtrack/backend/src/config"
	"github.com/username/termtrack/backend/src/database"
	"github.com/username/termtrack/backend/src/logger"
	"github.com/username/termtrack/backend/src/model"
)

var googleOauthConfig *oauth2.Config

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo?access_token="

// InitializeGoogleOAuthConfig must be called after config.LoadConfig.
func InitializeGoogleOAuthConfig() {
	googleOauthConfig = &oauth2.Config{
		RedirectURL:  config.Cfg.GoogleRedirectURL,
		ClientID:     config.Cfg.GoogleClientID,
		ClientSecret: config.Cfg.GoogleClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

func (h *UserHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		logger.L.Error("Failed to generate OAuth state", "error", err)
		http.Redirect(w, r, config.Cfg.FrontendBaseURL+"/signin?error=oauth_init_failed", http.StatusTemporaryRedirect)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	http.Redirect(w, r, googleOauthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *UserHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || r.FormValue("state") != stateCookie.Value {
		logger.L.Warn("Invalid OAuth state from Google callback")
		h.redirectSigninError(w, r, "invalid_state")
		return
	}

	code := r.FormValue("code")
	token, err := googleOauthConfig.Exchange(context.Background(), code)
	if err != nil {
		logger.L.Error("Failed to exchange code for token", "error", err)
		h.redirectSigninError(w, r, "token_exchange_failed")
		return
	}

	response, err := http.Get(googleUserInfoURL + url.QueryEscape(token.AccessToken))
	if err != nil {
		logger.L.Error("Failed to get user info from Google", "error", err)
		h.redirectSigninError(w, r, "userinfo_failed")
		return
	}
	defer response.Body.Close()

	contents, err := io.ReadAll(response.Body)
	if err != nil {
		logger.L.Error("Failed to read user info response body", "error", err)
		h.redirectSigninError(w, r, "userinfo_read_failed")
		return
	}

	var googleUser struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Verified bool   `json:"verified_email"`
		ID       string `json:"id"`
	}
	if err := json.Unmarshal(contents, &googleUser); err != nil {
		logger.L.Error("Failed to unmarshal Google user info", "error", err)
		h.redirectSigninError(w, r, "userinfo_parse_failed")
		return
	}

	if !googleUser.Verified {
		h.redirectSigninError(w, r, "email_not_verified_by_google")
		return
	}

	user, err := model.GetUserByEmail(database.DB, googleUser.Email)
	if err != nil {
		newUser := &model.User{
			Username:        googleUser.Email,
			Email:           googleUser.Email,
			Password:        "",
			AuthProvider:    "google",
			IsEmailVerified: true,
		}
		if err := newUser.CreateUser(database.DB); err != nil {
			logger.L.Error("Failed to create Google user", "error", err)
			h.redirectSigninError(w, r, "user_creation_failed")
			return
		}
		user = newUser
	} else if user.AuthProvider == "local" || user.Password != "" {
		logger.L.Warn("Google login attempt for existing local account", "email", user.Email)
		h.redirectSigninError(w, r, "email_already_exists_local")
		return
	}

	appToken, err := h.authService.GenerateToken(fmt.Sprintf("%d", user.ID))
	if err != nil {
		logger.L.Error("Failed to generate app token for Google user", "error", err)
		h.redirectSigninError(w, r, "token_generation_failed")
		return
	}

	refreshToken, err := h.authService.GenerateRefreshToken()
	if err == nil {
		session := &model.Session{
			UserID:       user.ID,
			Token:        appToken,
			RefreshToken: refreshToken,
			UserAgent:    r.UserAgent(),
			ClientIP:     r.RemoteAddr,
			ExpiresAt:    time.Now().Add(config.Cfg.RefreshTokenExpiry),
		}
		if err := model.CreateSession(database.DB, session); err != nil {
			logger.L.Error("Failed to create session for Google user", "userID", user.ID, "error", err)
		}
	}

	redirectURL := fmt.Sprintf("%s/auth/google/callback?token=%s&user=%s",
		config.Cfg.FrontendBaseURL, appToken, url.QueryEscape(string(contents)))
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

func (h *UserHandler) redirectSigninError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, fmt.Sprintf("%s/signin?error=%s", config.Cfg.FrontendBaseURL, code), http.StatusTemporaryRedirect)
}

func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
