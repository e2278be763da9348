package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/plansage/plansage/pkg/log"
	"github.com/plansage/plansage/pkg/storage"
	"github.com/plansage/plansage/pkg/types"
)

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("reqPath", r.URL.Path)))

		allowNoLogin := r.URL.Path == "/api/auth/login" || r.URL.Path == "/api/auth/status"
		ignoreUserNotFound := r.URL.Path == "/api/auth/login" || r.URL.Path == "/api/auth/status" || r.URL.Path == "/api/auth/logout"

		if s.bypassAuth {
			user := types.User{
				ID:    "dev",
				Email: "dev@localhost",
				Admin: true,
			}
			ctx = context.WithValue(ctx, userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		var email string
		var userID string
		var authSuccess bool

		authCookie, err := r.Cookie(authTokenCookie)
		if err != nil && !errors.Is(err, http.ErrNoCookie) {
			log.Ctx(ctx).ErrorContext(ctx, "failed to get auth cookie", slog.Any("error", err))
			writeJSONError(w, "missing auth cookie", http.StatusBadRequest)
			return
		}
		if authCookie != nil {
			email, userID, _, err = s.authenticateToken(ctx, authCookie.Value)
			if err != nil {
				log.Ctx(ctx).ErrorContext(ctx, "auth token validation failed", slog.Any("error", err))
				writeJSONError(w, "invalid auth token", http.StatusBadRequest)
				return
			}
			authSuccess = true
		} else if !allowNoLogin {
			log.Ctx(ctx).WarnContext(ctx, "no auth cookie found")
			writeJSONError(w, "missing auth cookie", http.StatusBadRequest)
			return
		}

		if authSuccess {
			user, err := s.storage.GetUser(ctx, userID)
			if err != nil {
				if ignoreUserNotFound && errors.Is(err, storage.ErrUserNotFound) {
					log.Ctx(ctx).InfoContext(ctx, "user not found, will register on login", slog.String("userID", userID), slog.String("email", email))
					// Put a stub user in context so the login handler can create it
					ctx = context.WithValue(ctx, userToRegisterContextKey, types.User{
						ID:    userID,
						Email: email,
					})
				} else {
					log.Ctx(ctx).WarnContext(ctx, "user lookup failed", slog.String("userID", userID), slog.String("email", email), slog.Any("error", err))
					writeJSONError(w, "user lookup failed", http.StatusForbidden)
					return
				}
			} else {
				user.Admin = s.isAdmin(user)
				ctx = context.WithValue(ctx, userContextKey, user)
			}
		} else if !allowNoLogin {
			log.Ctx(ctx).WarnContext(ctx, "unauthenticated request")
			s.clearCookie(w)
			writeJSONError(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if userID != "" {
			ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("authUserID", userID)))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// since we failed to read, don't return JSON error
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	email, subject, expires, err := s.authenticateToken(ctx, req.Token)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to validate id token", slog.Any("error", err))
		writeJSONError(w, "invalid id token", http.StatusUnauthorized)
		return
	}

	if email == "" {
		log.Ctx(ctx).WarnContext(ctx, "invalid email in id token")
		writeJSONError(w, "invalid oidc claims", http.StatusUnauthorized)
		return
	}

	// First login registers the user.
	if _, err := s.storage.GetUser(ctx, subject); err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			log.Ctx(ctx).ErrorContext(ctx, "user lookup failed", slog.Any("error", err))
			writeJSONError(w, "user lookup failed", http.StatusInternalServerError)
			return
		}
		if err := s.storage.CreateUser(ctx, types.User{ID: subject, Email: email}); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to create user", slog.Any("error", err))
			writeJSONError(w, "failed to create user", http.StatusInternalServerError)
			return
		}
		log.Ctx(ctx).InfoContext(ctx, "registered new user", slog.String("userID", subject), slog.String("email", email))
	}

	log.Ctx(ctx).InfoContext(ctx, "login token validated successfully", slog.String("email", email), slog.String("subject", subject))

	// Set the cookie
	http.SetCookie(w, &http.Cookie{
		Name:     authTokenCookie,
		Value:    req.Token,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
	})

	w.WriteHeader(http.StatusOK)
}

func (s *Server) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authTokenCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearCookie(w)
	w.WriteHeader(http.StatusOK)
}

type authStatusResponse struct {
	LoggedIn     bool              `json:"loggedIn"`
	Email        string            `json:"email"`
	AuthRequired bool              `json:"authRequired"`
	ClientIDs    map[string]string `json:"clientIDs"`
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	var loggedIn bool
	user := s.getUser(r)
	if user.ID != "" {
		loggedIn = true
	} else if userToRegister, ok := r.Context().Value(userToRegisterContextKey).(types.User); ok {
		user = userToRegister
		loggedIn = true
	}

	err := json.NewEncoder(w).Encode(authStatusResponse{
		LoggedIn:     loggedIn,
		Email:        user.Email,
		AuthRequired: len(s.oidcAudiences) > 0,
		ClientIDs:    s.oidcAudiences,
	})
	if err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) authenticateToken(ctx context.Context, token string) (string, string, time.Time, error) {
	var errs []error

	for providerName, verifier := range s.oidcVerifiers {
		idToken, err := verifier(ctx, token)
		if err == nil {
			var claims struct {
				Email string `json:"email"`
			}
			err = idToken.Claims(&claims)
			if err == nil {
				return claims.Email, idToken.Subject, idToken.Expiry, nil
			}
		}
		errs = append(errs, fmt.Errorf("%s verifier failed: %v", providerName, err))
	}

	if len(errs) > 1 {
		return "", "", time.Time{}, errors.Join(errs...)
	}
	if len(errs) == 1 {
		return "", "", time.Time{}, errs[0]
	}
	return "", "", time.Time{}, errors.New("no valid audiences configured or token invalid")
}
