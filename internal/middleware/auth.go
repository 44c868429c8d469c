package middleware

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cepho/cepho-api/internal/database"
	"github.com/cepho/cepho-api/internal/models"
	"github.com/cepho/cepho-api/internal/request"
	"github.com/cepho/cepho-api/internal/services/oidc"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auth creates authentication middleware that validates JWT tokens and
// auto-provisions users on first login
func Auth(db *database.DB, oidcProvider *oidc.Provider, jwksManager *oidc.JWKSManager, providerName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondAuthError(w, http.StatusUnauthorized, "Missing Authorization header", logger)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondAuthError(w, http.StatusUnauthorized, "Invalid Authorization header format", logger)
				return
			}

			tokenString := parts[1]

			ctx := r.Context()
			oidcConfig, err := oidcProvider.GetConfig(ctx, providerName)
			if err != nil {
				respondAuthError(w, http.StatusInternalServerError, "Failed to get OIDC configuration", logger)
				return
			}

			if oidcConfig.JWKSUrl == nil {
				respondAuthError(w, http.StatusInternalServerError, "JWKS URL not configured", logger)
				return
			}

			verifier := oidc.NewVerifier(jwksManager, oidcConfig.Issuer)
			claims, err := verifier.Verify(ctx, tokenString, *oidcConfig.JWKSUrl)
			if err != nil {
				logger.Warn("token_verification_failed",
					zap.Error(err),
					zap.String("issuer", oidcConfig.Issuer),
				)
				respondAuthError(w, http.StatusUnauthorized, "Invalid or expired token", logger)
				return
			}

			userRepo := database.NewUserRepository(db)
			user, err := userRepo.GetByProviderID(ctx, claims.Sub)
			if err != nil {
				// The repository wraps sql.ErrNoRows; errors.Is unwraps it.
				if errors.Is(err, sql.ErrNoRows) {
					user = &models.User{
						ID:            uuid.New(),
						Email:         claims.Email,
						ProviderID:    &claims.Sub,
						Name:          &claims.Name,
						EmailVerified: true,
					}
					if err := userRepo.Create(ctx, user); err != nil {
						respondAuthError(w, http.StatusInternalServerError, "Failed to create user", logger)
						return
					}
					logger.Info("user_provisioned",
						zap.String("user_id", user.ID.String()),
					)
				} else {
					logger.Error("user_lookup_failed", zap.Error(err))
					respondAuthError(w, http.StatusInternalServerError, "Database error", logger)
					return
				}
			} else {
				// Refresh profile fields when the token disagrees with the row.
				if user.SyncProfile(claims.Email, claims.Name) {
					if err := userRepo.Update(ctx, user); err != nil {
						logger.Warn("user_profile_refresh_failed",
							zap.String("user_id", user.ID.String()),
							zap.Error(err),
						)
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, user)))
		})
	}
}

func respondAuthError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_auth_error", zap.Error(err))
	}
}
