package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/copafacil/copa-manager/services"
)

type contextKey string

const adminContextKey contextKey = "admin"

// TokenParser is the slice of the auth service the middleware needs.
type TokenParser interface {
	ParseToken(tokenString string) (*services.AdminClaims, error)
}

// Authenticate verifies the bearer token and puts the admin claims on the
// request context.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := parser.ParseToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), adminContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CampaignScope blocks admins from reaching another campaign's resources:
// the {slug} route param must resolve to the campaign the token was issued
// for.
func CampaignScope(campaigns services.CampaignService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := AdminFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing admin claims")
				return
			}
			slug := chi.URLParam(r, "slug")
			campaign, err := campaigns.GetByID(r.Context(), claims.CampaignID)
			if err != nil {
				if errors.Is(err, services.ErrCampaignNotFound) {
					writeError(w, http.StatusForbidden, "campaign access denied")
					return
				}
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if campaign.Slug != slug {
				writeError(w, http.StatusForbidden, "campaign access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner restricts a route to the campaign owner.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := AdminFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing admin claims")
			return
		}
		if !claims.IsOwner {
			writeError(w, http.StatusForbidden, "owner access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminFromContext returns the verified claims placed by Authenticate.
func AdminFromContext(ctx context.Context) (*services.AdminClaims, bool) {
	claims, ok := ctx.Value(adminContextKey).(*services.AdminClaims)
	return claims, ok
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
