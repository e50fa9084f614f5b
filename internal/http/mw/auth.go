// Package mw provides HTTP and Huma middleware.
package mw

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SecurityScheme is the name of the security scheme used in OpenAPI.
const SecurityScheme = "bearerAuth"

// contextKey is a private type for context values set by this package.
type contextKey string

// UserClaimsKey is the context key under which validated claims are stored.
const UserClaimsKey contextKey = "userClaims"

// OperationMetadataKey is the key type for extra operation requirements.
type OperationMetadataKey string

// MetaKeyRequireAdmin marks an operation as admin-only.
const MetaKeyRequireAdmin OperationMetadataKey = "requireAdmin"

// UserClaims are the validated session claims attached to a request.
type UserClaims struct {
	UserID  string `json:"sub"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"admin"`
}

// GetUserClaims returns the claims stored in the context, nil when the
// request was not authenticated.
func GetUserClaims(ctx context.Context) *UserClaims {
	claims, _ := ctx.Value(UserClaimsKey).(*UserClaims)
	return claims
}

// GetUserID returns the authenticated user's ID, empty when unauthenticated.
func GetUserID(ctx context.Context) string {
	claims := GetUserClaims(ctx)
	if claims == nil {
		return ""
	}
	return claims.UserID
}

// GenerateToken mints an HS256 session token for the given user. Used by
// tests and local tooling; production tokens come from the identity
// provider sharing the same signing secret.
func GenerateToken(secret []byte, userID, email string, isAdmin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"admin": isAdmin,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

// ValidateToken verifies an HS256 session token and returns its claims.
func ValidateToken(secret []byte, tokenString string) (*UserClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("token missing subject")
	}
	email, _ := mapClaims["email"].(string)
	isAdmin, _ := mapClaims["admin"].(bool)

	return &UserClaims{UserID: sub, Email: email, IsAdmin: isAdmin}, nil
}

// HumaAuth returns a Huma middleware that validates bearer tokens for
// operations whose security requirements name the bearerAuth scheme.
// Validated claims are attached to the request context.
func HumaAuth(api huma.API, secret []byte) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		if op == nil || !operationRequiresAuth(op) {
			next(ctx)
			return
		}

		authHeader := ctx.Header("Authorization")
		if authHeader == "" {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing authorization header")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := ValidateToken(secret, token)
		if err != nil {
			slog.Debug("auth validation failed", "error", err)
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid token")
			return
		}

		if requiresAdmin(op) && !claims.IsAdmin {
			huma.WriteErr(api, ctx, http.StatusForbidden, "admin access required")
			return
		}

		newCtx := context.WithValue(ctx.Context(), UserClaimsKey, claims)
		next(huma.WithContext(ctx, newCtx))
	}
}

// operationRequiresAuth checks if the operation names the bearerAuth scheme.
func operationRequiresAuth(op *huma.Operation) bool {
	for _, secReq := range op.Security {
		if _, ok := secReq[SecurityScheme]; ok {
			return true
		}
	}
	return false
}

// requiresAdmin checks operation metadata for the admin requirement.
func requiresAdmin(op *huma.Operation) bool {
	if op.Metadata == nil {
		return false
	}
	b, _ := op.Metadata[string(MetaKeyRequireAdmin)].(bool)
	return b
}
