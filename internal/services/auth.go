package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/platform/apierr"
	"github.com/yungbote/studentaid-backend/internal/platform/ctxutil"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

// Roles carried in the access token. Each route group requires one of them.
const (
	RoleStudent     = "student"
	RoleInstitution = "institution"
	RoleMinistry    = "aest"
	RoleSystem      = "system"
)

type JWTClaims struct {
	jwt.RegisteredClaims
	Role       string `json:"role"`
	StudentID  string `json:"student_id,omitempty"`
	LocationID string `json:"location_id,omitempty"`
}

// AuthService verifies access tokens issued by the identity provider and attaches the
// acting user to the request context.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	IssueToken(rd ctxutil.RequestData, ttl time.Duration) (string, error)
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
	now          func() time.Time
}

func NewAuthService(log *logger.Logger, jwtSecretKey string) AuthService {
	return &authService{
		log:          log.With("service", "AuthService"),
		jwtSecretKey: jwtSecretKey,
		now:          time.Now,
	}
}

// IssueToken signs a token for rd. Used by local tooling and tests; production tokens come
// from the identity provider sharing the secret.
func (as *authService) IssueToken(rd ctxutil.RequestData, ttl time.Duration) (string, error) {
	now := as.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   rd.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: rd.Role,
	}
	if rd.StudentID != uuid.Nil {
		claims.StudentID = rd.StudentID.String()
	}
	if rd.LocationID != uuid.Nil {
		claims.LocationID = rd.LocationID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Unauthorized(fmt.Errorf("missing token"))
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, apierr.Unauthorized(fmt.Errorf("failed to parse token: %w", err))
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.Unauthorized(fmt.Errorf("invalid or expired token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized(fmt.Errorf("invalid user id in token: %w", err))
	}
	rd := &ctxutil.RequestData{UserID: userID, Role: claims.Role}
	switch claims.Role {
	case RoleStudent:
		if rd.StudentID, err = uuid.Parse(claims.StudentID); err != nil {
			return ctx, apierr.Unauthorized(fmt.Errorf("student token without student_id"))
		}
	case RoleInstitution:
		if rd.LocationID, err = uuid.Parse(claims.LocationID); err != nil {
			return ctx, apierr.Unauthorized(fmt.Errorf("institution token without location_id"))
		}
	case RoleMinistry, RoleSystem:
	default:
		return ctx, apierr.Unauthorized(fmt.Errorf("unknown role %q", claims.Role))
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}
