package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/infrastructure/config"
	"github.com/trackbench/core/internal/infrastructure/logger"
	"github.com/trackbench/core/internal/ports"
)

// Claims represents the session token claims
type Claims struct {
	Username string            `json:"username"`
	Role     entities.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthService is the session gate: it issues session tokens for known
// identities and validates them on every guarded request.
type AuthService struct {
	userRepo  ports.UserRepository
	audit     ports.AuditLog
	jwtConfig config.JWTConfig
	logger    *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo ports.UserRepository, audit ports.AuditLog, jwtConfig config.JWTConfig, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		audit:     audit,
		jwtConfig: jwtConfig,
		logger:    logger,
	}
}

// Login resolves the username case-insensitively and issues a session token
// when the identity exists.
//
// The password field is accepted but not verified: identity records carry no
// credential to check it against, and the login contract predates credential
// provisioning. TODO: verify the password against User.PasswordHash once all
// provisioned identities carry one.
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			s.logger.Warnw("Login attempt with unknown username", "username", req.Username)
			s.recordAudit(ctx, entities.AuditLevelWarning, "Login failed", map[string]interface{}{
				"attempt_user": req.Username,
			})
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("look up identity: %w", err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	s.logger.Infow("User logged in", "username", user.Username, "role", user.Role)
	s.recordAudit(ctx, entities.AuditLevelSuccess, "Login succeeded", map[string]interface{}{
		"user": user.Username,
	})

	return &ports.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.jwtConfig.ExpiresIn.Seconds()),
		Username:  user.Username,
		Role:      user.Role,
	}, nil
}

// Logout records the end of a session. Token invalidation is client-side:
// the cookie is cleared by the handler and the token simply expires.
func (s *AuthService) Logout(ctx context.Context, username string) {
	s.logger.Infow("User logged out", "username", username)
	s.recordAudit(ctx, entities.AuditLevelInfo, "Session closed by user", map[string]interface{}{
		"user": username,
	})
}

// ValidateToken parses and verifies a session token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, entities.ErrUnauthorized
	}

	return claims, nil
}

func (s *AuthService) generateToken(user *entities.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtConfig.Issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.ExpiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}

func (s *AuthService) recordAudit(ctx context.Context, level entities.AuditLevel, message string, meta map[string]interface{}) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.Append(ctx, entities.AuditEntry{
		Level:   level,
		Message: message,
		Meta:    meta,
	}); err != nil {
		s.logger.Warnw("Failed to record audit entry", "error", err)
	}
}
