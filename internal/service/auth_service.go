package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"forum/internal/cache"
	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/policy"
	"forum/internal/repository"
	"forum/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "forum-api"
	tokenAudience = "forum-client"
	// TokenTTL is the lifetime of an access token.
	TokenTTL = 24 * time.Hour
)

var errInvalidCredentials = models.NewUnauthorizedError("Invalid credentials")

// Session is returned by signup and login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// AuthService is the identity collaborator: it issues and revokes JWTs and
// resolves a token into a policy.Identity.
type AuthService struct {
	users  repository.UserRepository
	secret []byte
	rdb    *redis.Client
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, secret string, rdb *redis.Client) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		rdb:    rdb,
		now:    time.Now,
	}
}

func (s *AuthService) Signup(ctx context.Context, form validation.SignupForm) (*Session, error) {
	if err := validation.Struct(&form); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(form.Password); err != nil {
		return nil, models.NewFieldValidationError(map[string]string{"password": err.Error()})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
		Password: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, form validation.LoginForm) (*Session, error) {
	if err := validation.Struct(&form); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, form.Username)
	if models.HasCode(err, models.CodeNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)) != nil {
		return nil, errInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	if len(s.secret) == 0 {
		return nil, models.NewInternalError(errors.New("JWT secret not configured"))
	}

	now := s.now()
	expires := now.Add(TokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{Token: signed, ExpiresAt: expires, User: user}, nil
}

func (s *AuthService) parse(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway. Without Redis
// the token stays valid until expiry.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	claims, err := s.parse(raw)
	if err != nil {
		return models.NewUnauthorizedError("Invalid or expired token")
	}
	if s.rdb == nil {
		middleware.Logger.WarnContext(ctx, "logout without redis; token not revoked")
		return nil
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, cache.RevokedTokenKey(claims.ID), 1, ttl).Err(); err != nil {
		return models.NewInternalError(fmt.Errorf("revoke token: %w", err))
	}
	return nil
}

// Identify resolves a raw token. Any failure yields the anonymous identity;
// the superuser flag is read from the store, not from the token.
func (s *AuthService) Identify(ctx context.Context, raw string) policy.Identity {
	if raw == "" {
		return policy.Anonymous()
	}
	claims, err := s.parse(raw)
	if err != nil {
		return policy.Anonymous()
	}
	if s.revoked(ctx, claims.ID) {
		return policy.Anonymous()
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || id == 0 {
		return policy.Anonymous()
	}
	superuser, err := s.users.IsSuperuser(ctx, uint(id))
	if err != nil {
		if !models.HasCode(err, models.CodeNotFound) {
			middleware.Logger.ErrorContext(ctx, "identify: superuser lookup failed",
				slog.Uint64("user_id", id), slog.String("error", err.Error()))
		}
		return policy.Anonymous()
	}
	return policy.Identity{UserID: uint(id), Superuser: superuser}
}

func (s *AuthService) revoked(ctx context.Context, jti string) bool {
	if s.rdb == nil || jti == "" {
		return false
	}
	n, err := s.rdb.Exists(ctx, cache.RevokedTokenKey(jti)).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "revocation check failed", slog.String("error", err.Error()))
		return false
	}
	return n > 0
}
