package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/srms/internal/config"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Claims extends JWT standard claims with the session identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID string     `json:"user_id"`
	Email  string     `json:"email"`
	Name   string     `json:"name"`
	Role   model.Role `json:"role"`
}

// User rebuilds the identity carried by the token.
func (c *Claims) User() model.User {
	return model.User{ID: c.UserID, Email: c.Email, Name: c.Name, Role: c.Role}
}

// AuthService handles authentication, JWT, and session management.
type AuthService struct {
	cfg      *config.Config
	rdb      *redis.Client
	admins   repository.AdminRepository
	students repository.StudentRepository
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	cfg *config.Config,
	rdb *redis.Client,
	admins repository.AdminRepository,
	students repository.StudentRepository,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		cfg:      cfg,
		rdb:      rdb,
		admins:   admins,
		students: students,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login authenticates an email/password pair and issues a token.
// Admin accounts are checked before students.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return &model.LoginResponse{User: user, Token: token}, nil
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (model.User, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if admin.IsActive && s.CheckPassword(admin.PasswordHash, password) == nil {
			return admin.User(), nil
		}
	case !errors.Is(err, repository.ErrNotFound):
		return model.User{}, fmt.Errorf("lookup admin: %w", err)
	}

	student, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("lookup student: %w", err)
	}
	if !student.IsActive {
		return model.User{}, ErrInvalidCredentials
	}
	if err := s.CheckPassword(student.PasswordHash, password); err != nil {
		return model.User{}, err
	}
	return student.User(), nil
}

// Register creates an inactive student account awaiting admin approval.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.Student, error) {
	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	student := &model.Student{
		RollNumber:    req.RollNumber,
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  hash,
		Class:         req.Class,
		Phone:         req.Phone,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
		IsActive:      false,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}

	s.log.Info().Str("student_id", student.ID).Msg("Registration pending approval")
	return student, nil
}

// GenerateToken signs a JWT for user and registers its JTI in Redis with
// the same expiry. Several live sessions per user are allowed.
func (s *AuthService) GenerateToken(ctx context.Context, user model.User) (string, error) {
	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := s.rdb.Set(ctx, config.CacheKey.SessionKey(jti), user.ID, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateSession checks that the token's JTI has not been logged out.
func (s *AuthService) ValidateSession(ctx context.Context, claims *Claims) error {
	n, err := s.rdb.Exists(ctx, config.CacheKey.SessionKey(claims.ID)).Result()
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if n == 0 {
		return ErrSessionRevoked
	}
	return nil
}

// Logout revokes the session behind claims.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if err := s.rdb.Del(ctx, config.CacheKey.SessionKey(claims.ID)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.log.Info().Str("user_id", claims.UserID).Msg("User logged out")
	return nil
}
