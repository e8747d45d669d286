package services

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/denzelpenzel/skillswap/internal/config"
	"github.com/denzelpenzel/skillswap/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "skillswap-api"

// AuthService issues and verifies session tokens and hashes credentials
type AuthService struct {
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new auth service
func NewAuthService(jwtCfg config.JWTConfig, bcryptCost int, logger *zap.Logger) *AuthService {
	return &AuthService{
		jwtSecret:  []byte(jwtCfg.Secret),
		tokenTTL:   jwtCfg.TokenTTL,
		bcryptCost: bcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

// Claims represents session token claims
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken generates a signed session token for a user
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("Failed to sign JWT token", zap.Error(err))
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Debug("JWT token generated", zap.Int64("user_id", user.ID))

	return tokenString, nil
}

// ValidateToken validates a session token and returns its claims. Every
// failure wraps models.ErrUnauthenticated.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token required", models.ErrUnauthenticated)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", models.ErrUnauthenticated)
		}
		s.logger.Debug("Invalid JWT token", zap.Error(err))
		return nil, fmt.Errorf("%w: invalid token", models.ErrUnauthenticated)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: invalid token claims", models.ErrUnauthenticated)
	}

	return claims, nil
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword verifies a password against its hash
func (s *AuthService) VerifyPassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.ErrInvalidCredentials
	}

	return nil
}

// BurnPasswordCheck spends the same work as VerifyPassword against a throwaway
// hash, so unknown identities take as long to reject as wrong passwords.
func (s *AuthService) BurnPasswordCheck(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("skillswap-placeholder"), s.bcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}
