package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/pkg/common"
	"github.com/talkincode/storefront/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Claims are carried by admin bearer tokens.
type Claims struct {
	AdminID  int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RegisterInput is a new admin account request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Service issues and verifies admin tokens. Tokens are stateless and stay
// valid until they expire.
type Service struct {
	repo AdminRepository
	cfg  *config.AppConfig
	now  func() time.Time
}

func NewService(repo AdminRepository, cfg *config.AppConfig) *Service {
	return &Service{repo: repo, cfg: cfg, now: time.Now}
}

// Login checks the password against the stored hash and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", domain.NewValidationError("Username and password are required")
	}

	admin, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.Incr(metrics.AdminLoginFailure)
		return "", domain.NewAuthError("admin not found")
	}
	if err != nil {
		return "", domain.NewStorageError("failed to query admin", errors.Wrap(err, "get admin"))
	}

	if !common.CheckPassword(admin.Password, password) {
		metrics.Incr(metrics.AdminLoginFailure)
		zap.L().Warn("admin login rejected",
			zap.String("namespace", "auth"),
			zap.String("username", username))
		return "", domain.NewAuthError("invalid credentials")
	}

	token, err := s.issueToken(admin)
	if err != nil {
		return "", domain.NewStorageError("failed to issue token", err)
	}

	metrics.Incr(metrics.AdminLoginSuccess)
	zap.L().Info("admin logged in",
		zap.String("namespace", "auth"),
		zap.Int64("id", admin.ID),
		zap.String("username", admin.Username))
	return token, nil
}

// Register hashes the password and stores a new admin account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.SysAdmin, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, domain.NewValidationError("Username and password are required")
	}

	hashed, err := common.HashPassword(in.Password, s.cfg.Admin.BcryptCost)
	if err != nil {
		return nil, domain.NewValidationError("Password cannot be used")
	}

	admin := &domain.SysAdmin{
		Username: username,
		Email:    strings.TrimSpace(in.Email),
		Password: hashed,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, domain.NewStorageError("failed to create admin", errors.Wrapf(err, "create admin %s", username))
	}

	metrics.Incr(metrics.AdminRegister)
	zap.L().Info("admin registered",
		zap.String("namespace", "auth"),
		zap.Int64("id", admin.ID),
		zap.String("username", admin.Username))
	return admin, nil
}

// ParseToken verifies signature, algorithm and expiry of an admin token.
func (s *Service) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Web.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, &domain.Error{Kind: domain.KindAuth, Message: "invalid or expired token", Err: err}
	}
	return claims, nil
}

func (s *Service) issueToken(admin *domain.SysAdmin) (string, error) {
	now := s.now()
	claims := Claims{
		AdminID:  admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.System.Appid,
			Subject:   fmt.Sprintf("%d", admin.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Web.TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Web.Secret))
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}
