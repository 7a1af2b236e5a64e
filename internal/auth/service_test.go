package auth

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := config.DefaultAppConfig()
	cfg.Web.Secret = "test-secret"
	cfg.Admin.BcryptCost = bcrypt.MinCost
	return NewService(NewGormAdminRepository(db), cfg)
}

func TestRegisterThenLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	admin, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Positive(t, admin.ID)
	assert.NotEqual(t, "correct horse", admin.Password)

	before := time.Now()
	token, err := svc.Login(ctx, "alice", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, "Storefront", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, before.Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice", "not-the-secret")
	require.Error(t, err)
	assert.Empty(t, token)
	assert.Equal(t, domain.KindAuth, domain.KindOf(err))
	assert.Equal(t, "invalid credentials", domain.MessageOf(err, ""))
}

func TestLoginUnknownAdmin(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody", "secret")
	require.Error(t, err)
	assert.Equal(t, domain.KindAuth, domain.KindOf(err))
	assert.Equal(t, "admin not found", domain.MessageOf(err, ""))
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), "", "secret")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = svc.Login(context.Background(), "alice", "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "one"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "two"})
	require.Error(t, err)
	assert.Equal(t, domain.KindStorage, domain.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "  ", Password: "x"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = svc.Register(context.Background(), RegisterInput{Username: "bob"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestRegisteredAdminHidesHash(t *testing.T) {
	svc := newTestService(t)
	admin, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	data, err := json.Marshal(admin)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), admin.Password)
}

func TestParseTokenRejectsForeignAndExpiredTokens(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ParseToken("not.a.token")
		assert.Equal(t, domain.KindAuth, domain.KindOf(err))
	})

	t.Run("other secret", func(t *testing.T) {
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			AdminID:  1,
			Username: "alice",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString([]byte("someone-else"))
		require.NoError(t, err)
		_, err = svc.ParseToken(forged)
		assert.Equal(t, domain.KindAuth, domain.KindOf(err))
	})

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		defer func() { svc.now = time.Now }()

		token, err := svc.Login(ctx, "alice", "secret")
		require.NoError(t, err)
		_, err = svc.ParseToken(token)
		assert.Equal(t, domain.KindAuth, domain.KindOf(err))
	})
}
