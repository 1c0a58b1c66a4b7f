package usecase

import (
	"context"
	"testing"
	"time"

	"massage-booking/config"
	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/domain/entity"
	"massage-booking/internal/repository"
	"massage-booking/internal/service"
	"massage-booking/internal/testutil"
	"massage-booking/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type authFixture struct {
	db         *gorm.DB
	jwtService *jwt.JWTService
	tokenStore *service.TokenStore
	usecase    AuthUsecase
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db := testutil.NewDB(t)
	_, client := testutil.NewRedis(t)
	log := testutil.Logger()
	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
	tokenStore := service.NewTokenStore(client)
	auditService := service.NewAuditService(log, repository.NewAuditLogRepository())

	return &authFixture{
		db:         db,
		jwtService: jwtService,
		tokenStore: tokenStore,
		usecase: NewAuthUsecase(db, log, repository.NewUserRepository(), repository.NewRoleRepository(),
			auditService, jwtService, tokenStore),
	}
}

func (f *authFixture) register(t *testing.T, email string) *dto.UserResponse {
	t.Helper()

	user, err := f.usecase.Register(context.Background(), &dto.RegisterRequest{
		Email:    email,
		Password: "correct horse",
		FullName: "Jane Doe",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)

	user := f.register(t, " Jane@Example.com ")
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, entity.RoleCustomer, user.Role)

	var roles []entity.UserRole
	require.NoError(t, f.db.Where("user_id = ?", user.ID).Find(&roles).Error)
	require.Len(t, roles, 1)
	assert.Equal(t, entity.RoleCustomer, roles[0].Role)

	_, err := f.usecase.Register(context.Background(), &dto.RegisterRequest{
		Email: "jane@example.com", Password: "another pass", FullName: "Jane Again",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.register(t, "jane@example.com")

	_, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.usecase.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	tokens, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "JANE@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.EqualValues(t, 900, tokens.ExpiresIn)

	claims, err := f.jwtService.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	valid, err := f.tokenStore.IsValid(ctx, jwt.AccessToken, user.ID, claims.TokenID)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestRefreshToken_Rotates(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "jane@example.com")

	tokens, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken, "access tokens cannot refresh")

	rotated, err := f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	_, err = f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked, "a refresh token is single use")
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.register(t, "jane@example.com")

	tokens, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "correct horse"})
	require.NoError(t, err)
	access, err := f.jwtService.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.usecase.Logout(ctx, user.ID, access.TokenID, &dto.LogoutRequest{RefreshToken: tokens.RefreshToken}))

	valid, err := f.tokenStore.IsValid(ctx, jwt.AccessToken, user.ID, access.TokenID)
	require.NoError(t, err)
	assert.False(t, valid)

	_, err = f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestGrantAdministrator(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.register(t, "owner@example.com")

	_, err := f.usecase.GrantAdministrator(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	got, err := f.usecase.GrantAdministrator(ctx, "Owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdministrator, got.Role)

	// granting twice is a no-op
	_, err = f.usecase.GrantAdministrator(ctx, "owner@example.com")
	require.NoError(t, err)

	isAdmin, err := repository.NewRoleRepository().HasRole(ctx, f.db, user.ID, entity.RoleAdministrator)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	me, err := f.usecase.GetCurrentUser(ctx, entity.AdministratorPrincipal(user.ID))
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdministrator, me.Role)

	_, err = f.usecase.GetCurrentUser(ctx, entity.AnonymousPrincipal())
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestAuditLogs_AdministratorOnly(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.register(t, "jane@example.com")
	uc := NewAuditLogUsecase(f.db, testutil.Logger(), repository.NewAuditLogRepository())

	_, err := uc.GetAllAuditLogs(ctx, entity.CustomerPrincipal(user.ID))
	assert.ErrorIs(t, err, ErrAuthorizationDenied)

	logs, err := uc.GetAllAuditLogs(ctx, entity.AdministratorPrincipal(user.ID))
	require.NoError(t, err)
	require.Equal(t, 1, logs.Total)
	assert.Equal(t, entity.AuditActionUserRegister, logs.Logs[0].Action)

	got, err := uc.GetAuditLog(ctx, entity.AdministratorPrincipal(user.ID), logs.Logs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, logs.Logs[0].ID, got.ID)

	_, err = uc.GetAuditLog(ctx, entity.AdministratorPrincipal(user.ID), 9999)
	assert.ErrorIs(t, err, ErrAuditLogNotFound)
}
