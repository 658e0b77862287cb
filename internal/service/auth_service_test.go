package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

func newAuthFixture(t *testing.T) (*AuthService, *memAdminStore, *memDonorStore) {
	t.Helper()
	admins := &memAdminStore{admins: []models.AdminUser{
		{ID: "adm-1", Username: "root", PasswordHash: mustHash(t, "password123"), Role: models.RoleSuperAdmin},
	}}
	active := sampleDonor("d1", "BDC-ID1001", "Ana", models.BloodGroupAPos)
	active.PasswordHash = mustHash(t, "ABC123")
	blocked := sampleDonor("d2", "BDC-ID1002", "Bo", models.BloodGroupBPos)
	blocked.PasswordHash = mustHash(t, "XYZ789")
	blocked.IsBlocked = true
	donors := newMemDonorStore(active, blocked)

	svc := NewAuthService(admins, donors, nil, nil, AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "donor-registry-api",
		HashCost:          bcrypt.MinCost,
	})
	return svc, admins, donors
}

func TestAuthServiceAdminLogin(t *testing.T) {
	svc, admins, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Identifier: "root", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, models.PrincipalAdmin, resp.Kind)
	require.NotNil(t, resp.Admin)
	assert.NotNil(t, resp.Admin.LastLogin)
	assert.Contains(t, admins.lastLogin, "adm-1")
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "adm-1", claims.PrincipalID())
	assert.Equal(t, models.RoleSuperAdmin, claims.Role)
	assert.Equal(t, "root", claims.Username)
}

func TestAuthServiceDonorLogin(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Identifier: "BDC-ID1001", Password: "ABC123"})
	require.NoError(t, err)
	assert.Equal(t, models.PrincipalDonor, resp.Kind)
	require.NotNil(t, resp.Donor)
	assert.Equal(t, "d1", resp.Donor.ID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.PrincipalDonor, claims.Kind)
	assert.Empty(t, claims.Role)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, models.LoginRequest{Identifier: "root", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrAuthFailure)

	_, err = svc.Login(ctx, models.LoginRequest{Identifier: "nobody", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrAuthFailure)

	_, err = svc.Login(ctx, models.LoginRequest{Identifier: "BDC-ID1002", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrAuthFailure, "a wrong password never reveals the block")

	_, err = svc.Login(ctx, models.LoginRequest{Identifier: "BDC-ID1002", Password: "XYZ789"})
	assert.ErrorIs(t, err, appErrors.ErrAccountBlocked)

	_, err = svc.Login(ctx, models.LoginRequest{Identifier: "root"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceValidateTokenRejectsForgeries(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		Kind:             models.PrincipalAdmin,
		Role:             models.RoleSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "adm-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		Kind:             models.PrincipalDonor,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "d1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, admins, _ := newAuthFixture(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "adm-1", models.ChangePasswordRequest{OldPassword: "bad", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	require.NoError(t, svc.ChangePassword(ctx, "adm-1", models.ChangePasswordRequest{OldPassword: "password123", NewPassword: "newpass1"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admins.admins[0].PasswordHash), []byte("newpass1")))

	err = svc.ChangePassword(ctx, "ghost", models.ChangePasswordRequest{OldPassword: "x", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
