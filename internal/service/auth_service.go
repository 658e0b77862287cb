package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	HashCost          int
}

// AuthService authenticates staff and donors and issues access tokens.
type AuthService struct {
	admins    AdminStore
	donors    DonorStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(admins AdminStore, donors DonorStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 12 * time.Hour
	}
	if config.HashCost == 0 {
		config.HashCost = bcrypt.DefaultCost
	}
	return &AuthService{admins: admins, donors: donors, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login checks the identifier against admin usernames first and donor login ids second.
// A blocked donor with valid credentials is refused with ACCOUNT_BLOCKED.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	admin, err := s.admins.FindByUsername(ctx, req.Identifier)
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) == nil {
			return s.adminSession(ctx, admin)
		}
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admin")
	}

	donor, err := s.donors.FindByLoginID(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrAuthFailure, appErrors.ErrAuthFailure.Message)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch donor")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(donor.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrAuthFailure, appErrors.ErrAuthFailure.Message)
	}
	if donor.IsBlocked {
		return nil, appErrors.Clone(appErrors.ErrAccountBlocked, appErrors.ErrAccountBlocked.Message)
	}

	issuedAt := s.now().UTC()
	token, err := s.generateAccessToken(models.PrincipalDonor, donor.ID, donor.LoginID, "", issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		Kind:        models.PrincipalDonor,
		Donor:       donor,
		IssuedAt:    issuedAt,
	}, nil
}

func (s *AuthService) adminSession(ctx context.Context, admin *models.AdminUser) (*models.LoginResponse, error) {
	issuedAt := s.now().UTC()
	token, err := s.generateAccessToken(models.PrincipalAdmin, admin.ID, admin.Username, admin.Role, issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	if err := s.admins.UpdateLastLogin(ctx, admin.ID, issuedAt); err != nil {
		s.logger.Warn("failed to update last login", zap.String("admin_id", admin.ID), zap.Error(err))
	} else {
		admin.LastLogin = &issuedAt
	}
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		Kind:        models.PrincipalAdmin,
		Admin:       admin,
		IssuedAt:    issuedAt,
	}, nil
}

// ChangePassword rotates a staff account's password after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, adminID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change password payload")
	}

	admin, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.OldPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "old password does not match")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.config.HashCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.admins.UpdatePassword(ctx, adminID, string(newHash)); err != nil {
		return appErrors.StoreWrite(err, "failed to update password")
	}
	return nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.Kind != models.PrincipalAdmin && claims.Kind != models.PrincipalDonor {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token principal")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(kind models.PrincipalKind, subject, username string, role models.AdminRole, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		Kind:     kind,
		Role:     role,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
}
