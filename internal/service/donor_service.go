package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/donor-registry-api/internal/codec"
	"github.com/noah-isme/donor-registry-api/internal/merge"
	"github.com/noah-isme/donor-registry-api/internal/models"
	"github.com/noah-isme/donor-registry-api/internal/query"
	"github.com/noah-isme/donor-registry-api/internal/repository"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

const maxLoginIDAttempts = 50

// DonorConfig tunes donor lifecycle rules.
type DonorConfig struct {
	LoginIDPrefix string
	RecoveryDays  int
	HashCost      int
}

// DonorService implements registration, self-service and per-donor staff actions.
type DonorService struct {
	repo      DonorStore
	registry  *RegistryService
	audit     *AuditService
	tokens    *codec.Tokens
	validator *validator.Validate
	logger    *zap.Logger
	cfg       DonorConfig
	now       func() time.Time
}

// NewDonorService constructs a DonorService.
func NewDonorService(repo DonorStore, registry *RegistryService, audit *AuditService, validate *validator.Validate, logger *zap.Logger, cfg DonorConfig) *DonorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LoginIDPrefix == "" {
		cfg.LoginIDPrefix = "BDC-ID"
	}
	if cfg.RecoveryDays <= 0 {
		cfg.RecoveryDays = 90
	}
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	return &DonorService{
		repo:      repo,
		registry:  registry,
		audit:     audit,
		tokens:    codec.NewTokens(nil),
		validator: registerRegistryValidations(validate),
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Register creates a donor with a unique login id and a generated password. The plaintext
// password is returned once and only its hash is stored.
func (s *DonorService) Register(ctx context.Context, req models.RegisterDonorRequest) (*models.RegisterDonorResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	loginID, err := s.allocateLoginID(ctx)
	if err != nil {
		return nil, err
	}
	password := s.tokens.Password()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.HashCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	userType := req.UserType
	if userType == "" {
		userType = models.UserTypeDonor
	}
	now := s.now().UTC()
	donor := models.Donor{
		ID:                 s.tokens.ID(),
		LoginID:            loginID,
		PasswordHash:       string(hash),
		Name:               req.Name,
		BloodGroup:         req.BloodGroup,
		Age:                req.Age,
		Gender:             req.Gender,
		Address:            req.Address,
		Phone:              req.Phone,
		Occupation:         req.Occupation,
		Designation:        req.Designation,
		Department:         req.Department,
		LastDonationDate:   req.LastDonationDate,
		Availability:       models.AvailabilityAvailable,
		VerificationStatus: models.VerificationUnverified,
		UserType:           userType,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, &donor); err != nil {
		s.logger.Error("failed to register donor", zap.Error(err))
		return nil, appErrors.StoreWrite(err, "failed to register donor")
	}
	s.registry.Invalidate(ctx)

	return &models.RegisterDonorResponse{Donor: donor, LoginID: loginID, Password: password}, nil
}

func (s *DonorService) allocateLoginID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxLoginIDAttempts; attempt++ {
		candidate := s.tokens.LoginID(s.cfg.LoginIDPrefix)
		taken, err := s.repo.ExistsByLoginID(ctx, candidate)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check login id")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrConflict, "could not allocate a unique login id")
}

// Get returns a donor by id.
func (s *DonorService) Get(ctx context.Context, id string) (*models.Donor, error) {
	donor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, donorLookupError(err)
	}
	return donor, nil
}

// Update applies a staff edit. A positive expectedVersion rejects the write when the record
// changed since it was read.
func (s *DonorService) Update(ctx context.Context, id string, patch models.DonorPatch, expectedVersion int64, actor string) (*models.Donor, error) {
	return s.update(ctx, id, patch, expectedVersion, actor)
}

// UpdateSelf applies a donor's edit of their own profile. Staff-only fields are ignored.
func (s *DonorService) UpdateSelf(ctx context.Context, id string, patch models.DonorPatch, expectedVersion int64) (*models.Donor, error) {
	patch.LoginID = nil
	patch.VerificationStatus = nil
	patch.IsBlocked = nil
	patch.Reports = nil
	patch.InternalNotes = nil
	patch.CreatedAt = nil
	return s.update(ctx, id, patch, expectedVersion, "")
}

func (s *DonorService) update(ctx context.Context, id string, patch models.DonorPatch, expectedVersion int64, actor string) (*models.Donor, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid donor update")
	}
	if patch.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, donorLookupError(err)
	}
	if expectedVersion > 0 && existing.Version != expectedVersion {
		return nil, appErrors.Clone(appErrors.ErrVersionConflict, fmt.Sprintf("donor %s is at version %d", id, existing.Version))
	}

	var newHash string
	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), s.cfg.HashCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		newHash = string(hash)
		patch.Password = nil
	}

	updated := merge.ApplyPatch(*existing, patch)
	if newHash != "" {
		updated.PasswordHash = newHash
	}
	if err := s.write(ctx, &updated, expectedVersion); err != nil {
		return nil, err
	}

	if actor == "" {
		actor = updated.Name
	}
	s.audit.Record(ctx, models.AuditActionNodeUpdate, fmt.Sprintf("Updated profile for %s", updated.Name), actor)
	return &updated, nil
}

// ToggleVerify flips the verification status.
func (s *DonorService) ToggleVerify(ctx context.Context, id, actor string) (*models.Donor, error) {
	donor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if donor.IsVerified() {
		donor.VerificationStatus = models.VerificationUnverified
	} else {
		donor.VerificationStatus = models.VerificationVerified
	}
	if err := s.write(ctx, donor, 0); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, models.AuditActionNodeVerify, fmt.Sprintf("Marked %s as %s", donor.Name, donor.VerificationStatus), actor)
	return donor, nil
}

// ToggleBlock flips the blocked flag.
func (s *DonorService) ToggleBlock(ctx context.Context, id, actor string) (*models.Donor, error) {
	donor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	donor.IsBlocked = !donor.IsBlocked
	if err := s.write(ctx, donor, 0); err != nil {
		return nil, err
	}
	verb := "Unblocked"
	if donor.IsBlocked {
		verb = "Blocked"
	}
	s.audit.Record(ctx, models.AuditActionNodeBlock, fmt.Sprintf("%s %s", verb, donor.Name), actor)
	return donor, nil
}

// ToggleAvailability flips the donor's availability. It is locked while the donor is inside
// the post-donation recovery window.
func (s *DonorService) ToggleAvailability(ctx context.Context, id string) (*models.Donor, error) {
	donor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	recovery := query.Recovery(donor.LastDonationDate, s.now(), s.cfg.RecoveryDays)
	if !recovery.IsRecovered {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("availability is locked for %d more days of donation recovery", recovery.DaysLeft))
	}
	if donor.Availability == models.AvailabilityAvailable {
		donor.Availability = models.AvailabilityNotAvailable
	} else {
		donor.Availability = models.AvailabilityAvailable
	}
	if err := s.write(ctx, donor, 0); err != nil {
		return nil, err
	}
	return donor, nil
}

// Recovery reports the donor's progress through the donation recovery window.
func (s *DonorService) Recovery(ctx context.Context, id string) (*models.DonationRecovery, error) {
	donor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	info := query.Recovery(donor.LastDonationDate, s.now(), s.cfg.RecoveryDays)
	return &info, nil
}

// Delete removes a donor.
func (s *DonorService) Delete(ctx context.Context, id, actor string) error {
	donor, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.StoreWrite(err, "failed to delete donor")
	}
	if n == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "donor not found")
	}
	s.registry.Invalidate(ctx)
	s.audit.Record(ctx, models.AuditActionNodePurge, fmt.Sprintf("Deleted %s", donor.Name), actor)
	return nil
}

// ChangePassword rotates a donor's own credential after checking the old one.
func (s *DonorService) ChangePassword(ctx context.Context, id string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change password payload")
	}
	donor, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(donor.PasswordHash), []byte(req.OldPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "old password does not match")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.HashCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	donor.PasswordHash = string(hash)
	return s.write(ctx, donor, 0)
}

func (s *DonorService) write(ctx context.Context, donor *models.Donor, expectedVersion int64) error {
	if err := s.repo.Update(ctx, donor, expectedVersion); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleVersion):
			return appErrors.Wrap(err, appErrors.ErrVersionConflict.Code, appErrors.ErrVersionConflict.Status, appErrors.ErrVersionConflict.Message)
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "donor not found")
		}
		s.logger.Error("failed to update donor", zap.String("id", donor.ID), zap.Error(err))
		return appErrors.StoreWrite(err, "failed to update donor")
	}
	s.registry.Invalidate(ctx)
	return nil
}

func donorLookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "donor not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donor")
}

// SeedDemo writes two sample donors (password "password") when the registry is empty.
func (s *DonorService) SeedDemo(ctx context.Context) (bool, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list donors")
	}
	if len(existing) > 0 {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), s.cfg.HashCost)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	now := s.now().UTC()
	demo := []models.Donor{
		{
			ID: "1", LoginID: s.cfg.LoginIDPrefix + "001", Name: "John Doe", BloodGroup: models.BloodGroupOPos, Age: 28,
			Gender: "Male", Address: "Downtown Metro", Phone: "+1234567890", Occupation: "Engineer",
			Designation: "Software Lead", Department: "Technology", LastDonationDate: "2023-10-15",
			Availability: models.AvailabilityAvailable, VerificationStatus: models.VerificationVerified,
		},
		{
			ID: "2", LoginID: s.cfg.LoginIDPrefix + "002", Name: "Sarah Smith", BloodGroup: models.BloodGroupBNeg, Age: 32,
			Gender: "Female", Address: "North Hills", Phone: "+1987654321", Occupation: "Teacher",
			Designation: "Senior Instructor", Department: "Education", LastDonationDate: "2023-11-20",
			Availability: models.AvailabilityAvailable, VerificationStatus: models.VerificationUnverified,
		},
	}
	for i := range demo {
		demo[i].PasswordHash = string(hash)
		demo[i].UserType = models.UserTypeDonor
		demo[i].CreatedAt = now
	}
	if err := s.repo.UpsertMany(ctx, demo); err != nil {
		return false, appErrors.StoreWrite(err, "failed to seed donors")
	}
	s.registry.Invalidate(ctx)
	return true, nil
}
