package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/donor-registry-api/internal/codec"
	"github.com/noah-isme/donor-registry-api/internal/merge"
	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
	"github.com/noah-isme/donor-registry-api/pkg/export"
)

// ImportConfig tunes CSV staging and commit.
type ImportConfig struct {
	LoginIDPrefix    string
	StagingTTL       time.Duration
	StagingCapacity  int
	MaxFileSize      int64
	HashCost         int
	SimulatedLatency time.Duration
}

// ImportService stages parsed CSV batches in memory and commits them to the registry in merge
// or mirror mode. Staged batches expire after StagingTTL.
type ImportService struct {
	repo     DonorStore
	registry *RegistryService
	audit    *AuditService
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ImportConfig
	tokens   *codec.Tokens
	now      func() time.Time

	mu      sync.Mutex
	batches *expirable.LRU[string, *models.ImportBatch]
}

// NewImportService constructs an ImportService.
func NewImportService(repo DonorStore, registry *RegistryService, audit *AuditService, metrics *MetricsService, logger *zap.Logger, cfg ImportConfig) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StagingTTL <= 0 {
		cfg.StagingTTL = 30 * time.Minute
	}
	if cfg.StagingCapacity <= 0 {
		cfg.StagingCapacity = 32
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 5 * 1024 * 1024
	}
	if cfg.LoginIDPrefix == "" {
		cfg.LoginIDPrefix = "IMP"
	}
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	return &ImportService{
		repo:     repo,
		registry: registry,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		tokens:   codec.NewTokens(nil),
		now:      time.Now,
		batches:  expirable.NewLRU[string, *models.ImportBatch](cfg.StagingCapacity, nil, cfg.StagingTTL),
	}
}

// Analyze parses an uploaded CSV file and stages the result for review. A .xlsx upload is read
// from its first sheet.
func (s *ImportService) Analyze(ctx context.Context, fileName string, content []byte, actor string) (*models.ImportBatch, error) {
	if int64(len(content)) > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxFileSize))
	}
	if err := simulateLatency(ctx, s.cfg.SimulatedLatency); err != nil {
		return nil, err
	}

	text := string(content)
	if strings.EqualFold(filepath.Ext(fileName), ".xlsx") {
		converted, err := export.XLSXToCSV(bytes.NewReader(content))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrFormat.Code, appErrors.ErrFormat.Status, "unreadable spreadsheet")
		}
		text = converted
	}

	parser := codec.NewParser(codec.WithLoginIDPrefix(s.cfg.LoginIDPrefix), codec.WithTokens(s.tokens))
	result, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	batch := &models.ImportBatch{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Rows:      result.Rows,
		Issues:    result.Issues,
		CreatedBy: actor,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.StagingTTL),
	}

	s.mu.Lock()
	s.batches.Add(batch.ID, batch)
	s.mu.Unlock()

	s.metrics.RecordImportAnalysis(len(result.Rows), result.Dropped, len(result.Issues))
	s.logger.Info("import batch staged",
		zap.String("batch_id", batch.ID),
		zap.Int("rows", len(result.Rows)),
		zap.Int("dropped", result.Dropped),
		zap.Int("issues", len(result.Issues)),
	)
	return cloneBatch(batch), nil
}

// Get returns a staged batch.
func (s *ImportService) Get(batchID string) (*models.ImportBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches.Get(batchID)
	if !ok {
		return nil, appErrors.ErrImportBatchMissing
	}
	return cloneBatch(batch), nil
}

// RemoveRow drops the staged row at index together with its issues.
func (s *ImportService) RemoveRow(batchID string, index int) (*models.ImportBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches.Get(batchID)
	if !ok {
		return nil, appErrors.ErrImportBatchMissing
	}
	if index < 0 || index >= len(batch.Rows) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("row index %d out of range", index))
	}
	removed := batch.Rows[index].Row
	rows := make([]models.StagedDonor, 0, len(batch.Rows)-1)
	rows = append(rows, batch.Rows[:index]...)
	rows = append(rows, batch.Rows[index+1:]...)
	issues := make([]models.ValidationIssue, 0, len(batch.Issues))
	for _, issue := range batch.Issues {
		if issue.Row != removed {
			issues = append(issues, issue)
		}
	}
	batch.Rows = rows
	batch.Issues = issues
	return cloneBatch(batch), nil
}

// Discard drops a staged batch without committing it.
func (s *ImportService) Discard(batchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.batches.Remove(batchID) {
		return appErrors.ErrImportBatchMissing
	}
	return nil
}

// claim takes a batch out of staging so that only one commit can apply it.
func (s *ImportService) claim(batchID string) (*models.ImportBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches.Peek(batchID)
	if !ok {
		return nil, appErrors.ErrImportBatchMissing
	}
	s.batches.Remove(batchID)
	return batch, nil
}

// release puts a claimed batch back after a commit that did not go through.
func (s *ImportService) release(batch *models.ImportBatch) {
	s.mu.Lock()
	s.batches.Add(batch.ID, batch)
	s.mu.Unlock()
}

// Commit reconciles a staged batch with the registry. Mirror replaces the registry with the
// batch and needs a Super Admin; merge upserts by id and needs a Super Admin or Editor.
// Generated credentials for written rows are returned once and only their hashes are stored.
func (s *ImportService) Commit(ctx context.Context, batchID string, mode models.ImportMode, role models.AdminRole, actor string) (*models.ImportResult, error) {
	if mode == "" {
		mode = models.ImportModeMerge
	}
	switch mode {
	case models.ImportModeMirror:
		if role != models.RoleSuperAdmin {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "mirror import requires Super Admin")
		}
	case models.ImportModeMerge:
		if role != models.RoleSuperAdmin && role != models.RoleEditor {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "merge import requires Super Admin or Editor")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown import mode %q", mode))
	}

	batch, err := s.claim(batchID)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			s.release(batch)
		}
	}()
	if len(batch.Rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "import batch has no rows to commit")
	}
	if err := simulateLatency(ctx, s.cfg.SimulatedLatency); err != nil {
		return nil, err
	}

	existing, err := s.registry.Donors(ctx)
	if err != nil {
		return nil, err
	}
	rows := s.uniqueLoginIDs(existing, batch.Rows, mode)

	var outcome merge.Outcome
	if mode == models.ImportModeMirror {
		outcome = merge.Mirror(rows)
	} else {
		outcome = merge.Merge(existing, rows)
	}

	written, credentials, err := s.prepareWrites(outcome)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{Mode: mode, Committed: len(rows), Credentials: credentials}
	existingIDs := make(map[string]bool, len(existing))
	for _, d := range existing {
		existingIDs[d.ID] = true
	}

	start := time.Now()
	if mode == models.ImportModeMirror {
		err = s.repo.ReplaceAll(ctx, outcome.Donors)
		kept := make(map[string]bool, len(outcome.Donors))
		for _, d := range outcome.Donors {
			kept[d.ID] = true
			if existingIDs[d.ID] {
				result.Updated++
			} else {
				result.Inserted++
			}
		}
		for id := range existingIDs {
			if !kept[id] {
				result.Removed++
			}
		}
	} else {
		err = s.repo.UpsertMany(ctx, written)
		result.Inserted = len(outcome.Inserted)
		result.Updated = len(outcome.Updated)
	}
	s.metrics.ObserveStoreOp("import_"+string(mode), time.Since(start))
	if err != nil {
		s.logger.Error("failed to commit import batch", zap.String("batch_id", batchID), zap.String("mode", string(mode)), zap.Error(err))
		return nil, appErrors.StoreWrite(err, "failed to commit import batch")
	}
	result.Total = len(outcome.Donors)
	committed = true

	s.registry.Invalidate(ctx)
	s.metrics.RecordImportCommit(mode)
	if mode == models.ImportModeMirror {
		s.audit.Record(ctx, models.AuditActionRegistryMirror, fmt.Sprintf("Registry mirrored from file (%d nodes).", len(rows)), actor)
	} else {
		s.audit.Record(ctx, models.AuditActionBulkImport, fmt.Sprintf("Imported/Merged %d nodes.", len(rows)), actor)
	}
	return result, nil
}

// uniqueLoginIDs regenerates defaulted login ids that collide with ids already in use.
func (s *ImportService) uniqueLoginIDs(existing []models.Donor, rows []models.StagedDonor, mode models.ImportMode) []models.StagedDonor {
	taken := make(map[string]bool)
	if mode == models.ImportModeMerge {
		for _, d := range existing {
			taken[d.LoginID] = true
		}
	}
	for _, row := range rows {
		if !containsKey(row.Defaulted, codec.FieldLoginID) {
			taken[row.Donor.LoginID] = true
		}
	}

	out := make([]models.StagedDonor, len(rows))
	copy(out, rows)
	for i := range out {
		if !containsKey(out[i].Defaulted, codec.FieldLoginID) {
			continue
		}
		for attempt := 0; taken[out[i].Donor.LoginID] && attempt < maxLoginIDAttempts; attempt++ {
			out[i].Donor.LoginID = s.tokens.LoginID(s.cfg.LoginIDPrefix)
		}
		taken[out[i].Donor.LoginID] = true
	}
	return out
}

// prepareWrites hashes plaintext passwords of inserted and updated donors in place and returns
// those donors with the credentials that were minted for them.
func (s *ImportService) prepareWrites(outcome merge.Outcome) ([]models.Donor, []models.GeneratedCredential, error) {
	changed := make(map[string]bool, len(outcome.Inserted)+len(outcome.Updated))
	for _, id := range outcome.Inserted {
		changed[id] = true
	}
	for _, id := range outcome.Updated {
		changed[id] = true
	}

	var (
		written     []models.Donor
		credentials []models.GeneratedCredential
	)
	for i := range outcome.Donors {
		d := &outcome.Donors[i]
		if !changed[d.ID] {
			continue
		}
		if d.Version > 0 {
			*d = merge.Touch(*d, s.now())
		}
		if d.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(d.Password), s.cfg.HashCost)
			if err != nil {
				return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash imported password")
			}
			credentials = append(credentials, models.GeneratedCredential{ID: d.ID, LoginID: d.LoginID, Password: d.Password})
			d.PasswordHash = string(hash)
			d.Password = ""
		}
		written = append(written, *d)
	}
	return written, credentials, nil
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func cloneBatch(b *models.ImportBatch) *models.ImportBatch {
	out := *b
	out.Rows = append([]models.StagedDonor(nil), b.Rows...)
	out.Issues = append([]models.ValidationIssue(nil), b.Issues...)
	return &out
}
