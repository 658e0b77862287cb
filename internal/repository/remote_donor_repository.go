package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

// remoteTimestampLayouts covers the MySQL DATETIME text the shim echoes back plus RFC3339.
var remoteTimestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

// DefaultRemotePasswordWidth is the password column width the shim needs to hold a bcrypt
// hash. The stock api.php table declares VARCHAR(50) and must be widened.
const DefaultRemotePasswordWidth = 60

// ErrRemotePasswordTooLong is returned instead of letting MySQL truncate or reject a hash.
var ErrRemotePasswordTooLong = errors.New("password hash does not fit the remote password column")

type remoteStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// RemoteDonorRepository talks to the legacy PHP/MySQL shim. The shim has no version or
// notes columns, so writes are last-writer-wins and internal notes are not persisted.
type RemoteDonorRepository struct {
	httpClient    *resty.Client
	logger        *zap.Logger
	passwordWidth int
}

// NewRemoteDonorRepository creates a client for the shim rooted at baseURL.
func NewRemoteDonorRepository(baseURL string, timeout time.Duration, retries int, logger *zap.Logger) *RemoteDonorRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RemoteDonorRepository{httpClient: client, logger: logger, passwordWidth: DefaultRemotePasswordWidth}
}

// WithPasswordWidth sets the width of the shim's password column. Non-positive widths are ignored.
func (r *RemoteDonorRepository) WithPasswordWidth(width int) *RemoteDonorRepository {
	if width > 0 {
		r.passwordWidth = width
	}
	return r
}

// List returns the shim's rows, newest first.
func (r *RemoteDonorRepository) List(ctx context.Context) ([]models.Donor, error) {
	resp, err := r.httpClient.R().SetContext(ctx).Get("")
	if err != nil {
		r.logger.Error("remote store list failed", zap.Error(err))
		return nil, fmt.Errorf("remote list donors: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("remote list donors: status %d", resp.StatusCode())
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body()))
	dec.UseNumber()
	var rows []map[string]interface{}
	if err := dec.Decode(&rows); err != nil {
		var status remoteStatus
		if json.Unmarshal(resp.Body(), &status) == nil && status.Error != "" {
			return nil, fmt.Errorf("remote list donors: %s", status.Error)
		}
		return nil, fmt.Errorf("decode remote donors: %w", err)
	}

	donors := make([]models.Donor, 0, len(rows))
	for _, row := range rows {
		donors = append(donors, donorFromRemote(row))
	}
	return donors, nil
}

// FindByID returns a donor by identifier.
func (r *RemoteDonorRepository) FindByID(ctx context.Context, id string) (*models.Donor, error) {
	return r.find(ctx, func(d models.Donor) bool { return d.ID == id })
}

// FindByLoginID returns a donor by login id.
func (r *RemoteDonorRepository) FindByLoginID(ctx context.Context, loginID string) (*models.Donor, error) {
	return r.find(ctx, func(d models.Donor) bool { return d.LoginID == loginID })
}

func (r *RemoteDonorRepository) find(ctx context.Context, match func(models.Donor) bool) (*models.Donor, error) {
	donors, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range donors {
		if match(donors[i]) {
			return &donors[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

// ExistsByLoginID reports whether a login id is taken.
func (r *RemoteDonorRepository) ExistsByLoginID(ctx context.Context, loginID string) (bool, error) {
	_, err := r.FindByLoginID(ctx, loginID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Create posts a new row.
func (r *RemoteDonorRepository) Create(ctx context.Context, donor *models.Donor) error {
	stampNew(donor, time.Now().UTC())
	return r.insert(ctx, *donor)
}

// insert posts a new row. The shim's INSERT only names the profile columns, so a donor
// that is blocked or carries reports gets a follow-up PATCH for those two fields.
func (r *RemoteDonorRepository) insert(ctx context.Context, donor models.Donor) error {
	if err := r.checkPassword(donor); err != nil {
		return err
	}
	body := remoteFields(donor)
	body["id"] = donor.ID
	if err := r.send(ctx, resty.MethodPost, "", body); err != nil {
		return err
	}
	if !donor.IsBlocked && donor.Reports == 0 {
		return nil
	}
	flags := map[string]interface{}{"isBlocked": body["isBlocked"], "reports": donor.Reports}
	return r.send(ctx, resty.MethodPatch, "/"+url.PathEscape(donor.ID), flags)
}

func (r *RemoteDonorRepository) checkPassword(donor models.Donor) error {
	if len(donor.PasswordHash) > r.passwordWidth {
		return fmt.Errorf("remote donor %s: %d bytes, column holds %d: %w",
			donor.ID, len(donor.PasswordHash), r.passwordWidth, ErrRemotePasswordTooLong)
	}
	return nil
}

// checkPasswords rejects a batch before any row of it is written.
func (r *RemoteDonorRepository) checkPasswords(donors []models.Donor) error {
	for _, d := range donors {
		if err := r.checkPassword(d); err != nil {
			return err
		}
	}
	return nil
}

// Update patches an existing row. expectedVersion is ignored because the shim keeps no versions.
func (r *RemoteDonorRepository) Update(ctx context.Context, donor *models.Donor, expectedVersion int64) error {
	if _, err := r.FindByID(ctx, donor.ID); err != nil {
		return err
	}
	donor.UpdatedAt = time.Now().UTC()
	return r.patch(ctx, *donor)
}

func (r *RemoteDonorRepository) patch(ctx context.Context, donor models.Donor) error {
	if err := r.checkPassword(donor); err != nil {
		return err
	}
	return r.send(ctx, resty.MethodPatch, "/"+url.PathEscape(donor.ID), remoteFields(donor))
}

// Delete removes the rows that exist and reports how many there were.
func (r *RemoteDonorRepository) Delete(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	current, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	present := make(map[string]struct{}, len(current))
	for _, d := range current {
		present[d.ID] = struct{}{}
	}
	removed := 0
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			continue
		}
		if err := r.send(ctx, resty.MethodDelete, "/"+url.PathEscape(id), nil); err != nil {
			return removed, err
		}
		delete(present, id)
		removed++
	}
	return removed, nil
}

// ReplaceAll reconciles the shim with donors: stale rows are deleted, known rows patched
// and new rows posted. The shim has no transactions, so a failure leaves a partial result.
func (r *RemoteDonorRepository) ReplaceAll(ctx context.Context, donors []models.Donor) error {
	if err := r.checkPasswords(donors); err != nil {
		return err
	}
	current, err := r.List(ctx)
	if err != nil {
		return err
	}
	keep := make(map[string]struct{}, len(donors))
	for _, d := range donors {
		keep[d.ID] = struct{}{}
	}
	var stale []string
	for _, d := range current {
		if _, ok := keep[d.ID]; !ok {
			stale = append(stale, d.ID)
		}
	}
	for _, id := range stale {
		if err := r.send(ctx, resty.MethodDelete, "/"+url.PathEscape(id), nil); err != nil {
			return err
		}
	}
	return r.upsert(ctx, current, donors)
}

// UpsertMany patches known rows and posts unknown ones.
func (r *RemoteDonorRepository) UpsertMany(ctx context.Context, donors []models.Donor) error {
	if len(donors) == 0 {
		return nil
	}
	if err := r.checkPasswords(donors); err != nil {
		return err
	}
	current, err := r.List(ctx)
	if err != nil {
		return err
	}
	return r.upsert(ctx, current, donors)
}

func (r *RemoteDonorRepository) upsert(ctx context.Context, current, donors []models.Donor) error {
	known := make(map[string]struct{}, len(current))
	for _, d := range current {
		known[d.ID] = struct{}{}
	}
	now := time.Now().UTC()
	for i := range donors {
		stampNew(&donors[i], now)
		if _, ok := known[donors[i].ID]; ok {
			if err := r.patch(ctx, donors[i]); err != nil {
				return err
			}
			continue
		}
		if err := r.insert(ctx, donors[i]); err != nil {
			return err
		}
		known[donors[i].ID] = struct{}{}
	}
	return nil
}

func (r *RemoteDonorRepository) send(ctx context.Context, method, path string, body map[string]interface{}) error {
	var status remoteStatus
	req := r.httpClient.R().SetContext(ctx).SetResult(&status)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		r.logger.Error("remote store call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("remote %s %s: %w", strings.ToLower(method), path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("remote %s %s: status %d", strings.ToLower(method), path, resp.StatusCode())
	}
	if status.Error != "" {
		return fmt.Errorf("remote %s %s: %s", strings.ToLower(method), path, status.Error)
	}
	return nil
}

// remoteFields maps a donor onto the shim's columns. The shim's password column holds the hash.
func remoteFields(d models.Donor) map[string]interface{} {
	var lastDonation interface{}
	if d.LastDonationDate != "" {
		lastDonation = d.LastDonationDate
	}
	blocked := 0
	if d.IsBlocked {
		blocked = 1
	}
	return map[string]interface{}{
		"loginId":            d.LoginID,
		"password":           d.PasswordHash,
		"name":               d.Name,
		"bloodGroup":         string(d.BloodGroup),
		"age":                d.Age,
		"gender":             d.Gender,
		"address":            d.Address,
		"phone":              d.Phone,
		"occupation":         d.Occupation,
		"designation":        d.Designation,
		"department":         d.Department,
		"lastDonationDate":   lastDonation,
		"availability":       string(d.Availability),
		"verificationStatus": string(d.VerificationStatus),
		"isBlocked":          blocked,
		"reports":            d.Reports,
	}
}

func donorFromRemote(row map[string]interface{}) models.Donor {
	d := models.Donor{
		ID:                 remoteString(row["id"]),
		LoginID:            remoteString(row["loginId"]),
		PasswordHash:       remoteString(row["password"]),
		Name:               remoteString(row["name"]),
		BloodGroup:         models.BloodGroup(remoteString(row["bloodGroup"])),
		Age:                remoteInt(row["age"]),
		Gender:             remoteString(row["gender"]),
		Address:            remoteString(row["address"]),
		Phone:              remoteString(row["phone"]),
		Occupation:         remoteString(row["occupation"]),
		Designation:        remoteString(row["designation"]),
		Department:         remoteString(row["department"]),
		LastDonationDate:   remoteString(row["lastDonationDate"]),
		Availability:       models.Availability(remoteString(row["availability"])),
		VerificationStatus: models.VerificationStatus(remoteString(row["verificationStatus"])),
		IsBlocked:          remoteBool(row["isBlocked"]),
		Reports:            remoteInt(row["reports"]),
		UserType:           models.UserTypeDonor,
		Version:            1,
		CreatedAt:          remoteTime(row["createdAt"]),
	}
	d.UpdatedAt = d.CreatedAt
	return d
}

func remoteString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func remoteInt(v interface{}) int {
	n, err := strconv.Atoi(strings.TrimSpace(remoteString(v)))
	if err != nil {
		return 0
	}
	return n
}

func remoteBool(v interface{}) bool {
	switch strings.ToLower(strings.TrimSpace(remoteString(v))) {
	case "1", "true":
		return true
	}
	return false
}

func remoteTime(v interface{}) time.Time {
	raw := strings.TrimSpace(remoteString(v))
	for _, layout := range remoteTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
