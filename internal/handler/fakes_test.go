package handler

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/donor-registry-api/internal/middleware"
	"github.com/noah-isme/donor-registry-api/internal/models"
	"github.com/noah-isme/donor-registry-api/internal/service"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

type stubTokens map[string]*models.JWTClaims

func (s stubTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func staff(id, username string, role models.AdminRole) *models.JWTClaims {
	c := &models.JWTClaims{Kind: models.PrincipalAdmin, Role: role, Username: username}
	c.Subject = id
	return c
}

func donorSession(id, loginID string) *models.JWTClaims {
	c := &models.JWTClaims{Kind: models.PrincipalDonor, Username: loginID}
	c.Subject = id
	return c
}

var testTokens = stubTokens{
	"super":  staff("adm-root", "root", models.RoleSuperAdmin),
	"editor": staff("adm-ed", "ed", models.RoleEditor),
	"viewer": staff("adm-vi", "vi", models.RoleViewer),
	"donor":  donorSession("d1", "BDC-ID-1001"),
}

type fakeAuth struct {
	login    *models.LoginResponse
	err      error
	changeID string
}

func (f *fakeAuth) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	return f.login, f.err
}

func (f *fakeAuth) ChangePassword(_ context.Context, adminID string, _ models.ChangePasswordRequest) error {
	f.changeID = adminID
	return f.err
}

type fakeDonors struct {
	donor       *models.Donor
	err         error
	lastID      string
	lastVersion int64
	lastActor   string
	lastPatch   models.DonorPatch
	registered  *models.RegisterDonorRequest
}

func (f *fakeDonors) Register(_ context.Context, req models.RegisterDonorRequest) (*models.RegisterDonorResponse, error) {
	f.registered = &req
	if f.err != nil {
		return nil, f.err
	}
	return &models.RegisterDonorResponse{Donor: models.Donor{ID: "new", Name: req.Name}, LoginID: "BDC-ID-4242", Password: "ABC123"}, nil
}

func (f *fakeDonors) Get(_ context.Context, id string) (*models.Donor, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	d := *f.donor
	return &d, nil
}

func (f *fakeDonors) Update(_ context.Context, id string, patch models.DonorPatch, expectedVersion int64, actor string) (*models.Donor, error) {
	f.lastID, f.lastPatch, f.lastVersion, f.lastActor = id, patch, expectedVersion, actor
	if f.err != nil {
		return nil, f.err
	}
	d := *f.donor
	d.Version++
	return &d, nil
}

func (f *fakeDonors) UpdateSelf(ctx context.Context, id string, patch models.DonorPatch, expectedVersion int64) (*models.Donor, error) {
	return f.Update(ctx, id, patch, expectedVersion, "")
}

func (f *fakeDonors) ToggleVerify(ctx context.Context, id, actor string) (*models.Donor, error) {
	f.lastActor = actor
	return f.Get(ctx, id)
}

func (f *fakeDonors) ToggleBlock(ctx context.Context, id, actor string) (*models.Donor, error) {
	f.lastActor = actor
	return f.Get(ctx, id)
}

func (f *fakeDonors) ToggleAvailability(ctx context.Context, id string) (*models.Donor, error) {
	return f.Get(ctx, id)
}

func (f *fakeDonors) Recovery(_ context.Context, id string) (*models.DonationRecovery, error) {
	f.lastID = id
	return &models.DonationRecovery{IsRecovered: false, DaysLeft: 12, Percent: 86}, f.err
}

func (f *fakeDonors) Delete(_ context.Context, id, actor string) error {
	f.lastID, f.lastActor = id, actor
	return f.err
}

func (f *fakeDonors) ChangePassword(_ context.Context, id string, _ models.ChangePasswordRequest) error {
	f.lastID = id
	return f.err
}

type fakeRegistry struct {
	page       *models.DonorPage
	lastFilter models.DonorFilter
	lastPublic models.PublicSearchFilter
	hit        bool
}

func (f *fakeRegistry) Query(_ context.Context, filter models.DonorFilter) (*models.DonorPage, error) {
	f.lastFilter = filter
	return f.page, nil
}

func (f *fakeRegistry) SearchPublic(_ context.Context, filter models.PublicSearchFilter) ([]models.PublicDonor, models.Pagination, error) {
	f.lastPublic = filter
	return []models.PublicDonor{{ID: "d1", Name: "Ayesha"}}, models.Pagination{Page: 1, PageSize: 10, TotalCount: 1, TotalPages: 1}, nil
}

func (f *fakeRegistry) Stats(context.Context) (*models.RegistryStats, bool, error) {
	return &models.RegistryStats{Total: 3, ByGroup: map[string]int{"A+": 3}}, f.hit, nil
}

func (f *fakeRegistry) Health(context.Context) (*models.HealthReport, bool, error) {
	return &models.HealthReport{DuplicateIDs: []string{"a", "b"}, Total: 3}, f.hit, nil
}

func (f *fakeRegistry) Reach(_ context.Context, _ string) (int, error) {
	return 7, nil
}

type fakeBulk struct {
	req       models.BulkActionRequest
	role      models.AdminRole
	actor     string
	globalErr error
}

func (f *fakeBulk) Apply(_ context.Context, req models.BulkActionRequest, actor string) (*models.BulkActionResult, error) {
	f.req, f.actor = req, actor
	return &models.BulkActionResult{Action: req.Action, Affected: len(req.IDs)}, nil
}

func (f *fakeBulk) Global(_ context.Context, _ models.GlobalCommandRequest, role models.AdminRole, actor string) (int, error) {
	f.role, f.actor = role, actor
	return 4, f.globalErr
}

type fakeImports struct {
	fileName string
	content  []byte
	mode     models.ImportMode
	role     models.AdminRole
	removed  int
	err      error
}

func (f *fakeImports) Analyze(_ context.Context, fileName string, content []byte, actor string) (*models.ImportBatch, error) {
	f.fileName, f.content = fileName, content
	if f.err != nil {
		return nil, f.err
	}
	return &models.ImportBatch{ID: "batch-1", FileName: fileName, CreatedBy: actor}, nil
}

func (f *fakeImports) Get(batchID string) (*models.ImportBatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ImportBatch{ID: batchID}, nil
}

func (f *fakeImports) RemoveRow(batchID string, index int) (*models.ImportBatch, error) {
	f.removed = index
	return &models.ImportBatch{ID: batchID}, f.err
}

func (f *fakeImports) Discard(string) error { return f.err }

func (f *fakeImports) Commit(_ context.Context, _ string, mode models.ImportMode, role models.AdminRole, _ string) (*models.ImportResult, error) {
	f.mode, f.role = mode, role
	if f.err != nil {
		return nil, f.err
	}
	return &models.ImportResult{Mode: mode, Committed: 2}, nil
}

type fakeExports struct {
	format string
	ids    []string
}

func (f *fakeExports) Registry(_ context.Context, format string, ids []string, _ string) (*service.ExportFile, error) {
	f.format, f.ids = format, ids
	if format == "doc" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	return &service.ExportFile{FileName: "donor_registry_20240101.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("ID\n1\n"), Count: 1}, nil
}

func (f *fakeExports) Backup(context.Context, string) (*service.ExportFile, error) {
	return &service.ExportFile{FileName: "registry_backup_20240101.json", ContentType: "application/json", Data: []byte("[]")}, nil
}

func (f *fakeExports) Dossier(_ context.Context, id, format, _ string) (*service.ExportFile, error) {
	f.format, f.ids = format, []string{id}
	return &service.ExportFile{FileName: "donor_" + id + ".pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, nil
}

func (f *fakeExports) Template(format string) (*service.ExportFile, error) {
	f.format = format
	return &service.ExportFile{FileName: "donor_import_template.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("ID\n")}, nil
}

type fakeAlerts struct {
	sender string
	req    models.BroadcastRequest
}

func (f *fakeAlerts) List(context.Context) ([]models.EmergencyAlert, error) {
	return []models.EmergencyAlert{{ID: "a1"}, {ID: "a2"}}, nil
}

func (f *fakeAlerts) Active(context.Context) ([]models.EmergencyAlert, error) {
	return []models.EmergencyAlert{{ID: "a1", IsActive: true}}, nil
}

func (f *fakeAlerts) Templates() []models.AlertTemplate { return models.AlertTemplates }

func (f *fakeAlerts) Broadcast(_ context.Context, req models.BroadcastRequest, actor string) (*models.BroadcastResult, error) {
	f.req, f.sender = req, actor
	return &models.BroadcastResult{Alert: models.EmergencyAlert{ID: "a3"}, Reach: 5}, nil
}

func (f *fakeAlerts) SOS(_ context.Context, req models.BroadcastRequest, donorName string) (*models.EmergencyAlert, error) {
	f.req, f.sender = req, donorName
	return &models.EmergencyAlert{ID: "sos-1"}, nil
}

func (f *fakeAlerts) Terminate(_ context.Context, id, _ string) error {
	if id == "missing" {
		return appErrors.Clone(appErrors.ErrNotFound, "alert not found")
	}
	return nil
}

type fakeAudit struct{ limit int }

func (f *fakeAudit) List(_ context.Context, limit int) ([]models.AuditLogEntry, error) {
	f.limit = limit
	return []models.AuditLogEntry{{ID: "e1", Action: "BULK_VERIFY"}}, nil
}

type fakeAdmins struct {
	callerID string
	actor    string
}

func (f *fakeAdmins) List(context.Context) ([]models.AdminUser, error) {
	return []models.AdminUser{{ID: "adm-root", Username: "root"}}, nil
}

func (f *fakeAdmins) Get(_ context.Context, id string) (*models.AdminUser, error) {
	return &models.AdminUser{ID: id}, nil
}

func (f *fakeAdmins) Create(_ context.Context, req models.CreateAdminRequest, actor string) (*models.AdminUser, error) {
	f.actor = actor
	return &models.AdminUser{ID: "adm-" + req.Username, Username: req.Username, Role: req.Role}, nil
}

func (f *fakeAdmins) Delete(_ context.Context, id, callerID, actor string) error {
	f.callerID, f.actor = callerID, actor
	if id == callerID {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot revoke own account")
	}
	return nil
}

type fixture struct {
	auth     *fakeAuth
	donors   *fakeDonors
	registry *fakeRegistry
	bulk     *fakeBulk
	imports  *fakeImports
	exports  *fakeExports
	alerts   *fakeAlerts
	audit    *fakeAudit
	admins   *fakeAdmins
	router   *gin.Engine
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		auth:     &fakeAuth{},
		donors:   &fakeDonors{donor: &models.Donor{ID: "d1", LoginID: "BDC-ID-1001", Name: "Ayesha Rahman", Version: 3}},
		registry: &fakeRegistry{},
		bulk:     &fakeBulk{},
		imports:  &fakeImports{},
		exports:  &fakeExports{},
		alerts:   &fakeAlerts{},
		audit:    &fakeAudit{},
		admins:   &fakeAdmins{},
	}
	f.router = gin.New()
	f.router.Use(middleware.ResponseMeta())
	RegisterRoutes(f.router.Group("/api/v1"), Handlers{
		Auth:     NewAuthHandler(f.auth),
		Donor:    NewDonorHandler(f.donors),
		Registry: NewRegistryHandler(f.registry),
		Bulk:     NewBulkHandler(f.bulk),
		Import:   NewImportHandler(f.imports, 1024),
		Export:   NewExportHandler(f.exports),
		Alert:    NewAlertHandler(f.alerts, f.donors),
		Audit:    NewAuditHandler(f.audit),
		Admin:    NewAdminHandler(f.admins),
		Metrics:  NewMetricsHandler(service.NewMetricsService(), nil),
	}, testTokens)
	return f
}

func (f *fixture) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type responseEnvelope struct {
	Data       interface{}            `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination map[string]interface{} `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}
