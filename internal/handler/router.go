package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/donor-registry-api/internal/middleware"
)

// Handlers bundles every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth     *AuthHandler
	Donor    *DonorHandler
	Registry *RegistryHandler
	Bulk     *BulkHandler
	Import   *ImportHandler
	Export   *ExportHandler
	Alert    *AlertHandler
	Audit    *AuditHandler
	Admin    *AdminHandler
	Metrics  *MetricsHandler
}

// RegisterRoutes mounts the public, donor and staff route groups.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, auth middleware.TokenValidator) {
	requireAuth := middleware.JWT(auth)

	api.POST("/auth/login", h.Auth.Login)
	api.GET("/auth/me", requireAuth, h.Auth.Me)
	api.POST("/auth/change-password", requireAuth, middleware.RequireRoles(middleware.AnyStaff...), h.Auth.ChangePassword)

	api.POST("/donors", h.Donor.Register)
	api.GET("/donors", h.Registry.Search)
	api.GET("/alerts", h.Alert.Active)

	me := api.Group("/me", requireAuth, middleware.RequireDonor())
	me.GET("", h.Donor.Me)
	me.PATCH("", h.Donor.UpdateMe)
	me.POST("/availability", h.Donor.ToggleAvailability)
	me.GET("/recovery", h.Donor.Recovery)
	me.POST("/password", h.Donor.ChangePassword)
	me.POST("/sos", h.Alert.SOS)

	admin := api.Group("/admin", requireAuth)
	read := middleware.RequireRoles(middleware.AnyStaff...)
	edit := middleware.RequireRoles(middleware.Editors...)
	super := middleware.RequireRoles(middleware.SuperAdmins...)

	admin.GET("/donors", read, h.Registry.List)
	admin.POST("/donors/bulk", edit, h.Bulk.Apply)
	admin.POST("/donors/global", super, h.Bulk.Global)
	admin.GET("/donors/:id", read, h.Donor.Get)
	admin.PATCH("/donors/:id", edit, h.Donor.Update)
	admin.DELETE("/donors/:id", edit, h.Donor.Delete)
	admin.POST("/donors/:id/verify", edit, h.Donor.ToggleVerify)
	admin.POST("/donors/:id/block", edit, h.Donor.ToggleBlock)
	admin.GET("/donors/:id/recovery", read, h.Donor.Recovery)

	admin.POST("/imports", edit, h.Import.Analyze)
	admin.GET("/imports/:id", edit, h.Import.Get)
	admin.DELETE("/imports/:id", edit, h.Import.Discard)
	admin.DELETE("/imports/:id/rows/:index", edit, h.Import.RemoveRow)
	admin.POST("/imports/:id/commit", edit, h.Import.Commit)

	admin.GET("/exports/registry", read, h.Export.Registry)
	admin.GET("/exports/backup", read, h.Export.Backup)
	admin.GET("/exports/donors/:id", read, h.Export.Dossier)
	admin.GET("/exports/template", read, h.Export.Template)

	admin.GET("/health", read, h.Registry.Health)
	admin.GET("/stats", read, h.Registry.Stats)
	admin.GET("/metrics", read, h.Metrics.Snapshot)

	admin.GET("/alerts", read, h.Alert.List)
	admin.GET("/alerts/templates", read, h.Alert.Templates)
	admin.GET("/alerts/reach", read, h.Registry.Reach)
	admin.POST("/alerts", edit, h.Alert.Broadcast)
	admin.DELETE("/alerts/:id", edit, h.Alert.Terminate)

	admin.GET("/audit-logs", read, h.Audit.List)

	admin.GET("/users", super, h.Admin.List)
	admin.GET("/users/:id", super, h.Admin.Get)
	admin.POST("/users", super, h.Admin.Create)
	admin.DELETE("/users/:id", super, h.Admin.Delete)
}
