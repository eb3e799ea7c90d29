// file: internals/features/college/ttable_versions/route/admin_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kampusku_backend/internals/constants"
	controller "kampusku_backend/internals/features/college/ttable_versions/controller"
	"kampusku_backend/internals/middlewares"
	"kampusku_backend/internals/middlewares/auth"
)

// TtableVersionAdminRoutes mendaftarkan route versi jadwal di bawah
// group admin (AuthJWT sudah terpasang di group-nya).
func TtableVersionAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewTtableVersionController(db, validator.New(validator.WithRequiredStructEnabled()))

	edit := auth.RequireRoles(constants.RoleErrorMethodist("versi jadwal"), constants.EditorRoles...)
	read := auth.RequireRoles(constants.RoleErrorReader("versi jadwal"), constants.ReaderRoles...)
	mut := middlewares.MutationRateLimiter()

	grp := admin.Group("/versions")

	// urutan penting: path statis sebelum /:id
	grp.Get("/accepted", read, ctl.GetAccepted)
	grp.Post("/list", read, ctl.List)

	grp.Post("/", edit, mut, ctl.Create)
	grp.Get("/:id", read, ctl.GetByID)
	grp.Get("/:id/check", read, ctl.Check)
	grp.Get("/:id/rollback-candidates", read, ctl.RollbackCandidates)
	grp.Post("/:id/commit", edit, mut, ctl.Commit)
	grp.Post("/:id/rollback", edit, mut, ctl.Rollback)
}
