// file: internals/features/college/cards/route/admin_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kampusku_backend/internals/constants"
	controller "kampusku_backend/internals/features/college/cards/controller"
	"kampusku_backend/internals/middlewares"
	"kampusku_backend/internals/middlewares/auth"
)

// CardAdminRoutes mendaftarkan route kartu jadwal di bawah group admin.
func CardAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewCardController(db, validator.New(validator.WithRequiredStructEnabled()))

	edit := auth.RequireRoles(constants.RoleErrorMethodist("kartu jadwal"), constants.EditorRoles...)
	read := auth.RequireRoles(constants.RoleErrorReader("kartu jadwal"), constants.ReaderRoles...)
	mut := middlewares.MutationRateLimiter()

	grp := admin.Group("/cards")

	grp.Post("/save", edit, mut, ctl.Save)
	grp.Post("/bulk", edit, mut, ctl.Bulk)
	grp.Post("/rollback", edit, mut, ctl.Rollback)

	grp.Get("/current", read, ctl.GetCurrent)
	grp.Get("/history", read, ctl.GetHistory)
	grp.Get("/history/:id/content", read, ctl.HistoryContent)

	grp.Put("/:id/accept", edit, mut, ctl.Accept)
	grp.Put("/:id/mark-edited", edit, mut, ctl.MarkEdited)
}
