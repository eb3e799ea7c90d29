// file: internals/route/details/college_routes.go
package details

import (
	CardRoutes "kampusku_backend/internals/features/college/cards/route"
	TtableVersionRoutes "kampusku_backend/internals/features/college/ttable_versions/route"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

/* ===================== ADMIN (methodist) ===================== */
// Semua endpoint engine jadwal. Guard role per-route di masing-masing
// feature route; AuthJWT dipasang di group /api/a.
func CollegeAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ttable := admin.Group("/college/ttable")

	TtableVersionRoutes.TtableVersionAdminRoutes(ttable, db)
	CardRoutes.CardAdminRoutes(ttable, db)
}
