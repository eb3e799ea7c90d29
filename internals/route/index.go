// file: internals/route/index.go
package routes

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kampusku_backend/internals/middlewares"
	"kampusku_backend/internals/middlewares/auth"
	routeDetails "kampusku_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	// ===================== UTILS =====================
	log.Println("[INFO] Setting up utils routes...")
	app.Get("/uptime", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"uptime":  time.Since(startTime).String(),
		})
	})

	// ===================== ADMIN (methodist) =====================
	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck per route)...")
	admin := app.Group("/api/a",
		middlewares.DBMiddleware(db),
		auth.AuthJWT(auth.AuthJWTOpts{
			Secret:              os.Getenv("JWT_SECRET"),
			AllowCookieFallback: true,
		}),
	)

	log.Println("[INFO] Setting up CollegeAdminRoutes...")
	routeDetails.CollegeAdminRoutes(admin, db)
}
