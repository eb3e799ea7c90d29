// file: internals/features/college/ttable_versions/controller/ttable_version_controller.go
package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"kampusku_backend/internals/features/college/errs"
	dto "kampusku_backend/internals/features/college/ttable_versions/dto"
	m "kampusku_backend/internals/features/college/ttable_versions/model"
	service "kampusku_backend/internals/features/college/ttable_versions/service"
	helper "kampusku_backend/internals/helpers"
	"kampusku_backend/internals/middlewares/auth"
)

/* =======================================================
   CONTROLLER
   ======================================================= */

type TtableVersionController struct {
	DB        *gorm.DB
	Validate  *validator.Validate
	Versions  *service.VersionService
	Lifecycle *service.LifecycleService
}

func NewTtableVersionController(db *gorm.DB, v *validator.Validate) *TtableVersionController {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	return &TtableVersionController{
		DB:        db,
		Validate:  v,
		Versions:  service.NewVersionService(db),
		Lifecycle: service.NewLifecycleService(db),
	}
}

// ambil context standar (kalau Fiber mendukung UserContext)
func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

// respondErr memetakan taksonomi error service ke respons transport.
func respondErr(c *fiber.Ctx, err error) error {
	status := errs.HTTPStatus(err)
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		return helper.JsonError(c, status, "invalid request")
	case errors.Is(err, errs.ErrNotFound):
		return helper.JsonError(c, status, "data not found")
	case errors.Is(err, errs.ErrInvalidState):
		return helper.JsonError(c, status, "operation not allowed in current state")
	case errors.Is(err, errs.ErrConflict):
		return helper.JsonError(c, status, "conflicting concurrent operation")
	default:
		return helper.JsonError(c, status, "internal server error")
	}
}

func parseIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Params("id")))
}

/* ============================ CREATE ============================ */

func (ctl *TtableVersionController) Create(c *fiber.Ctx) error {
	var req dto.CreateTtableVersionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	in, err := req.ToInput(auth.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}

	ver, err := ctl.Versions.Create(reqCtx(c), in)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonCreated(c, "version created", dto.NewTtableVersionResponse(*ver))
}

/* ============================ READ ============================ */

func (ctl *TtableVersionController) GetByID(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid version id")
	}

	ver, err := ctl.Versions.GetByID(reqCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonOK(c, "ok", dto.NewTtableVersionResponse(*ver))
}

func (ctl *TtableVersionController) GetAccepted(c *fiber.Ctx) error {
	buildingID, err := uuid.Parse(strings.TrimSpace(c.Query("building_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid building_id")
	}
	vtype := m.VersionType(strings.TrimSpace(c.Query("type", string(m.VersionTypeStandard))))

	ver, err := ctl.Versions.GetAccepted(reqCtx(c), buildingID, vtype)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonOK(c, "ok", dto.NewTtableVersionResponse(*ver))
}

func (ctl *TtableVersionController) List(c *fiber.Ctx) error {
	var req dto.FilterTtableVersionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	filter, err := req.ToFilter()
	if err != nil {
		return respondErr(c, err)
	}

	p := helper.ResolvePaging(c, 20, 200)
	rows, total, err := ctl.Versions.List(reqCtx(c), filter, p.Page, p.PerPage)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonList(c, "ok", dto.NewTtableVersionResponses(rows),
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

/* ============================ LIFECYCLE ============================ */

func (ctl *TtableVersionController) Check(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid version id")
	}

	res, err := ctl.Lifecycle.PreCommitCheck(reqCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": res.Status == service.CheckReady,
		"message": string(res.Status),
		"data":    res,
	})
}

func (ctl *TtableVersionController) Commit(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid version id")
	}

	res, err := ctl.Lifecycle.Commit(reqCtx(c), id, auth.UserID(c))
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			// kalah race dengan commit lain — hasil bisnis, bukan error transport
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"success": false,
				"message": "another version was accepted concurrently, please re-check",
			})
		}
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

func (ctl *TtableVersionController) Rollback(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid version id")
	}

	if err := ctl.Lifecycle.RollbackToVersion(reqCtx(c), id, auth.UserID(c)); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"success": false,
				"message": "another version was accepted concurrently, please re-check",
			})
		}
		return respondErr(c, err)
	}
	return helper.JsonUpdated(c, "version restored as accepted", fiber.Map{"ttable_version_id": id})
}

func (ctl *TtableVersionController) RollbackCandidates(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid version id")
	}

	rows, err := ctl.Lifecycle.RollbackCandidates(reqCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonOK(c, "ok", dto.NewTtableVersionResponses(rows))
}
