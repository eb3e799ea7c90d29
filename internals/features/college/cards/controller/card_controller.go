// file: internals/features/college/cards/controller/card_controller.go
package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "kampusku_backend/internals/features/college/cards/dto"
	service "kampusku_backend/internals/features/college/cards/service"
	"kampusku_backend/internals/features/college/errs"
	helper "kampusku_backend/internals/helpers"
	"kampusku_backend/internals/middlewares/auth"
)

/* =======================================================
   CONTROLLER
   ======================================================= */

type CardController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Cards    *service.CardService
}

func NewCardController(db *gorm.DB, v *validator.Validate) *CardController {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	return &CardController{
		DB:       db,
		Validate: v,
		Cards:    service.NewCardService(db),
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

func parseUUIDQuery(c *fiber.Ctx, key string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Query(key)))
}

/* ============================ SAVE ============================ */

// Save: konflik jadwal dijawab 200 + success=false (hasil bisnis),
// supaya UI bisa menampilkan pemilik slot tanpa menangkap error.
func (ctl *CardController) Save(c *fiber.Ctx) error {
	var req dto.SaveCardRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	res, err := ctl.Cards.SaveCard(reqCtx(c), req.CardTtableVersionID, req.CardGroupID, auth.UserID(c), req.ToAssignments())
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

/* ============================ READ ============================ */

func (ctl *CardController) GetCurrent(c *fiber.Ctx) error {
	versionID, err := parseUUIDQuery(c, "ttable_version_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid ttable_version_id")
	}
	groupID, err := parseUUIDQuery(c, "group_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid group_id")
	}

	card, err := ctl.Cards.GetCurrent(reqCtx(c), versionID, groupID)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonOK(c, "ok", dto.NewCardResponse(card))
}

func (ctl *CardController) GetHistory(c *fiber.Ctx) error {
	versionID, err := parseUUIDQuery(c, "ttable_version_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid ttable_version_id")
	}
	groupID, err := parseUUIDQuery(c, "group_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid group_id")
	}

	rows, err := ctl.Cards.GetHistory(reqCtx(c), versionID, groupID)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonOK(c, "ok", dto.NewCardHistoryResponses(rows))
}

func (ctl *CardController) HistoryContent(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid card_hist_id")
	}

	details, err := ctl.Cards.GetHistoryContent(reqCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonOK(c, "ok", dto.NewCardDetailResponses(details))
}

/* ============================ MUTATIONS ============================ */

func (ctl *CardController) Rollback(c *fiber.Ctx) error {
	var req dto.RollbackCardRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	res, err := ctl.Cards.Rollback(reqCtx(c), req.CardTtableVersionID, req.CardGroupID, req.CardHistID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

func (ctl *CardController) Accept(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid card_hist_id")
	}
	res, err := ctl.Cards.AcceptCard(reqCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

func (ctl *CardController) MarkEdited(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid card_hist_id")
	}
	if err := ctl.Cards.MarkCardEdited(reqCtx(c), id); err != nil {
		return respondErr(c, err)
	}
	return helper.JsonUpdated(c, "card marked as edited", fiber.Map{"card_hist_id": id})
}

func (ctl *CardController) Bulk(c *fiber.Ctx) error {
	var req dto.BulkAddRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	res, err := ctl.Cards.BulkAdd(reqCtx(c), req.CardTtableVersionID, auth.UserID(c), req.ToGroupAssignments())
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}
