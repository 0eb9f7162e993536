package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/allocation"
	"stockledger/internal/domain/lot"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// LotHandler serves the lot sub-ledger endpoints.
type LotHandler struct {
	*BaseHandler
	lots *lot.Service
}

// NewLotHandler creates a lot handler.
func NewLotHandler(base *BaseHandler, lots *lot.Service) *LotHandler {
	return &LotHandler{BaseHandler: base, lots: lots}
}

// Add receives quantity into a lot.
// POST /api/v1/inventory/:id/lots
func (h *LotHandler) Add(c *gin.Context) {
	inventoryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AddLotRequest
	if !h.BindJSON(c, &req) {
		return
	}
	reasonID, err := id.Parse(req.ReasonID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid reason id"))
		return
	}

	addReq := lot.AddRequest{
		InventoryID:       inventoryID,
		LotNumber:         req.LotNumber,
		Quantity:          req.Quantity,
		ExpiryDate:        req.ExpiryDate,
		ManufacturingDate: req.ManufacturingDate,
		ReasonID:          reasonID,
		ActorID:           h.ActorID(c),
		Notes:             req.Notes,
	}
	if req.CostPricePerUnit != nil {
		cost, err := types.NewMoneyFromString(*req.CostPricePerUnit)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid cost price"))
			return
		}
		addReq.CostPricePerUnit = &cost
	}

	created, err := h.lots.AddQuantity(c.Request.Context(), addReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.NewLotResponse(created))
}

// List returns all lots of an inventory record.
// GET /api/v1/inventory/:id/lots
func (h *LotHandler) List(c *gin.Context) {
	inventoryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	lots, err := h.lots.ListByInventory(c.Request.Context(), inventoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewLotListResponse(lots))
}

// Get returns one lot.
// GET /api/v1/lots/:id
func (h *LotHandler) Get(c *gin.Context) {
	lotID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	l, err := h.lots.GetLot(c.Request.Context(), lotID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewLotResponse(l))
}

// Consume draws down one lot.
// POST /api/v1/lots/:id/consume
func (h *LotHandler) Consume(c *gin.Context) {
	h.move(c, h.lots.Consume)
}

// Reserve earmarks quantity on one lot.
// POST /api/v1/lots/:id/reserve
func (h *LotHandler) Reserve(c *gin.Context) {
	h.move(c, h.lots.Reserve)
}

// Release returns reserved quantity on one lot.
// POST /api/v1/lots/:id/release
func (h *LotHandler) Release(c *gin.Context) {
	h.move(c, h.lots.ReleaseReservation)
}

// Expire marks a lot EXPIRED.
// POST /api/v1/lots/:id/expire
func (h *LotHandler) Expire(c *gin.Context) {
	lotID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	l, err := h.lots.MarkExpired(c.Request.Context(), lotID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewLotResponse(l))
}

// ConsumeFromPool consumes across the record's lots by strategy.
// POST /api/v1/inventory/:id/lots/consume
func (h *LotHandler) ConsumeFromPool(c *gin.Context) {
	h.draw(c, h.lots.ConsumeFromInventory)
}

// ReserveFromPool reserves across the record's lots by strategy.
// POST /api/v1/inventory/:id/lots/reserve
func (h *LotHandler) ReserveFromPool(c *gin.Context) {
	h.draw(c, h.lots.ReserveFromInventory)
}

// Plan previews which lots a consumption would draw from.
// GET /api/v1/inventory/:id/lots/allocation?quantity=&strategy=
func (h *LotHandler) Plan(c *gin.Context) {
	inventoryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	quantity := int64(h.ParseIntQuery(c, "quantity", 0))
	strategy, err := allocation.ParsePolicy(c.Query("strategy"))
	if err != nil {
		h.Error(c, err)
		return
	}

	picks, err := h.lots.FindForConsumption(c.Request.Context(), inventoryID, quantity, strategy)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewAllocationListResponse(picks))
}

func (h *LotHandler) move(c *gin.Context, op func(ctx context.Context, req lot.MoveRequest) (*entity.Lot, error)) {
	lotID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.LotMoveRequest
	if !h.BindJSON(c, &req) {
		return
	}
	reasonID, err := id.Parse(req.ReasonID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid reason id"))
		return
	}

	l, err := op(c.Request.Context(), lot.MoveRequest{
		LotID:    lotID,
		Quantity: req.Quantity,
		ReasonID: reasonID,
		ActorID:  h.ActorID(c),
		Notes:    req.Notes,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewLotResponse(l))
}

func (h *LotHandler) draw(c *gin.Context, op func(ctx context.Context, req lot.DrawRequest) (*entity.AdjustmentRecord, error)) {
	inventoryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.LotDrawRequest
	if !h.BindJSON(c, &req) {
		return
	}
	reasonID, err := id.Parse(req.ReasonID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid reason id"))
		return
	}
	strategy, err := allocation.ParsePolicy(req.Strategy)
	if err != nil {
		h.Error(c, err)
		return
	}

	record, err := op(c.Request.Context(), lot.DrawRequest{
		InventoryID: inventoryID,
		Quantity:    req.Quantity,
		Strategy:    strategy,
		ReasonID:    reasonID,
		ActorID:     h.ActorID(c),
		Notes:       req.Notes,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewAdjustmentResponse(record))
}
