package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/allocation"
	"stockledger/internal/domain/journal"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// InventoryHandler serves inventory records and adjustments.
type InventoryHandler struct {
	*BaseHandler
	ledger  *ledger.Service
	journal *journal.Service
}

// NewInventoryHandler creates an inventory handler.
func NewInventoryHandler(base *BaseHandler, ledgerSvc *ledger.Service, journalSvc *journal.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, ledger: ledgerSvc, journal: journalSvc}
}

// Get returns one inventory record with its derived availability.
// GET /api/v1/inventory/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	inventoryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.ledger.GetRecord(c.Request.Context(), inventoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewInventoryResponse(record))
}

// Adjust applies one bucket adjustment.
// POST /api/v1/inventory/:id/adjustments
func (h *InventoryHandler) Adjust(c *gin.Context) {
	inventoryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	applyReq, err := h.buildApplyRequest(c, inventoryID, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	record, err := h.ledger.ApplyAdjustment(c.Request.Context(), applyReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.NewAdjustmentResponse(record))
}

// History returns the record's journal entries, newest first.
// GET /api/v1/inventory/:id/adjustments
func (h *InventoryHandler) History(c *gin.Context) {
	inventoryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	filter := journal.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	records, err := h.journal.HistoryByInventory(c.Request.Context(), inventoryID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewAdjustmentListResponse(records))
}

func (h *InventoryHandler) buildApplyRequest(c *gin.Context, inventoryID id.ID, req dto.AdjustmentRequest) (ledger.ApplyRequest, error) {
	adjType, err := entity.ParseAdjustmentType(req.AdjustmentType)
	if err != nil {
		return ledger.ApplyRequest{}, err
	}
	reasonID, err := id.Parse(req.ReasonID)
	if err != nil {
		return ledger.ApplyRequest{}, apperror.NewValidation("invalid reason id")
	}

	applyReq := ledger.ApplyRequest{
		InventoryID:    inventoryID,
		AdjustmentType: adjType,
		Quantity:       req.Quantity,
		ReasonID:       reasonID,
		ActorID:        h.ActorID(c),
		Notes:          req.Notes,
	}

	if req.Lot != nil {
		hints, err := buildLotHints(*req.Lot)
		if err != nil {
			return ledger.ApplyRequest{}, err
		}
		applyReq.LotHints = hints
	}
	if req.Serials != nil {
		applyReq.SerialHints = &ledger.SerialHints{
			SerialNumbers: req.Serials.SerialNumbers,
			Notes:         req.Notes,
		}
	}

	return applyReq, nil
}

func buildLotHints(req dto.LotHintsRequest) (*ledger.LotHints, error) {
	strategy, err := allocation.ParsePolicy(req.Strategy)
	if err != nil {
		return nil, err
	}

	hints := &ledger.LotHints{
		LotNumber:         req.LotNumber,
		ExpiryDate:        req.ExpiryDate,
		ManufacturingDate: req.ManufacturingDate,
		Strategy:          strategy,
	}

	if req.CostPricePerUnit != nil {
		cost, err := types.NewMoneyFromString(*req.CostPricePerUnit)
		if err != nil {
			return nil, apperror.NewValidation("invalid cost price").
				WithDetail("costPricePerUnit", *req.CostPricePerUnit)
		}
		hints.CostPricePerUnit = &cost
	}

	return hints, nil
}
