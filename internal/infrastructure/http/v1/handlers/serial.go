package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/serial"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// SerialHandler serves the serialized sub-ledger endpoints.
type SerialHandler struct {
	*BaseHandler
	serials *serial.Service
}

// NewSerialHandler creates a serialized unit handler.
func NewSerialHandler(base *BaseHandler, serials *serial.Service) *SerialHandler {
	return &SerialHandler{BaseHandler: base, serials: serials}
}

// Receive registers one serialized unit.
// POST /api/v1/serialized
func (h *SerialHandler) Receive(c *gin.Context) {
	var req dto.ReceiveSerialRequest
	if !h.BindJSON(c, &req) {
		return
	}

	recReq, err := h.buildReceiveRequest(c, req.ProductID, req.LocationID, []string{req.SerialNumber}, req.ReasonID, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	unit, err := h.serials.Receive(c.Request.Context(), recReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.NewSerialResponse(unit))
}

// ReceiveBatch registers many units in one adjustment.
// POST /api/v1/serialized/batch
func (h *SerialHandler) ReceiveBatch(c *gin.Context) {
	var req dto.ReceiveSerialBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	recReq, err := h.buildReceiveRequest(c, req.ProductID, req.LocationID, req.SerialNumbers, req.ReasonID, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	units, err := h.serials.ReceiveBatch(c.Request.Context(), recReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.NewSerialListResponse(units))
}

// Get returns one unit.
// GET /api/v1/serialized/:id
func (h *SerialHandler) Get(c *gin.Context) {
	unitID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	unit, err := h.serials.GetUnit(c.Request.Context(), unitID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewSerialResponse(unit))
}

// Reserve earmarks an AVAILABLE unit.
// POST /api/v1/serialized/:id/reserve
func (h *SerialHandler) Reserve(c *gin.Context) {
	h.act(c, h.serials.Reserve)
}

// Release returns a RESERVED unit to AVAILABLE.
// POST /api/v1/serialized/:id/release
func (h *SerialHandler) Release(c *gin.Context) {
	h.act(c, h.serials.Release)
}

// Ship sells a RESERVED unit.
// POST /api/v1/serialized/:id/ship
func (h *SerialHandler) Ship(c *gin.Context) {
	h.act(c, h.serials.Ship)
}

// UpdateStatus performs a general status transition.
// POST /api/v1/serialized/:id/status
func (h *SerialHandler) UpdateStatus(c *gin.Context) {
	unitID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SerialStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	status, err := entity.ParseSerialStatus(req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	statusReq := serial.StatusRequest{
		UnitID:    unitID,
		NewStatus: status,
		ActorID:   h.ActorID(c),
		Notes:     req.Notes,
	}
	if req.ReasonID != "" {
		reasonID, err := id.Parse(req.ReasonID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid reason id"))
			return
		}
		statusReq.ReasonID = reasonID
	}

	unit, err := h.serials.UpdateStatus(c.Request.Context(), statusReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewSerialResponse(unit))
}

// FindAvailable returns the oldest AVAILABLE unit of a record.
// GET /api/v1/inventory/:id/serialized/available
func (h *SerialHandler) FindAvailable(c *gin.Context) {
	inventoryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	unit, err := h.serials.FindAvailable(c.Request.Context(), inventoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewSerialResponse(unit))
}

// List returns units of a record filtered by status.
// GET /api/v1/inventory/:id/serialized?status=&limit=
func (h *SerialHandler) List(c *gin.Context) {
	inventoryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	status := entity.SerialAvailable
	if s := c.Query("status"); s != "" {
		parsed, err := entity.ParseSerialStatus(s)
		if err != nil {
			h.Error(c, err)
			return
		}
		status = parsed
	}

	units, err := h.serials.ListByStatus(c.Request.Context(), inventoryID, status, h.ParseIntQuery(c, "limit", 100))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewSerialListResponse(units))
}

func (h *SerialHandler) buildReceiveRequest(c *gin.Context, productID, locationID string, serialNumbers []string, reasonID string, notes *string) (serial.ReceiveRequest, error) {
	pid, err := id.Parse(productID)
	if err != nil {
		return serial.ReceiveRequest{}, apperror.NewValidation("invalid product id")
	}
	lid, err := id.Parse(locationID)
	if err != nil {
		return serial.ReceiveRequest{}, apperror.NewValidation("invalid location id")
	}
	rid, err := id.Parse(reasonID)
	if err != nil {
		return serial.ReceiveRequest{}, apperror.NewValidation("invalid reason id")
	}

	return serial.ReceiveRequest{
		ProductID:     pid,
		LocationID:    lid,
		SerialNumbers: serialNumbers,
		ReasonID:      rid,
		ActorID:       h.ActorID(c),
		Notes:         notes,
	}, nil
}

func (h *SerialHandler) act(c *gin.Context, op func(ctx context.Context, req serial.UnitRequest) (*entity.SerializedUnit, error)) {
	unitID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SerialActionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	reasonID, err := id.Parse(req.ReasonID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid reason id"))
		return
	}

	unit, err := op(c.Request.Context(), serial.UnitRequest{
		UnitID:   unitID,
		ReasonID: reasonID,
		ActorID:  h.ActorID(c),
		Notes:    req.Notes,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewSerialResponse(unit))
}
