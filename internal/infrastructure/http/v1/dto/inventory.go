package dto

import (
	"time"

	"stockledger/internal/core/entity"
)

// AdjustmentRequest applies one bucket adjustment to an inventory
// record. Quantity is a positive magnitude; direction comes from the
// adjustment type.
type AdjustmentRequest struct {
	AdjustmentType string  `json:"adjustmentType" binding:"required"`
	Quantity       int64   `json:"quantity" binding:"required,gt=0"`
	ReasonID       string  `json:"reasonId" binding:"required,uuid"`
	Notes          *string `json:"notes,omitempty"`

	Lot     *LotHintsRequest    `json:"lot,omitempty"`
	Serials *SerialHintsRequest `json:"serials,omitempty"`
}

// LotHintsRequest drives the lot sub-ledger within an adjustment.
type LotHintsRequest struct {
	LotNumber         *string    `json:"lotNumber,omitempty"`
	ExpiryDate        *time.Time `json:"expiryDate,omitempty"`
	ManufacturingDate *time.Time `json:"manufacturingDate,omitempty"`
	CostPricePerUnit  *string    `json:"costPricePerUnit,omitempty"`
	Strategy          string     `json:"strategy,omitempty"`
}

// SerialHintsRequest drives the serialized sub-ledger within an
// adjustment.
type SerialHintsRequest struct {
	SerialNumbers []string `json:"serialNumbers"`
}

// InventoryResponse is one inventory record with its derived
// availability.
type InventoryResponse struct {
	ID                  string    `json:"id"`
	ProductID           string    `json:"productId"`
	LocationID          string    `json:"locationId"`
	StockQuantity       int64     `json:"stockQuantity"`
	ReservedQuantity    int64     `json:"reservedQuantity"`
	NonSaleableQuantity int64     `json:"nonSaleableQuantity"`
	OnOrderQuantity     int64     `json:"onOrderQuantity"`
	InTransitQuantity   int64     `json:"inTransitQuantity"`
	ReturnedQuantity    int64     `json:"returnedQuantity"`
	HoldQuantity        int64     `json:"holdQuantity"`
	BackorderQuantity   int64     `json:"backorderQuantity"`
	AvailableToPromise  int64     `json:"availableToPromise"`
	LowStockThreshold   *int64    `json:"lowStockThreshold,omitempty"`
	IsLowStock          bool      `json:"isLowStock"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// NewInventoryResponse maps an inventory record.
func NewInventoryResponse(r *entity.InventoryRecord) InventoryResponse {
	return InventoryResponse{
		ID:                  r.ID.String(),
		ProductID:           r.ProductID.String(),
		LocationID:          r.LocationID.String(),
		StockQuantity:       r.StockQuantity,
		ReservedQuantity:    r.ReservedQuantity,
		NonSaleableQuantity: r.NonSaleableQuantity,
		OnOrderQuantity:     r.OnOrderQuantity,
		InTransitQuantity:   r.InTransitQuantity,
		ReturnedQuantity:    r.ReturnedQuantity,
		HoldQuantity:        r.HoldQuantity,
		BackorderQuantity:   r.BackorderQuantity,
		AvailableToPromise:  r.AvailableToPromise(),
		LowStockThreshold:   r.LowStockThreshold,
		IsLowStock:          r.IsLowStock(),
		UpdatedAt:           r.UpdatedAt,
	}
}

// AdjustmentResponse is one journal entry.
type AdjustmentResponse struct {
	ID               string    `json:"id"`
	InventoryID      string    `json:"inventoryId"`
	AdjustmentType   string    `json:"adjustmentType"`
	QuantityChange   int64     `json:"quantityChange"`
	NewStockQuantity int64     `json:"newStockQuantity"`
	ReasonID         string    `json:"reasonId"`
	ActorID          *string   `json:"actorId,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NewAdjustmentResponse maps a journal entry.
func NewAdjustmentResponse(r *entity.AdjustmentRecord) AdjustmentResponse {
	resp := AdjustmentResponse{
		ID:               r.ID.String(),
		InventoryID:      r.InventoryID.String(),
		AdjustmentType:   string(r.AdjustmentType),
		QuantityChange:   r.QuantityChange,
		NewStockQuantity: r.NewStockQuantity,
		ReasonID:         r.ReasonID.String(),
		Notes:            r.Notes,
		CreatedAt:        r.CreatedAt,
	}
	if r.ActorID != nil {
		actorID := r.ActorID.String()
		resp.ActorID = &actorID
	}
	return resp
}

// NewAdjustmentListResponse maps a page of journal entries.
func NewAdjustmentListResponse(records []entity.AdjustmentRecord) []AdjustmentResponse {
	out := make([]AdjustmentResponse, 0, len(records))
	for i := range records {
		out = append(out, NewAdjustmentResponse(&records[i]))
	}
	return out
}
