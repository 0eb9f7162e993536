package dto

import (
	"time"

	"stockledger/internal/core/entity"
	"stockledger/internal/domain/lot"
)

// AddLotRequest receives quantity into a lot of an inventory record.
type AddLotRequest struct {
	LotNumber         string     `json:"lotNumber" binding:"required"`
	Quantity          int64      `json:"quantity" binding:"required,gt=0"`
	ExpiryDate        *time.Time `json:"expiryDate,omitempty"`
	ManufacturingDate *time.Time `json:"manufacturingDate,omitempty"`
	CostPricePerUnit  *string    `json:"costPricePerUnit,omitempty"`
	ReasonID          string     `json:"reasonId" binding:"required,uuid"`
	Notes             *string    `json:"notes,omitempty"`
}

// LotMoveRequest consumes, reserves or releases against one lot.
type LotMoveRequest struct {
	Quantity int64   `json:"quantity" binding:"required,gt=0"`
	ReasonID string  `json:"reasonId" binding:"required,uuid"`
	Notes    *string `json:"notes,omitempty"`
}

// LotDrawRequest draws from an inventory record's lot pool by
// allocation strategy.
type LotDrawRequest struct {
	Quantity int64   `json:"quantity" binding:"required,gt=0"`
	Strategy string  `json:"strategy,omitempty"`
	ReasonID string  `json:"reasonId" binding:"required,uuid"`
	Notes    *string `json:"notes,omitempty"`
}

// LotResponse is one lot row.
type LotResponse struct {
	ID                string     `json:"id"`
	ProductID         string     `json:"productId"`
	LocationID        string     `json:"locationId"`
	InventoryID       string     `json:"inventoryId"`
	LotNumber         string     `json:"lotNumber"`
	Quantity          int64      `json:"quantity"`
	ReservedQuantity  int64      `json:"reservedQuantity"`
	Status            string     `json:"status"`
	ExpiryDate        *time.Time `json:"expiryDate,omitempty"`
	ManufacturingDate *time.Time `json:"manufacturingDate,omitempty"`
	ReceivedDate      time.Time  `json:"receivedDate"`
	CostPricePerUnit  *string    `json:"costPricePerUnit,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// NewLotResponse maps a lot.
func NewLotResponse(l *entity.Lot) LotResponse {
	resp := LotResponse{
		ID:                l.ID.String(),
		ProductID:         l.ProductID.String(),
		LocationID:        l.LocationID.String(),
		InventoryID:       l.InventoryID.String(),
		LotNumber:         l.LotNumber,
		Quantity:          l.Quantity,
		ReservedQuantity:  l.ReservedQuantity,
		Status:            string(l.Status),
		ExpiryDate:        l.ExpiryDate,
		ManufacturingDate: l.ManufacturingDate,
		ReceivedDate:      l.ReceivedDate,
		Notes:             l.Notes,
		UpdatedAt:         l.UpdatedAt,
	}
	if l.CostPricePerUnit != nil {
		cost := l.CostPricePerUnit.String()
		resp.CostPricePerUnit = &cost
	}
	return resp
}

// NewLotListResponse maps a list of lots.
func NewLotListResponse(lots []entity.Lot) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for i := range lots {
		out = append(out, NewLotResponse(&lots[i]))
	}
	return out
}

// AllocationResponse is one step of a consumption plan.
type AllocationResponse struct {
	LotID     string `json:"lotId"`
	LotNumber string `json:"lotNumber"`
	Quantity  int64  `json:"quantity"`
}

// NewAllocationListResponse maps an allocation plan.
func NewAllocationListResponse(picks []lot.Allocation) []AllocationResponse {
	out := make([]AllocationResponse, 0, len(picks))
	for _, p := range picks {
		out = append(out, AllocationResponse{
			LotID:     p.Lot.ID.String(),
			LotNumber: p.Lot.LotNumber,
			Quantity:  p.Quantity,
		})
	}
	return out
}
