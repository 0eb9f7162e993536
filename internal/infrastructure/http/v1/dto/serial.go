package dto

import (
	"time"

	"stockledger/internal/core/entity"
)

// ReceiveSerialRequest registers one serialized unit.
type ReceiveSerialRequest struct {
	ProductID    string  `json:"productId" binding:"required,uuid"`
	LocationID   string  `json:"locationId" binding:"required,uuid"`
	SerialNumber string  `json:"serialNumber" binding:"required"`
	ReasonID     string  `json:"reasonId" binding:"required,uuid"`
	Notes        *string `json:"notes,omitempty"`
}

// ReceiveSerialBatchRequest registers many units in one adjustment.
type ReceiveSerialBatchRequest struct {
	ProductID     string   `json:"productId" binding:"required,uuid"`
	LocationID    string   `json:"locationId" binding:"required,uuid"`
	SerialNumbers []string `json:"serialNumbers" binding:"required,min=1"`
	ReasonID      string   `json:"reasonId" binding:"required,uuid"`
	Notes         *string  `json:"notes,omitempty"`
}

// SerialActionRequest reserves, releases or ships one unit.
type SerialActionRequest struct {
	ReasonID string  `json:"reasonId" binding:"required,uuid"`
	Notes    *string `json:"notes,omitempty"`
}

// SerialStatusRequest performs a general status transition. ReasonID is
// required only when the transition moves stock buckets.
type SerialStatusRequest struct {
	Status   string  `json:"status" binding:"required"`
	ReasonID string  `json:"reasonId,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// SerialResponse is one serialized unit.
type SerialResponse struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	LocationID   string    `json:"locationId"`
	InventoryID  string    `json:"inventoryId"`
	SerialNumber string    `json:"serialNumber"`
	Status       string    `json:"status"`
	Notes        *string   `json:"notes,omitempty"`
	ReceivedAt   time.Time `json:"receivedAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewSerialResponse maps a serialized unit.
func NewSerialResponse(u *entity.SerializedUnit) SerialResponse {
	return SerialResponse{
		ID:           u.ID.String(),
		ProductID:    u.ProductID.String(),
		LocationID:   u.LocationID.String(),
		InventoryID:  u.InventoryID.String(),
		SerialNumber: u.SerialNumber,
		Status:       string(u.Status),
		Notes:        u.Notes,
		ReceivedAt:   u.ReceivedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// NewSerialListResponse maps a list of units.
func NewSerialListResponse(units []entity.SerializedUnit) []SerialResponse {
	out := make([]SerialResponse, 0, len(units))
	for i := range units {
		out = append(out, NewSerialResponse(&units[i]))
	}
	return out
}
