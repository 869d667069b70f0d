package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// COMPLAINT (ORDER ISSUE REPORT, PRECURSOR TO A CLAIM)
// ============================================================================

// Complaint carries a read-only snapshot of the order facts supplied by the
// order-management subsystem: product, unit price, quantity and dispatch
// date. The engine never mutates order state itself.
type Complaint struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	OrderRef           string          `json:"order_ref" db:"order_ref"`
	SellerID           string          `json:"seller_id" db:"seller_id"`
	BuyerID            string          `json:"buyer_id" db:"buyer_id"`
	ProductName        string          `json:"product_name" db:"product_name"`
	Price              float64         `json:"price" db:"price"`
	Quantity           int             `json:"quantity" db:"quantity"`
	DispatchDate       int64           `json:"dispatch_date" db:"dispatch_date"`
	ComplaintDate      int64           `json:"complaint_date" db:"complaint_date"`
	Reason             string          `json:"reason" db:"reason"`
	Description        *string         `json:"description,omitempty" db:"description"`
	Status             ComplaintStatus `json:"status" db:"status"`
	CancellationReason *string         `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CancellationDate   *int64          `json:"cancellation_date,omitempty" db:"cancellation_date"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderAmount is the disputed value: unit price times quantity.
func (c *Complaint) OrderAmount() float64 {
	return c.Price * float64(c.Quantity)
}
