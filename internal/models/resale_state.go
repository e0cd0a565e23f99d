package models

import (
	"fmt"
	"time"
)

// ResaleStatus is the persisted status of a resale listing
type ResaleStatus string

const (
	ResaleStatusAvailable ResaleStatus = "available"
	ResaleStatusSold      ResaleStatus = "sold"
	ResaleStatusCancelled ResaleStatus = "cancelled"
)

// ListingState is the lifecycle state of a resale listing. It is one of
// Available, Sold or Cancelled; the only transitions are Available -> Sold
// and Available -> Cancelled.
type ListingState interface {
	Status() ResaleStatus
	isListingState()
}

// Available listings can still be purchased or cancelled
type Available struct{}

// Sold records who bought the listing and when
type Sold struct {
	BuyerID int64
	At      time.Time
}

// Cancelled records when the seller withdrew the listing
type Cancelled struct {
	At time.Time
}

func (Available) Status() ResaleStatus { return ResaleStatusAvailable }
func (Sold) Status() ResaleStatus      { return ResaleStatusSold }
func (Cancelled) Status() ResaleStatus { return ResaleStatusCancelled }

func (Available) isListingState() {}
func (Sold) isListingState()      {}
func (Cancelled) isListingState() {}

// State decodes the row into its lifecycle state. A row whose terminal
// fields disagree with its status is reported as an error.
func (r *ResaleTicket) State() (ListingState, error) {
	switch r.Status {
	case ResaleStatusAvailable:
		if r.BuyerID != nil || r.SoldDate != nil || r.CancelledDate != nil {
			return nil, fmt.Errorf("resale listing %d is available but carries terminal fields", r.ID)
		}
		return Available{}, nil
	case ResaleStatusSold:
		if r.BuyerID == nil || r.SoldDate == nil {
			return nil, fmt.Errorf("resale listing %d is sold without buyer or sale date", r.ID)
		}
		return Sold{BuyerID: *r.BuyerID, At: *r.SoldDate}, nil
	case ResaleStatusCancelled:
		if r.CancelledDate == nil {
			return nil, fmt.Errorf("resale listing %d is cancelled without cancellation date", r.ID)
		}
		return Cancelled{At: *r.CancelledDate}, nil
	default:
		return nil, fmt.Errorf("resale listing %d has unknown status %q", r.ID, r.Status)
	}
}
