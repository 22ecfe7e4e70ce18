package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidClientRef = errors.New("client ref must name exactly one of customer or lead")

// ClientRef identifies the target of an assignment or plan row: exactly one of
// a confirmed customer or a prospective lead.
type ClientRef struct {
	CustomerID *primitive.ObjectID `bson:"customerId,omitempty" json:"customerId,omitempty"`
	LeadID     *primitive.ObjectID `bson:"leadId,omitempty" json:"leadId,omitempty"`
}

// NewCustomerRef builds a ClientRef pointing at a customer.
func NewCustomerRef(id primitive.ObjectID) ClientRef {
	return ClientRef{CustomerID: &id}
}

// NewLeadRef builds a ClientRef pointing at a lead.
func NewLeadRef(id primitive.ObjectID) ClientRef {
	return ClientRef{LeadID: &id}
}

// Validate checks the exactly-one invariant.
func (r ClientRef) Validate() error {
	if (r.CustomerID == nil) == (r.LeadID == nil) {
		return ErrInvalidClientRef
	}
	return nil
}

// Key returns a stable string form used in cache keys, e.g. "customer:<hex>".
func (r ClientRef) Key() string {
	switch {
	case r.CustomerID != nil:
		return "customer:" + r.CustomerID.Hex()
	case r.LeadID != nil:
		return "lead:" + r.LeadID.Hex()
	default:
		return "none"
	}
}

// BudgetAssignment links a Budget to a single customer or lead. At most one
// assignment per (budget, client) pair is expected to be active at a time;
// resolution tolerates zero or several by falling back to the first in list.
type BudgetAssignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BudgetID   primitive.ObjectID `bson:"budgetId" json:"budgetId"`
	Client     ClientRef          `bson:"client,inline" json:"client"`
	IsActive   bool               `bson:"isActive" json:"isActive"`
	AssignedAt time.Time          `bson:"assignedAt" json:"assignedAt"`
}
