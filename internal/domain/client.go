package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeadStatus tracks a lead through the sales funnel.
type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadConverted LeadStatus = "converted" // became a customer
	LeadLost      LeadStatus = "lost"
)

// Lead is a prospective client. Converting a lead copies its contact fields
// onto a new Customer and re-points any budget assignments and plan rows.
type Lead struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Status    LeadStatus         `bson:"status" json:"status"`
	Source    string             `bson:"source,omitempty" json:"source,omitempty"` // e.g. "instagram", "referral"
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Customer is a confirmed, paying client.
type Customer struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID  `bson:"coachId" json:"coachId"`
	Name      string              `bson:"name" json:"name"`
	Email     string              `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Notes     string              `bson:"notes,omitempty" json:"notes,omitempty"`
	LeadID    *primitive.ObjectID `bson:"leadId,omitempty" json:"leadId,omitempty"` // origin lead, when converted
	PortalID  *primitive.ObjectID `bson:"portalId,omitempty" json:"portalId,omitempty"` // portal login user, when issued
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}
