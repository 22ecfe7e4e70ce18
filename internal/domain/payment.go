package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNonPositiveAmount = errors.New("payment amount must be positive")

// PaymentMethod is how the client paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentOther    PaymentMethod = "other"
)

// Payment records a single client payment.
type Payment struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID  primitive.ObjectID `bson:"coachId" json:"coachId"`
	Client   ClientRef          `bson:"client,inline" json:"client"`
	Amount   float64            `bson:"amount" json:"amount"`
	Currency string             `bson:"currency" json:"currency"`
	Method   PaymentMethod      `bson:"method" json:"method"`
	PaidAt   time.Time          `bson:"paidAt" json:"paidAt"`
	Notes    string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
}

// Validate checks fields the presentation layer must not be trusted with.
func (p *Payment) Validate() error {
	if p.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if err := p.Client.Validate(); err != nil {
		return err
	}
	return nil
}
