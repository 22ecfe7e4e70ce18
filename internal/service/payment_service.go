package service

import (
	"coachdesk/internal/domain"
	"coachdesk/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrPaymentNotFound = errors.New("payment not found")

// PaymentService records and lists client payments.
type PaymentService interface {
	RecordPayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	GetClientPayments(ctx context.Context, client domain.ClientRef) ([]domain.Payment, error)
	GetCoachPayments(ctx context.Context, coachID primitive.ObjectID) ([]domain.Payment, error)
	DeletePayment(ctx context.Context, id, coachID primitive.ObjectID) error
}

// paymentService implements the PaymentService interface.
type paymentService struct {
	paymentRepo repository.PaymentRepository
}

// NewPaymentService creates a new instance of paymentService.
func NewPaymentService(paymentRepo repository.PaymentRepository) PaymentService {
	return &paymentService{paymentRepo: paymentRepo}
}

// RecordPayment validates and persists a payment. Validation happens before
// any request is issued: a non-positive amount never reaches the store.
func (s *paymentService) RecordPayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if err := payment.Validate(); err != nil {
		return nil, err
	}
	if payment.Currency == "" {
		payment.Currency = "USD"
	}
	if payment.Method == "" {
		payment.Method = domain.PaymentOther
	}

	id, err := s.paymentRepo.Create(ctx, payment)
	if err != nil {
		return nil, err
	}
	payment.ID = id
	return payment, nil
}

func (s *paymentService) GetClientPayments(ctx context.Context, client domain.ClientRef) ([]domain.Payment, error) {
	if err := client.Validate(); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByClient(ctx, client)
}

func (s *paymentService) GetCoachPayments(ctx context.Context, coachID primitive.ObjectID) ([]domain.Payment, error) {
	return s.paymentRepo.GetByCoachID(ctx, coachID)
}

func (s *paymentService) DeletePayment(ctx context.Context, id, coachID primitive.ObjectID) error {
	err := s.paymentRepo.Delete(ctx, id, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPaymentNotFound
	}
	return err
}
