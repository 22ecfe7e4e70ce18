package service

import (
	"coachdesk/internal/domain"
	"coachdesk/internal/messaging"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeSender struct {
	lastPhone   string
	lastMessage string
	result      messaging.Result
	err         error
}

func (s *fakeSender) SendWhatsAppMessage(_ context.Context, phone, message string) (messaging.Result, error) {
	s.lastPhone = phone
	s.lastMessage = message
	if s.err != nil {
		return messaging.Result{}, s.err
	}
	return s.result, nil
}

func newNotificationFixture(sender *fakeSender) NotificationService {
	links := messaging.NewLinkBuilder("https://app.example.com", "https://app.example.com/login")
	return NewNotificationService(sender, links, zap.NewNop())
}

func TestSendBudgetAssignedDefaultTemplate(t *testing.T) {
	sender := &fakeSender{result: messaging.Result{Success: true}}
	svc := newNotificationFixture(sender)

	budget := &domain.Budget{ID: primitive.NewObjectID(), Name: "Cut phase 1"}
	result, err := svc.SendBudgetAssigned(context.Background(), "Dana", "+15551234567", budget, "")
	require.NoError(t, err)
	assert.True(t, result.Success)

	assert.Equal(t, "+15551234567", sender.lastPhone)
	assert.Contains(t, sender.lastMessage, "Dana")
	assert.Contains(t, sender.lastMessage, "Cut phase 1")
	assert.Contains(t, sender.lastMessage, "https://app.example.com/budgets/"+budget.ID.Hex())
	assert.NotContains(t, sender.lastMessage, "{{")
}

func TestSendBudgetAssignedCustomTemplate(t *testing.T) {
	sender := &fakeSender{result: messaging.Result{Success: true}}
	svc := newNotificationFixture(sender)

	budget := &domain.Budget{ID: primitive.NewObjectID(), Name: "Bulk"}
	_, err := svc.SendBudgetAssigned(context.Background(), "Dana", "+15551234567", budget, "New plan: {{budget_name}}")
	require.NoError(t, err)
	assert.Equal(t, "New plan: Bulk", sender.lastMessage)
}

func TestSendRequiresPhoneNumber(t *testing.T) {
	sender := &fakeSender{}
	svc := newNotificationFixture(sender)
	ctx := context.Background()

	_, err := svc.SendBudgetAssigned(ctx, "Dana", "", &domain.Budget{}, "")
	assert.ErrorIs(t, err, ErrMissingPhoneNumber)

	_, err = svc.SendCustomMessage(ctx, "", "hello")
	assert.ErrorIs(t, err, ErrMissingPhoneNumber)

	// Nothing reached the gateway.
	assert.Empty(t, sender.lastPhone)
}

func TestSendPortalCredentials(t *testing.T) {
	sender := &fakeSender{result: messaging.Result{Success: true}}
	svc := newNotificationFixture(sender)

	creds := &PortalCredentials{
		Email:    "dana@example.com",
		Password: "s3cret-pass",
		LoginURL: "https://app.example.com/login",
	}
	result, err := svc.SendPortalCredentials(context.Background(), "Dana", "+15551234567", creds, "")
	require.NoError(t, err)
	assert.True(t, result.Success)

	assert.Contains(t, sender.lastMessage, "dana@example.com")
	assert.Contains(t, sender.lastMessage, "s3cret-pass")
	assert.Contains(t, sender.lastMessage, "https://app.example.com/login")
}

func TestSendGatewayRejection(t *testing.T) {
	// A gateway rejection is a successful call with an unsuccessful Result.
	sender := &fakeSender{result: messaging.Result{Success: false, Error: "invalid recipient"}}
	svc := newNotificationFixture(sender)

	result, err := svc.SendCustomMessage(context.Background(), "+15551234567", "hello")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "invalid recipient", result.Error)
}

func TestSendTransportFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("gateway unreachable")}
	svc := newNotificationFixture(sender)

	_, err := svc.SendCustomMessage(context.Background(), "+15551234567", "hello")
	assert.Error(t, err)
}
