package service

import (
	"coachdesk/internal/domain"
	"coachdesk/internal/messaging"
	"context"
	"errors"

	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrMissingPhoneNumber = errors.New("client has no phone number")
)

// Default message templates. A coach can pass a custom template per send;
// empty means use the default.
const (
	defaultBudgetAssignedTemplate = "Hi {{name}}! Your new action plan \"{{budget_name}}\" is ready. View it here: {{budget_link}}"
	defaultCredentialsTemplate    = "Hi {{name}}! Your login is ready.\nEmail: {{email}}\nPassword: {{password}}\nLog in at {{login_url}}"
)

// NotificationService composes and sends WhatsApp messages. Delivery is
// best-effort: a gateway rejection comes back in the Result for the caller to
// surface, and never fails the operation that triggered the message.
type NotificationService interface {
	SendBudgetAssigned(ctx context.Context, clientName, phone string, budget *domain.Budget, template string) (messaging.Result, error)
	SendPortalCredentials(ctx context.Context, clientName, phone string, creds *PortalCredentials, template string) (messaging.Result, error)
	SendCustomMessage(ctx context.Context, phone, message string) (messaging.Result, error)
	GenerateBudgetLink(budgetID string) string
}

// notificationService implements the NotificationService interface.
type notificationService struct {
	sender messaging.Sender
	links  *messaging.LinkBuilder
	logger *zap.Logger
}

// NewNotificationService creates a new instance of notificationService.
func NewNotificationService(sender messaging.Sender, links *messaging.LinkBuilder, logger *zap.Logger) NotificationService {
	return &notificationService{
		sender: sender,
		links:  links,
		logger: logger,
	}
}

// SendBudgetAssigned notifies a client that an action plan is ready for them.
func (s *notificationService) SendBudgetAssigned(ctx context.Context, clientName, phone string, budget *domain.Budget, template string) (messaging.Result, error) {
	if phone == "" {
		return messaging.Result{}, ErrMissingPhoneNumber
	}
	if template == "" {
		template = defaultBudgetAssignedTemplate
	}

	message := messaging.ReplacePlaceholders(template, map[string]string{
		"name":        clientName,
		"budget_name": budget.Name,
		"budget_link": s.links.GenerateBudgetLink(budget.ID.Hex()),
	})

	return s.send(ctx, phone, message)
}

// SendPortalCredentials delivers a freshly issued portal login to a client.
func (s *notificationService) SendPortalCredentials(ctx context.Context, clientName, phone string, creds *PortalCredentials, template string) (messaging.Result, error) {
	if phone == "" {
		return messaging.Result{}, ErrMissingPhoneNumber
	}
	if template == "" {
		template = defaultCredentialsTemplate
	}

	message := messaging.ReplacePlaceholders(template, map[string]string{
		"name":      clientName,
		"email":     creds.Email,
		"password":  creds.Password,
		"login_url": creds.LoginURL,
	})

	return s.send(ctx, phone, message)
}

// SendCustomMessage delivers a coach-written message as-is.
func (s *notificationService) SendCustomMessage(ctx context.Context, phone, message string) (messaging.Result, error) {
	if phone == "" {
		return messaging.Result{}, ErrMissingPhoneNumber
	}
	return s.send(ctx, phone, message)
}

// GenerateBudgetLink exposes the shareable read-only budget URL.
func (s *notificationService) GenerateBudgetLink(budgetID string) string {
	return s.links.GenerateBudgetLink(budgetID)
}

func (s *notificationService) send(ctx context.Context, phone, message string) (messaging.Result, error) {
	result, err := s.sender.SendWhatsAppMessage(ctx, phone, message)
	if err != nil {
		s.logger.Warn("whatsapp send failed", zap.String("phone", phone), zap.Error(err))
		return messaging.Result{}, err
	}
	if !result.Success {
		s.logger.Warn("whatsapp delivery rejected", zap.String("phone", phone), zap.String("reason", result.Error))
	}
	return result, nil
}
