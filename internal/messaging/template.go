package messaging

import "strings"

// Placeholder tokens supported by message templates.
const (
	TokenName       = "{{name}}"
	TokenBudgetName = "{{budget_name}}"
	TokenBudgetLink = "{{budget_link}}"
	TokenEmail      = "{{email}}"
	TokenPassword   = "{{password}}"
	TokenLoginURL   = "{{login_url}}"
)

// ReplacePlaceholders substitutes {{token}} markers in a message template.
// Tokens without a value in the map are left intact so a half-filled template
// is visible rather than silently blanked.
func ReplacePlaceholders(template string, values map[string]string) string {
	result := template
	for token, value := range values {
		if !strings.HasPrefix(token, "{{") {
			token = "{{" + token + "}}"
		}
		result = strings.ReplaceAll(result, token, value)
	}
	return result
}

// LinkBuilder produces shareable URLs from configured base addresses.
type LinkBuilder struct {
	budgetBaseURL string
	loginURL      string
}

// NewLinkBuilder creates a LinkBuilder. budgetBaseURL is the public read-only
// budget viewer, loginURL the client portal entry point.
func NewLinkBuilder(budgetBaseURL, loginURL string) *LinkBuilder {
	return &LinkBuilder{
		budgetBaseURL: strings.TrimRight(budgetBaseURL, "/"),
		loginURL:      loginURL,
	}
}

// GenerateBudgetLink produces the shareable URL for a budget's read-only view.
func (b *LinkBuilder) GenerateBudgetLink(budgetID string) string {
	return b.budgetBaseURL + "/budgets/" + budgetID
}

// LoginURL returns the client portal login address.
func (b *LinkBuilder) LoginURL() string {
	return b.loginURL
}
