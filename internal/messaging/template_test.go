package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplacePlaceholders(t *testing.T) {
	template := "Hi {{name}}! Your plan {{budget_name}} is ready: {{budget_link}}"

	got := ReplacePlaceholders(template, map[string]string{
		"name":        "Dana",
		"budget_name": "Summer Cut",
		"budget_link": "https://app.example.com/budgets/b1",
	})

	assert.Equal(t, "Hi Dana! Your plan Summer Cut is ready: https://app.example.com/budgets/b1", got)
}

func TestReplacePlaceholdersAcceptsWrappedTokens(t *testing.T) {
	got := ReplacePlaceholders("Login: {{login_url}} / {{email}}", map[string]string{
		TokenLoginURL: "https://portal.example.com",
		TokenEmail:    "dana@example.com",
	})

	assert.Equal(t, "Login: https://portal.example.com / dana@example.com", got)
}

func TestReplacePlaceholdersLeavesUnknownTokens(t *testing.T) {
	got := ReplacePlaceholders("Hi {{name}}, code {{password}}", map[string]string{
		"name": "Dana",
	})

	assert.Equal(t, "Hi Dana, code {{password}}", got)
}

func TestGenerateBudgetLink(t *testing.T) {
	links := NewLinkBuilder("https://app.example.com/", "https://portal.example.com/login")

	assert.Equal(t, "https://app.example.com/budgets/abc123", links.GenerateBudgetLink("abc123"))
	assert.Equal(t, "https://portal.example.com/login", links.LoginURL())
}
