package model

import "strings"

// Provider names a client variant.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
	ProviderGoogle Provider = "google"
)

// Rule routes base-model identifiers containing any of its tokens to a
// provider.
type Rule struct {
	Provider Provider
	Tokens   []string
}

// Resolver maps a base-model identifier to its provider. Rules are checked
// in order; identifiers matching no rule use Default. The table is plain
// data so callers can extend or replace it without touching task logic.
type Resolver struct {
	Rules   []Rule
	Default Provider
}

// DefaultResolver recognizes the stock proprietary vendor tokens and routes
// everything else to the managed local runtime.
func DefaultResolver() Resolver {
	return Resolver{
		Rules: []Rule{
			{Provider: ProviderOpenAI, Tokens: []string{"gpt"}},
			{Provider: ProviderGoogle, Tokens: []string{"bison", "unicorn", "gemini", "gecko", "otter"}},
		},
		Default: ProviderOllama,
	}
}

// Resolve returns the provider for a base-model identifier.
func (r Resolver) Resolve(baseModel string) Provider {
	for _, rule := range r.Rules {
		for _, token := range rule.Tokens {
			if token != "" && strings.Contains(baseModel, token) {
				return rule.Provider
			}
		}
	}
	return r.Default
}

// Hosted reports whether the provider addresses a fixed remote model.
func (p Provider) Hosted() bool {
	return p == ProviderOpenAI || p == ProviderGoogle
}
