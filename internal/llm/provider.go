// Package llm turns a normalized claim into a plain-language coverage
// summary through an external language model. Entirely optional: no
// provider configured means the feature is disabled, and failures here
// never affect the core claim flow.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/claimhub/claimctl/internal/model"
)

// Provider defines the interface for explanation providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Explain generates a plain-language summary of the claim
	Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error)
}

// ExplainRequest contains the input for claim explanation
type ExplainRequest struct {
	// Claim is the normalized claim to explain
	Claim model.CanonicalClaim

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExplainResponse contains the generated explanation
type ExplainResponse struct {
	// Summary is the plain-language explanation
	Summary string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// BuildPrompt constructs the explanation prompt. The model is confined to
// the fields actually present on the claim; it must not invent amounts,
// dates, or medical detail.
func BuildPrompt(claim model.CanonicalClaim) string {
	var sb strings.Builder
	sb.WriteString(`Explain this medical claim to the patient in plain language.

RULES:
1. Use ONLY the fields listed below. Do not invent amounts, dates, diagnoses, or medications.
2. If a field reads "Unknown" or "Not specified", say the record does not include it.
3. Do not give medical or legal advice; describe what the record says.
4. Keep it to 3-4 short sentences.

Claim record:
`)
	fmt.Fprintf(&sb, "- Patient: %s\n", claim.PatientName)
	fmt.Fprintf(&sb, "- Provider: %s\n", claim.ProviderName)
	fmt.Fprintf(&sb, "- Diagnosis: %s\n", claim.Diagnosis)
	fmt.Fprintf(&sb, "- Service date: %s\n", claim.ServiceDate)
	fmt.Fprintf(&sb, "- Status: %s\n", claim.Status)
	fmt.Fprintf(&sb, "- Total amount: $%s\n", claim.TotalAmount)
	fmt.Fprintf(&sb, "- Insurance covered: $%s\n", claim.InsuranceCovered)
	fmt.Fprintf(&sb, "- Patient responsibility: $%s\n", claim.PatientResponsibility)

	if len(claim.Medications) > 0 {
		sb.WriteString("- Medications:\n")
		for _, med := range claim.Medications {
			fmt.Fprintf(&sb, "  - %s %s (%s)\n", med.Name, med.Dosage, med.Frequency)
		}
	}

	return sb.String()
}

// NewProvider creates an explanation provider from configuration.
// An empty provider name returns nil, nil: the feature is disabled.
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", cfg.Provider)
	}
}
