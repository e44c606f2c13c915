package model

// RawClaim is a claim record exactly as the backend returned it.
// Field names drift between snake_case and camelCase, amounts may be
// numbers or strings, and text fields may carry extractor artifacts.
type RawClaim map[string]any

// ClaimStatus is the processing state of a claim
type ClaimStatus string

const (
	StatusPending  ClaimStatus = "pending"
	StatusApproved ClaimStatus = "approved"
	StatusRejected ClaimStatus = "rejected"
)

// KnownStatus reports whether s is one of the enumerated claim statuses
func KnownStatus(s string) bool {
	switch ClaimStatus(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Medication is a prescribed medication attached to a claim
type Medication struct {
	Name      string `json:"name" yaml:"name"`
	Dosage    string `json:"dosage" yaml:"dosage"`
	Frequency string `json:"frequency" yaml:"frequency"`
}

// CanonicalClaim is the normalized claim shape consumed by rendering code.
// All text fields are non-empty (defaulted when the source was blank) and
// amounts are decimal strings fixed to two places.
type CanonicalClaim struct {
	ID                    string       `json:"id" yaml:"id"`
	PatientName           string       `json:"patient_name" yaml:"patient_name"`
	ProviderName          string       `json:"provider_name" yaml:"provider_name"`
	TotalAmount           string       `json:"total_amount" yaml:"total_amount"`
	Status                string       `json:"status" yaml:"status"`
	Diagnosis             string       `json:"diagnosis" yaml:"diagnosis"`
	Medications           []Medication `json:"medications,omitempty" yaml:"medications,omitempty"`
	ServiceDate           string       `json:"service_date" yaml:"service_date"`
	InsuranceCovered      string       `json:"insurance_covered" yaml:"insurance_covered"`
	PatientResponsibility string       `json:"patient_responsibility" yaml:"patient_responsibility"`
	CreatedAt             string       `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// UploadResult is the backend's response to a document upload
type UploadResult struct {
	Success bool     `json:"success"`
	Data    RawClaim `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
}
