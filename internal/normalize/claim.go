// Package normalize reconciles the inconsistent claim shapes returned by
// the backend into one canonical form. Upstream records drift between
// snake_case and camelCase keys, encode amounts as numbers or strings, and
// leave extractor artifacts in text fields. Normalization never fails:
// every malformed input degrades to a defaulted field.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/claimhub/claimctl/internal/model"
)

// Sentinel defaults substituted for empty text fields
const (
	SentinelUnknown      = "Unknown"
	SentinelNotSpecified = "Not specified"
)

var (
	// boilerplatePattern matches the residual label the upstream document
	// extractor sometimes embeds in text fields
	boilerplatePattern = regexp.MustCompile(`(?i)Patient ID`)

	// whitespacePattern matches runs of two or more whitespace characters
	whitespacePattern = regexp.MustCompile(`\s{2,}`)
)

// textField maps a canonical text field to its source keys, in fixed
// precedence order (structured snake_case key first, then camelCase),
// with the sentinel used when the cleaned value comes out empty.
type textField struct {
	keys     []string
	sentinel string
}

var (
	patientNameField  = textField{[]string{"patient_name", "patientName"}, SentinelUnknown}
	providerNameField = textField{[]string{"provider_name", "providerName"}, SentinelUnknown}
	diagnosisField    = textField{[]string{"diagnosis"}, SentinelNotSpecified}
	serviceDateField  = textField{[]string{"service_date", "serviceDate"}, SentinelNotSpecified}
	createdAtField    = textField{[]string{"created_at", "createdAt"}, ""}
)

// Amount source keys, same precedence rule as text fields
var (
	totalAmountKeys           = []string{"total_amount", "totalAmount"}
	insuranceCoveredKeys      = []string{"insurance_covered", "insuranceCovered"}
	patientResponsibilityKeys = []string{"patient_responsibility", "patientResponsibility"}
)

// Claim normalizes a raw claim record. A nil input yields a fully
// defaulted claim rather than an error; callers must treat every field
// as possibly defaulted.
func Claim(raw model.RawClaim) model.CanonicalClaim {
	c := model.CanonicalClaim{
		PatientName:           SentinelUnknown,
		ProviderName:          SentinelUnknown,
		Diagnosis:             SentinelNotSpecified,
		ServiceDate:           SentinelNotSpecified,
		TotalAmount:           "0.00",
		InsuranceCovered:      "0.00",
		PatientResponsibility: "0.00",
		Status:                string(model.StatusPending),
	}
	if raw == nil {
		return c
	}

	c.ID = stringify(firstPresent(raw, []string{"id"}))
	c.PatientName = cleanText(firstPresent(raw, patientNameField.keys), patientNameField.sentinel)
	c.ProviderName = cleanText(firstPresent(raw, providerNameField.keys), providerNameField.sentinel)
	c.Diagnosis = cleanText(firstPresent(raw, diagnosisField.keys), diagnosisField.sentinel)
	c.ServiceDate = cleanText(firstPresent(raw, serviceDateField.keys), serviceDateField.sentinel)
	c.CreatedAt = strings.TrimSpace(stringify(firstPresent(raw, createdAtField.keys)))

	c.TotalAmount = cleanAmount(firstPresent(raw, totalAmountKeys))
	c.InsuranceCovered = cleanAmount(firstPresent(raw, insuranceCoveredKeys))
	c.PatientResponsibility = cleanAmount(firstPresent(raw, patientResponsibilityKeys))

	// Status passes through verbatim; rendering treats unrecognized
	// values as unknown/unstyled
	if status := strings.TrimSpace(stringify(raw["status"])); status != "" {
		c.Status = status
	}

	c.Medications = medications(raw["medications"])

	return c
}

// firstPresent returns the first present, non-nil value among keys
func firstPresent(raw model.RawClaim, keys []string) any {
	for _, key := range keys {
		if val, ok := raw[key]; ok && val != nil {
			return val
		}
	}
	return nil
}

// cleanText coerces to string, strips extractor boilerplate, collapses
// whitespace runs and trims; empty results become the sentinel
func cleanText(val any, sentinel string) string {
	text := stringify(val)
	text = boilerplatePattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return sentinel
	}
	return text
}

// cleanAmount renders any value as a two-decimal string. Unparseable or
// absent amounts become "0.00". This is a display contract, not ledger
// arithmetic.
func cleanAmount(val any) string {
	var num float64
	switch v := val.(type) {
	case float64:
		num = v
	case float32:
		num = float64(v)
	case int:
		num = float64(v)
	case int64:
		num = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			num = parsed
		}
	}
	// ParseFloat accepts "NaN" and "Inf"; neither renders as a decimal
	if math.IsNaN(num) || math.IsInf(num, 0) {
		num = 0
	}
	return strconv.FormatFloat(num, 'f', 2, 64)
}

// medications passes through array-shaped values unchanged, in order;
// anything else is treated as absent
func medications(val any) []model.Medication {
	switch items := val.(type) {
	case []model.Medication:
		return items
	case []any:
		meds := make([]model.Medication, 0, len(items))
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			meds = append(meds, model.Medication{
				Name:      stringify(entry["name"]),
				Dosage:    stringify(entry["dosage"]),
				Frequency: stringify(entry["frequency"]),
			})
		}
		if len(meds) == 0 {
			return nil
		}
		return meds
	}
	return nil
}

// stringify coerces scalar JSON values to their display string
func stringify(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}
