package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// ExportVersion is the format tag written into export documents.
const ExportVersion = "1.0"

// ExportData is the portable document the app writes to export files and
// accepts back on import: every subscription with its history, plus the
// user-added categories.
type ExportData struct {
	Version       string         `json:"version"`
	ExportedAt    time.Time      `json:"exportedAt"`
	Subscriptions []Subscription `json:"subscriptions"`
	Categories    []Category     `json:"categories"`
}

// BuildExportData assembles an export document.
func BuildExportData(subs []Subscription, customCategories []Category, now time.Time) ExportData {
	if subs == nil {
		subs = []Subscription{}
	}
	if customCategories == nil {
		customCategories = []Category{}
	}
	return ExportData{
		Version:       ExportVersion,
		ExportedAt:    now.UTC(),
		Subscriptions: subs,
		Categories:    customCategories,
	}
}

// ParseImportData validates and decodes an export document. Validation fails
// fast on the first structural violation, naming the offending index and
// field; there is no partial import.
func ParseImportData(data []byte) (ExportData, error) {
	var raw struct {
		Version       json.RawMessage   `json:"version"`
		Subscriptions []json.RawMessage `json:"subscriptions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return ExportData{}, fmt.Errorf("not a valid JSON document: %w", err)
	}

	if !isJSONString(raw.Version) {
		return ExportData{}, fmt.Errorf("missing or invalid version field")
	}
	if raw.Subscriptions == nil {
		return ExportData{}, fmt.Errorf("missing subscriptions array")
	}

	for i, subRaw := range raw.Subscriptions {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(subRaw, &fields); err != nil {
			return ExportData{}, fmt.Errorf("subscriptions[%d]: not an object", i)
		}
		if err := validateImportedSubscription(fields); err != nil {
			return ExportData{}, fmt.Errorf("subscriptions[%d]: %w", i, err)
		}
	}

	var doc ExportData
	if err := json.Unmarshal(data, &doc); err != nil {
		return ExportData{}, fmt.Errorf("decode import document: %w", err)
	}
	return doc, nil
}

// isJSONString reports whether raw holds a JSON string value. JSON null
// decodes into a Go string without error, so the token itself is inspected.
func isJSONString(raw json.RawMessage) bool {
	var s string
	return len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &s) == nil
}

func validateImportedSubscription(fields map[string]json.RawMessage) error {
	for _, name := range []string{"id", "name", "startDate"} {
		if !isJSONString(fields[name]) {
			return fmt.Errorf("missing or invalid %s", name)
		}
	}

	var amount float64
	if raw := fields["amount"]; len(raw) == 0 || raw[0] == '"' || raw[0] == 'n' || json.Unmarshal(raw, &amount) != nil {
		return fmt.Errorf("amount is not a number")
	}

	var currency Currency
	if fields["currency"] == nil || json.Unmarshal(fields["currency"], &currency) != nil || !currency.Valid() {
		return fmt.Errorf("invalid currency")
	}

	var history []json.RawMessage
	if fields["billingHistory"] == nil || json.Unmarshal(fields["billingHistory"], &history) != nil {
		return fmt.Errorf("missing billingHistory array")
	}
	if string(fields["billingHistory"]) == "null" {
		// null round-trips through a slice without error but is not an array
		return fmt.Errorf("missing billingHistory array")
	}
	return nil
}
