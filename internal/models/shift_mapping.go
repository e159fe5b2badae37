package models

import "time"

// ShiftGroupMapping maps each shift code to the group label used on assignment intervals.
type ShiftGroupMapping struct {
	UnitID     string    `db:"unit_id" json:"unit_id"`
	EarlyLabel string    `db:"early_label" json:"early_label"`
	LateLabel  string    `db:"late_label" json:"late_label"`
	NightLabel string    `db:"night_label" json:"night_label"`
	UpdatedBy  *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Label returns the group label for a shift code.
func (m ShiftGroupMapping) Label(code ShiftCode) (string, bool) {
	var label string
	switch code {
	case ShiftEarly:
		label = m.EarlyLabel
	case ShiftLate:
		label = m.LateLabel
	case ShiftNight:
		label = m.NightLabel
	}
	return label, label != ""
}

// ShiftFor maps a group label back to its shift code.
func (m ShiftGroupMapping) ShiftFor(label string) (ShiftCode, bool) {
	if label == "" {
		return "", false
	}
	for _, code := range ShiftCodes {
		if l, ok := m.Label(code); ok && l == label {
			return code, true
		}
	}
	return "", false
}

// Complete reports whether every shift has a distinct, non-empty label.
func (m ShiftGroupMapping) Complete() bool {
	seen := make(map[string]struct{}, len(ShiftCodes))
	for _, code := range ShiftCodes {
		label, ok := m.Label(code)
		if !ok {
			return false
		}
		if _, dup := seen[label]; dup {
			return false
		}
		seen[label] = struct{}{}
	}
	return true
}
