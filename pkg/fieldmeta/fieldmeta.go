// Package fieldmeta defines the closed set of placeable field kinds
// and the settings each kind carries. Every kind is dispatched through
// one table; adding a kind means adding one table entry.
package fieldmeta

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindText      Kind = "text"
	KindNumber    Kind = "number"
	KindRadio     Kind = "radio"
	KindCheckbox  Kind = "checkbox"
	KindDropdown  Kind = "dropdown"
	KindDate      Kind = "date"
	KindName      Kind = "name"
	KindEmail     Kind = "email"
	KindInitials  Kind = "initials"
	KindSignature Kind = "signature"
	KindStamp     Kind = "stamp"
)

// Settings is the editable metadata behind one placed field. Which
// parts are meaningful depends on the kind; Validate enforces that.
type Settings struct {
	Kind         Kind     `json:"type"`
	Name         string   `json:"name,omitempty"`
	Required     bool     `json:"isRequired"`
	Placeholder  string   `json:"placeholder,omitempty"`
	DefaultValue string   `json:"defaultValue,omitempty"`
	Options      []string `json:"options,omitempty"`
	MinCount     int      `json:"minCount,omitempty"`
	MaxCount     int      `json:"maxCount,omitempty"`
	DateFormat   string   `json:"dateFormat,omitempty"`
	ReadOnly     bool     `json:"isReadOnly,omitempty"`
}

// kindSpec is one dispatch-table entry: what a kind needs and how it
// validates.
type kindSpec struct {
	hasOptions    bool
	multiSelect   bool
	defaultFormat string
	validate      func(Settings) []string
}

var dateFormats = map[string]bool{
	"MM/DD/YYYY": true,
	"DD/MM/YYYY": true,
	"YYYY-MM-DD": true,
	"DD-MM-YYYY": true,
	"MM-DD-YYYY": true,
}

var kinds = map[Kind]kindSpec{
	KindText:   {validate: validateText},
	KindNumber: {validate: validateNumber},
	KindRadio: {hasOptions: true, validate: func(s Settings) []string {
		return validateOptions(s, 2)
	}},
	KindCheckbox: {hasOptions: true, multiSelect: true, validate: validateCheckbox},
	KindDropdown: {hasOptions: true, validate: func(s Settings) []string {
		return validateOptions(s, 1)
	}},
	KindDate:      {defaultFormat: "MM/DD/YYYY", validate: validateDate},
	KindName:      {validate: validateNone},
	KindEmail:     {validate: validateNone},
	KindInitials:  {validate: validateNone},
	KindSignature: {validate: validateNone},
	KindStamp:     {validate: validateNone},
}

// Known reports whether k is a member of the closed kind set.
func Known(k Kind) bool {
	_, ok := kinds[k]
	return ok
}

// Kinds lists all placeable kinds.
func Kinds() []Kind {
	return []Kind{
		KindText, KindNumber, KindRadio, KindCheckbox, KindDropdown,
		KindDate, KindName, KindEmail, KindInitials, KindSignature, KindStamp,
	}
}

// Default returns the settings a freshly placed field of kind k starts
// with.
func Default(k Kind) (Settings, error) {
	spec, ok := kinds[k]
	if !ok {
		return Settings{}, fmt.Errorf("unknown field kind %q", k)
	}
	s := Settings{Kind: k, Required: true}
	if spec.defaultFormat != "" {
		s.DateFormat = spec.defaultFormat
	}
	return s, nil
}

// Validate collects every problem with s into a list. An empty list
// means the settings may be saved. Callers surface the list and keep
// any already-applied state; validation never rolls anything back.
func Validate(s Settings) []string {
	spec, ok := kinds[s.Kind]
	if !ok {
		return []string{fmt.Sprintf("unknown field kind %q", s.Kind)}
	}
	return spec.validate(s)
}

// DraftKey is the local-state key a panel persists its in-progress
// settings under.
func DraftKey(formID string, k Kind) string {
	return fmt.Sprintf("field_%s_%s", formID, k)
}

func validateNone(Settings) []string { return nil }

func validateText(s Settings) []string {
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "field name is required")
	}
	return errs
}

func validateNumber(s Settings) []string {
	errs := validateText(s)
	if s.DefaultValue != "" && !isNumeric(s.DefaultValue) {
		errs = append(errs, "default value must be numeric")
	}
	return errs
}

func validateOptions(s Settings, minOptions int) []string {
	var errs []string
	if len(s.Options) < minOptions {
		errs = append(errs, fmt.Sprintf("at least %d option(s) required", minOptions))
	}
	seen := map[string]bool{}
	for _, o := range s.Options {
		if strings.TrimSpace(o) == "" {
			errs = append(errs, "options must not be empty")
			continue
		}
		if seen[o] {
			errs = append(errs, fmt.Sprintf("duplicate option %q", o))
		}
		seen[o] = true
	}
	if s.DefaultValue != "" && !seen[s.DefaultValue] {
		errs = append(errs, "default value must be one of the options")
	}
	return errs
}

func validateCheckbox(s Settings) []string {
	errs := validateOptions(s, 1)
	if s.MinCount < 0 || s.MaxCount < 0 {
		errs = append(errs, "selection counts must not be negative")
	}
	if s.MaxCount > 0 && s.MinCount > s.MaxCount {
		errs = append(errs, "minimum selections exceed maximum")
	}
	if s.MaxCount > len(s.Options) {
		errs = append(errs, "maximum selections exceed option count")
	}
	return errs
}

func validateDate(s Settings) []string {
	var errs []string
	if s.DateFormat != "" && !dateFormats[s.DateFormat] {
		errs = append(errs, fmt.Sprintf("unsupported date format %q", s.DateFormat))
	}
	return errs
}

func isNumeric(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	dot := false
	for i, c := range v {
		switch {
		case c >= '0' && c <= '9':
		case c == '-' && i == 0:
		case c == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}
