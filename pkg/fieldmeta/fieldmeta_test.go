package fieldmeta

import (
	"strings"
	"testing"
)

func TestEveryKindHasDispatchEntry(t *testing.T) {
	for _, k := range Kinds() {
		if !Known(k) {
			t.Fatalf("kind %s missing from dispatch table", k)
		}
		if _, err := Default(k); err != nil {
			t.Fatalf("Default(%s): %v", k, err)
		}
	}
}

func TestUnknownKindRejected(t *testing.T) {
	if Known("barcode") {
		t.Fatal("barcode must not be a known kind")
	}
	errs := Validate(Settings{Kind: "barcode"})
	if len(errs) != 1 || !strings.Contains(errs[0], "unknown field kind") {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestTextRequiresName(t *testing.T) {
	if errs := Validate(Settings{Kind: KindText}); len(errs) == 0 {
		t.Fatal("expected name error")
	}
	if errs := Validate(Settings{Kind: KindText, Name: "Company"}); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestNumberDefaultMustBeNumeric(t *testing.T) {
	s := Settings{Kind: KindNumber, Name: "Amount", DefaultValue: "12x"}
	if errs := Validate(s); len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	s.DefaultValue = "-12.50"
	if errs := Validate(s); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestRadioNeedsTwoDistinctOptions(t *testing.T) {
	s := Settings{Kind: KindRadio, Options: []string{"yes"}}
	if errs := Validate(s); len(errs) == 0 {
		t.Fatal("expected option-count error")
	}
	s.Options = []string{"yes", "yes"}
	found := false
	for _, e := range Validate(s) {
		if strings.Contains(e, "duplicate") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected duplicate-option error")
	}
	s.Options = []string{"yes", "no"}
	if errs := Validate(s); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestCheckboxSelectionBounds(t *testing.T) {
	s := Settings{Kind: KindCheckbox, Options: []string{"a", "b"}, MinCount: 2, MaxCount: 1}
	errs := Validate(s)
	if len(errs) == 0 {
		t.Fatal("expected min>max error")
	}
	s.MinCount, s.MaxCount = 1, 3
	found := false
	for _, e := range Validate(s) {
		if strings.Contains(e, "exceed option count") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected max>options error")
	}
}

func TestDropdownDefaultMustBeOption(t *testing.T) {
	s := Settings{Kind: KindDropdown, Options: []string{"NDA", "MSA"}, DefaultValue: "SOW"}
	errs := Validate(s)
	if len(errs) != 1 || !strings.Contains(errs[0], "one of the options") {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestDateFormatValidated(t *testing.T) {
	d, _ := Default(KindDate)
	if d.DateFormat != "MM/DD/YYYY" {
		t.Fatalf("unexpected default format %q", d.DateFormat)
	}
	if errs := Validate(Settings{Kind: KindDate, DateFormat: "YYYY/DD"}); len(errs) == 0 {
		t.Fatal("expected unsupported-format error")
	}
}

func TestValidationCollectsAllErrors(t *testing.T) {
	s := Settings{Kind: KindCheckbox, Options: []string{"a", ""}, MinCount: -1}
	if errs := Validate(s); len(errs) < 2 {
		t.Fatalf("expected multiple collected errors, got %v", errs)
	}
}

func TestDraftKeyLayout(t *testing.T) {
	if got := DraftKey("frm_42", KindInitials); got != "field_frm_42_initials" {
		t.Fatalf("unexpected draft key %q", got)
	}
}
