package identifier

import (
	"errors"
	"testing"

	onelaerrors "github.com/carlosnayan/onela-go/internal/errors"
)

func TestValidate(t *testing.T) {
	valid := []string{"id", "t.id", "t.*", "*", "_private", "user_name2", "schema.table.col"}
	for _, name := range valid {
		got, err := Validate(name)
		if err != nil {
			t.Errorf("Validate(%q) error: %v", name, err)
			continue
		}
		if got != name {
			t.Errorf("Validate(%q) = %q, want unchanged", name, got)
		}
	}

	invalid := []string{
		"",
		"id; DROP TABLE x",
		"1id",
		"name--",
		"a b",
		"`id`",
		"id)",
		"t.id'",
	}
	for _, name := range invalid {
		_, err := Validate(name)
		if err == nil {
			t.Errorf("Validate(%q) succeeded, want error", name)
			continue
		}
		if !errors.Is(err, onelaerrors.ErrInvalidIdentifier) {
			t.Errorf("Validate(%q) error = %v, want ErrInvalidIdentifier", name, err)
		}
	}
}

func TestValidateAll(t *testing.T) {
	if err := ValidateAll([]string{"a", "b.c"}); err != nil {
		t.Errorf("ValidateAll error: %v", err)
	}
	if err := ValidateAll([]string{"a", "b c", "d"}); !errors.Is(err, onelaerrors.ErrInvalidIdentifier) {
		t.Errorf("ValidateAll error = %v, want ErrInvalidIdentifier", err)
	}
	if IsValid("x;") {
		t.Error("IsValid(\"x;\") = true")
	}
}
