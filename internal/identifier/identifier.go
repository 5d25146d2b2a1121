// Package identifier guards every structural name (table, column, alias,
// GROUP BY / ORDER BY field) before it is concatenated into SQL text.
//
// Values are protected by parameterization; identifiers cannot be bound as
// parameters, so they must pass this check instead.
package identifier

import (
	"fmt"
	"regexp"

	"github.com/carlosnayan/onela-go/internal/errors"
)

// pattern accepts plain identifiers with optional dot qualification
// ("t.id") and star projections ("t.*", "*").
var pattern = regexp.MustCompile(`^[A-Za-z_*][A-Za-z0-9_.*]*$`)

// Validate returns name unchanged if it is a plain SQL identifier.
func Validate(name string) (string, error) {
	if !pattern.MatchString(name) {
		return "", errors.WrapOnelaError(errors.ErrInvalidIdentifier, fmt.Errorf("%q", name))
	}
	return name, nil
}

// ValidateAll validates every name, failing on the first bad one.
func ValidateAll(names []string) error {
	for _, name := range names {
		if _, err := Validate(name); err != nil {
			return err
		}
	}
	return nil
}

// IsValid reports whether name would pass Validate.
func IsValid(name string) bool {
	return pattern.MatchString(name)
}
