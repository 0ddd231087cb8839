// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/hay-kot/criterio"
)

// ItemName validates an item name is non-empty after trimming whitespace.
func ItemName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Email validates a bare email address such as user@example.com.
func Email(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%q is not an email address", email)
	}
	return nil
}

// Password validates a password is present.
func Password(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// Credentials validates an email and password pair, reporting each failing
// field.
func Credentials(email, password string) error {
	return criterio.ValidateStruct(
		criterio.Run("email", email, Email),
		criterio.Run("password", password, Password),
	)
}
