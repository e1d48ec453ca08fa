package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/zycare/auth-api/internal/domain"
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

// IdentifierKind is the delivery channel implied by a contact identifier.
type IdentifierKind int

const (
	KindEmail IdentifierKind = iota
	KindPhone
)

var phoneRe = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// Identifier normalizes and classifies a contact identifier. Emails are
// lowercased; phones must already be E.164. Malformed input is rejected
// before any side effect.
func Identifier(raw string) (string, IdentifierKind, error) {
	s := strings.TrimSpace(raw)
	if phoneRe.MatchString(s) {
		return s, KindPhone, nil
	}
	s = strings.ToLower(s)
	if err := v.Var(s, "required,email"); err != nil {
		return "", 0, fmt.Errorf("malformed identifier %q: %w", raw, domain.ErrBadRequest)
	}
	return s, KindEmail, nil
}
