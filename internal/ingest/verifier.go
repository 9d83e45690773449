package ingest

import (
	"crypto/subtle"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/mikakort/IAPserver/pkg/errors"
)

// Verifier authenticates an inbound payload before any state change: the
// shared secret must match and the required fields must be present. It has no
// side effects.
type Verifier struct {
	secret   string
	validate *validator.Validate
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shared secret required")
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})

	return &Verifier{secret: secret, validate: v}, nil
}

// Verify returns nil on ACCEPT. On REJECT the returned error carries the
// internal reason (UNAUTHORIZED for a secret mismatch, VALIDATION_ERROR for a
// malformed payload); callers are expected to collapse both into a generic
// client-visible rejection.
func (v *Verifier) Verify(req *StatusUpdateRequest) error {
	if req == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payload required")
	}

	if err := v.validate.Struct(req); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed notification payload")
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(v.secret)) != 1 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "shared secret mismatch")
	}

	return nil
}
