package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/teacher-eval-api/internal/repository"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
)

// Entity id prefixes.
const (
	prefixUser        = "usr_"
	prefixInstitution = "inst_"
	prefixSubject     = "sub_"
	prefixResponse    = "resp_"
	prefixSession     = "sess_"
)

func newID(prefix string) string {
	return prefix + uuid.NewString()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// storeError converts repository failures into API errors.
func storeError(err error, notFound, failure string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	case errors.Is(err, repository.ErrTableMissing):
		return appErrors.WrapAs(err, appErrors.ErrStorageUnavailable, "storage table missing")
	default:
		return appErrors.WrapAs(err, appErrors.ErrInternal, failure)
	}
}

func validationError(err error, message string) error {
	return appErrors.WrapAs(err, appErrors.ErrValidation, message)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
