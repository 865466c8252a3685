package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("access denied")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrOracleUnavailable = errors.New("ai service unavailable")
	ErrPreviewNotFound   = errors.New("extraction preview not found or expired")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidStatus     = errors.New("invalid application status")
)

// notFound maps gorm's missing-record error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
