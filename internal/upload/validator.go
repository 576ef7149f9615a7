package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xpanvictor/diarize/pkg/Logger"
)

// ErrFileTooLarge is returned when an upload exceeds the configured ceiling.
var ErrFileTooLarge = errors.New("file exceeds maximum upload size")

// Validator enforces the upload constraints before anything touches the
// network. Size is a hard rule; the extension list is advisory, the
// file picker already filters on it client-side.
type Validator struct {
	maxBytes   int64
	extensions []string
	logger     *Logger.Logger
}

func NewValidator(maxBytes int64, extensions []string, logger *Logger.Logger) *Validator {
	return &Validator{
		maxBytes:   maxBytes,
		extensions: extensions,
		logger:     logger,
	}
}

// Validate checks file metadata only, it never reads content.
func (v *Validator) Validate(name string, size int64) error {
	if size > v.maxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, size, v.maxBytes)
	}

	if len(v.extensions) > 0 && !v.knownExtension(name) {
		v.logger.Warnf("unexpected extension on upload %q, accepting anyway", name)
	}

	return nil
}

func (v *Validator) knownExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range v.extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
