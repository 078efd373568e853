package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/edusync/edusync-client/internal/client/models"
	"github.com/edusync/edusync-client/internal/common"
)

const (
	MaxAvatarBytes   int64 = 5 << 20
	MaxResourceBytes int64 = 500 << 20
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the struct's validate tags and reports the first
// failure as a *common.ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return common.NewValidationError("", err.Error())
	}

	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return common.NewValidationError(field, "is required")
	case "email":
		return common.NewValidationError(field, "must be a valid email address")
	case "min":
		return common.NewValidationError(field, fmt.Sprintf("must be at least %s characters", fe.Param()))
	case "oneof":
		return common.NewValidationError(field, fmt.Sprintf("must be one of: %s", fe.Param()))
	default:
		return common.NewValidationError(field, fmt.Sprintf("failed %q check", fe.Tag()))
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func fileSize(f models.File) int64 {
	if n := int64(len(f.Data)); n > f.Size {
		return n
	}
	return f.Size
}

// ValidateImage checks that f is an image no larger than limit, both by its
// declared type and by its content. It returns the detected MIME type.
func ValidateImage(f models.File, limit int64) (string, error) {
	if !strings.HasPrefix(f.ContentType, "image/") {
		return "", common.NewValidationError("file", "please select an image file")
	}
	if fileSize(f) > limit {
		return "", common.NewValidationError("file", fmt.Sprintf("file size must be less than %s", FormatFileSize(limit)))
	}
	if len(f.Data) == 0 {
		return f.ContentType, nil
	}

	detected := mimetype.Detect(f.Data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", common.NewValidationError("file", "file content is not an image")
	}
	return detected.String(), nil
}

// ValidateResourceFile checks a file about to be uploaded as a resource.
func ValidateResourceFile(f models.File) error {
	if strings.TrimSpace(f.Name) == "" {
		return common.NewValidationError("file", "is required")
	}
	size := fileSize(f)
	if size == 0 {
		return common.NewValidationError("file", "is empty")
	}
	if size > MaxResourceBytes {
		return common.NewValidationError("file", fmt.Sprintf("file size must be less than %s", FormatFileSize(MaxResourceBytes)))
	}
	return nil
}

// DetectFileType returns the short type name used for listings ("pdf",
// "docx", ...), from the extension when present, else from the content.
func DetectFileType(f models.File) string {
	if i := strings.LastIndexByte(f.Name, '.'); i >= 0 && i < len(f.Name)-1 {
		return strings.ToLower(f.Name[i+1:])
	}
	if len(f.Data) > 0 {
		return strings.TrimPrefix(mimetype.Detect(f.Data).Extension(), ".")
	}
	return ""
}
