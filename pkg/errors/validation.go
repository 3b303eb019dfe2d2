package errors

import (
	"strings"
	"unicode"
)

// MaxTagLength bounds tag names accepted from extracted payloads.
const MaxTagLength = 128

// ValidateTagName checks a tag-group key from an inbound payload.
func ValidateTagName(tag string) error {
	if tag == "" {
		return New(ErrCodeMalformedInput, "tag name cannot be empty")
	}
	if len(tag) > MaxTagLength {
		return New(ErrCodeMalformedInput, "tag name too long (max %d characters)", MaxTagLength)
	}
	for _, r := range tag {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeMalformedInput, "tag name %q contains invalid characters", tag)
		}
	}
	return nil
}

// ValidateFilename ensures an export filename is a plain basename.
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "filename %q is not allowed", name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains control characters")
		}
	}
	return nil
}
