package errors

import (
	"strconv"
	"strings"
)

// ValidateDimensions validates the canvas width and frame height.
// Both must be strictly positive; the canvas must be wide enough to hold
// the horizontal padding on both sides.
func ValidateDimensions(width int, frameHeight int) error {
	if width <= 0 {
		return New(ErrCodeInvalidDimensions, "width must be positive, got %d", width)
	}
	if frameHeight <= 0 {
		return New(ErrCodeInvalidDimensions, "frame height must be positive, got %d", frameHeight)
	}
	return nil
}

// ValidateMinWidth validates a minimum frame width specification.
// Accepted forms are a non-negative pixel value ("0.1") or a percentage
// of total weight ("0.5%").
func ValidateMinWidth(s string) error {
	if s == "" {
		return New(ErrCodeInvalidMinWidth, "minwidth cannot be empty")
	}
	num := strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return New(ErrCodeInvalidMinWidth, "invalid minwidth %q: expected a number or percentage", s)
	}
	if v < 0 {
		return New(ErrCodeInvalidMinWidth, "minwidth cannot be negative: %q", s)
	}
	return nil
}

// ValidateOutputPath validates an output file path.
// It rejects empty paths and paths containing null bytes.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "output path contains invalid characters")
	}
	return nil
}
