// Package validation checks user-supplied slugs, verse numbers and data
// paths before they reach the catalog.
package validation

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/srikosa/srikosa/core/errors"
)

// Limits on user input.
const (
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
	// MaxSlugLength is the maximum allowed slug length.
	MaxSlugLength = 128
)

// Common validation errors. All of them match errors.ErrInvalidInput.
var (
	ErrInvalidSlug        = fmt.Errorf("invalid slug: %w", errors.ErrInvalidInput)
	ErrInvalidVerseNumber = fmt.Errorf("invalid verse number: %w", errors.ErrInvalidInput)
	ErrPathTooLong        = fmt.Errorf("path too long: %w", errors.ErrInvalidInput)
	ErrInvalidCharacter   = fmt.Errorf("invalid character in path: %w", errors.ErrInvalidInput)
	ErrEmptyPath          = fmt.Errorf("path cannot be empty: %w", errors.ErrInvalidInput)
	ErrNotDirectory       = fmt.Errorf("not a directory: %w", errors.ErrInvalidInput)
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateSlug checks that slug can name a category or scripture. Slugs are
// single URL path segments of letters, digits, hyphens and underscores.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSlug)
	}
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidSlug, MaxSlugLength)
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return nil
}

// ParseVerseNumber parses a positive verse number from a URL segment.
func ParseVerseNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVerseNumber, s)
	}
	return n, nil
}

// ValidatePath performs path validation without requiring a base directory.
// It checks length limits and invalid characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}

	return nil
}

// ValidateDataDir checks that dir is a usable path to an existing directory.
func ValidateDataDir(dir string) error {
	if err := ValidatePath(dir); err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return errors.NewIO("stat", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	return nil
}
