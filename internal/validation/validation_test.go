package validation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	srkerrors "github.com/srikosa/srikosa/core/errors"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		wantErr bool
	}{
		{"simple", "bhagavad-gita", false},
		{"underscore", "divya_prabandham", false},
		{"digits", "rig-veda-10", false},
		{"uppercase", "Tiruppavai", false},
		{"empty", "", true},
		{"leading hyphen", "-gita", true},
		{"traversal", "..", true},
		{"slash", "gita/verse", true},
		{"space", "bhagavad gita", true},
		{"dot", "gita.json", true},
		{"non-ascii", "गीता", true},
		{"too long", strings.Repeat("a", MaxSlugLength+1), true},
		{"max length", strings.Repeat("a", MaxSlugLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSlug(%q) error = %v, wantErr %v", tt.slug, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidSlug) {
					t.Errorf("error should wrap ErrInvalidSlug, got %v", err)
				}
				if !errors.Is(err, srkerrors.ErrInvalidInput) {
					t.Errorf("error should wrap ErrInvalidInput, got %v", err)
				}
			}
		})
	}
}

func TestParseVerseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"47", 47, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"1.5", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseVerseNumber(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVerseNumber(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVerseNumber(%q) = %d, want %d", tt.in, got, tt.want)
		}
		if err != nil && !errors.Is(err, ErrInvalidVerseNumber) {
			t.Errorf("error should wrap ErrInvalidVerseNumber, got %v", err)
		}
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"valid", "data/scriptures", nil},
		{"absolute", "/srv/srikosa/data", nil},
		{"empty", "", ErrEmptyPath},
		{"null byte", "data\x00", ErrInvalidCharacter},
		{"control", "data\x01", ErrInvalidCharacter},
		{"too long", strings.Repeat("a", MaxPathLength+1), ErrPathTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePath() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePath() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDataDir(t *testing.T) {
	dir := t.TempDir()
	if err := ValidateDataDir(dir); err != nil {
		t.Errorf("ValidateDataDir(tempdir) = %v", err)
	}

	file := filepath.Join(dir, "categories.json")
	if err := os.WriteFile(file, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateDataDir(file); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("ValidateDataDir(file) = %v, want ErrNotDirectory", err)
	}

	if err := ValidateDataDir(filepath.Join(dir, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ValidateDataDir(missing) = %v, want ErrNotExist", err)
	}
}
