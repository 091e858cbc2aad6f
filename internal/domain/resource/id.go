package resource

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
	"unicode/utf8"

	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

// MaxCodeLen is the hard ceiling for short identifiers, generated or
// caller-supplied.
const MaxCodeLen = 20

const codeSuffixBytes = 2

// GenerateCode synthesizes a short identifier from the schema's type prefix,
// the current date, and a random suffix, e.g. "TRD20260828-3f2a".
func GenerateCode(prefix string, now time.Time) (string, error) {
	suffix := make([]byte, codeSuffixBytes)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate code suffix: %w", err)
	}
	code := fmt.Sprintf("%s%s-%s", prefix, now.UTC().Format("20060102"), hex.EncodeToString(suffix))
	if err := CheckCodeLength(code); err != nil {
		return "", err
	}
	return code, nil
}

// CheckCodeLength rejects identifiers above MaxCodeLen. Applied to both
// caller-supplied and generated values.
func CheckCodeLength(code string) error {
	if utf8.RuneCountInString(code) > MaxCodeLen {
		return apperrors.Validationf("Identifier cannot exceed %d characters.", MaxCodeLen)
	}
	return nil
}
