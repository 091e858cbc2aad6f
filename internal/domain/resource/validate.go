package resource

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

const (
	defaultTextMaxLen = 255
	refIDMaxLen       = 64
	dateLayout        = "2006-01-02"
)

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	codeRe  = regexp.MustCompile(`^[A-Z0-9][A-Z0-9._-]*$`)
)

// ValidateCreate trims and validates a create payload against the schema and
// returns the typed column values to insert. Missing required fields and
// malformed values yield field-specific ValidationErrors; absent optional
// fields receive their declared default or stay unset (SQL NULL).
//
// Unknown payload keys are ignored, mirroring the list parameters.
func (s *Schema) ValidateCreate(input map[string]string) (map[string]any, error) {
	values := make(map[string]any, len(s.Fields))

	for i := range s.Fields {
		f := &s.Fields[i]
		raw := strings.TrimSpace(input[f.Name])

		if raw == "" {
			if f.Required {
				return nil, apperrors.ValidationField(f.Name, fieldLabel(f.Name)+" is required.")
			}
			if f.Default != nil {
				values[f.Name] = f.Default
			}
			continue
		}

		v, err := parseFieldValue(f, raw)
		if err != nil {
			return nil, err
		}
		values[f.Name] = v
	}

	return values, nil
}

// ValidateUpdate validates a partial update payload: only the keys present in
// input are checked and returned. Setting a required field to empty is
// rejected; clearing an optional field stores NULL.
func (s *Schema) ValidateUpdate(input map[string]string) (map[string]any, error) {
	values := make(map[string]any, len(input))
	touched := false

	for i := range s.Fields {
		f := &s.Fields[i]
		raw, present := input[f.Name]
		if !present {
			continue
		}
		touched = true
		raw = strings.TrimSpace(raw)

		if raw == "" {
			if f.Required {
				return nil, apperrors.ValidationField(f.Name, fieldLabel(f.Name)+" cannot be empty.")
			}
			values[f.Name] = nil
			continue
		}

		v, err := parseFieldValue(f, raw)
		if err != nil {
			return nil, err
		}
		values[f.Name] = v
	}

	if !touched {
		return nil, apperrors.Validation("At least one field must be updated.")
	}
	return values, nil
}

// parseFieldValue converts a trimmed, non-empty raw value into its typed form.
func parseFieldValue(f *Field, raw string) (any, error) {
	var (
		value any
		err   error
	)

	switch f.Type {
	case Text:
		value, err = parseText(f, raw)
	case Code:
		value, err = parseCode(f, raw)
	case Email:
		value, err = parseEmail(f, raw)
	case Numeric, Currency, Percent:
		value, err = parseNumber(f, raw)
	case Date:
		value, err = parseDate(f, raw)
	case Enum:
		value, err = parseEnum(f, raw)
	case Bool:
		value, err = parseBool(f, raw)
	case Ref:
		value, err = parseRef(f, raw)
	default:
		value, err = parseText(f, raw)
	}
	if err != nil {
		return nil, err
	}

	if f.Check != nil {
		if checkErr := f.Check(raw); checkErr != nil {
			return nil, apperrors.ValidationField(f.Name, checkErr.Error())
		}
	}
	return value, nil
}

func parseText(f *Field, raw string) (any, error) {
	maxLen := f.MaxLen
	if maxLen == 0 {
		maxLen = defaultTextMaxLen
	}
	if utf8.RuneCountInString(raw) > maxLen {
		return nil, apperrors.ValidationField(f.Name,
			fieldLabel(f.Name)+" cannot exceed "+strconv.Itoa(maxLen)+" characters.")
	}
	return raw, nil
}

func parseCode(f *Field, raw string) (any, error) {
	code := strings.ToUpper(raw)
	if err := CheckCodeLength(code); err != nil {
		return nil, apperrors.ValidationField(f.Name,
			fieldLabel(f.Name)+" cannot exceed "+strconv.Itoa(MaxCodeLen)+" characters.")
	}
	if !codeRe.MatchString(code) {
		return nil, apperrors.ValidationField(f.Name,
			fieldLabel(f.Name)+" must contain only letters, digits, dots, underscores, or hyphens.")
	}
	return code, nil
}

func parseEmail(f *Field, raw string) (any, error) {
	if !emailRe.MatchString(raw) || utf8.RuneCountInString(raw) > defaultTextMaxLen {
		return nil, apperrors.ValidationField(f.Name, fieldLabel(f.Name)+" must be a valid email address.")
	}
	return strings.ToLower(raw), nil
}

func parseNumber(f *Field, raw string) (any, error) {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.ValidationField(f.Name, fieldLabel(f.Name)+" must be a number.")
	}
	if f.Min != nil && n < *f.Min {
		return nil, apperrors.ValidationField(f.Name,
			fieldLabel(f.Name)+" must be at least "+formatBound(*f.Min)+".")
	}
	if f.Max != nil && n > *f.Max {
		return nil, apperrors.ValidationField(f.Name,
			fieldLabel(f.Name)+" cannot exceed "+formatBound(*f.Max)+".")
	}
	return n, nil
}

func parseDate(f *Field, raw string) (any, error) {
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apperrors.ValidationField(f.Name, fieldLabel(f.Name)+" must be a date in YYYY-MM-DD form.")
	}
	return d, nil
}

func parseEnum(f *Field, raw string) (any, error) {
	v := strings.ToLower(raw)
	for _, allowed := range f.Enum {
		if v == allowed {
			return v, nil
		}
	}
	return nil, apperrors.ValidationField(f.Name,
		fieldLabel(f.Name)+" must be one of: "+strings.Join(f.Enum, ", ")+".")
}

func parseBool(f *Field, raw string) (any, error) {
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return nil, apperrors.ValidationField(f.Name, fieldLabel(f.Name)+" must be true or false.")
}

func parseRef(f *Field, raw string) (any, error) {
	if utf8.RuneCountInString(raw) > refIDMaxLen {
		return nil, apperrors.ValidationField(f.Name, fieldLabel(f.Name)+" is not a valid identifier.")
	}
	return raw, nil
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fieldLabel renders a column name for user-facing messages:
// "contact_email" becomes "Contact email".
func fieldLabel(name string) string {
	label := strings.ReplaceAll(name, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
