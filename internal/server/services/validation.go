package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// invalid turns an ozzo-validation result into a common.ValidationError
// naming the offending fields. A nil err stays nil.
func invalid(message string, err error) error {
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	fields := make([]string, 0, len(verrs))
	for name := range verrs {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	return &common.ValidationError{Message: message, Fields: fields}
}

// missingUpdate is returned when an update names none of its optional fields.
func missingUpdate(fields ...string) error {
	return &common.ValidationError{Message: "Missing fields to update", Fields: fields}
}

func oneOf(values []string) validation.Rule {
	in := make([]any, len(values))
	for i, v := range values {
		in[i] = v
	}
	return validation.In(in...)
}

var (
	phoneRule = validation.Length(common.PhoneLength, common.PhoneLength)
	idRule    = validation.Length(common.IDLength, common.IDLength)

	// keyRule rejects values the store cannot use as a record key.
	keyRule = validation.By(func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, ".") || strings.ContainsAny(s, "/\\\x00") {
			return errors.New("must not start with a dot or contain path separators")
		}
		return nil
	})
)

// wrapStore tags a repository failure as common.ErrorStorage unless it
// already carries a meaning callers act on. A malformed key cannot name an
// existing record and reads as common.ErrorNotFound.
func wrapStore(op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorInvalidKey):
		return fmt.Errorf("%s: %w: %w", op, common.ErrorNotFound, err)
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorAlreadyExists),
		errors.Is(err, common.ErrorStorage):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, common.ErrorStorage, err)
	}
}
