package domain

import (
	"fmt"
	"strings"
)

type ValidationKind string

const (
	KindEmptyList               ValidationKind = "EmptyList"
	KindUnknownIngredient       ValidationKind = "UnknownIngredient"
	KindDuplicateIngredient     ValidationKind = "DuplicateIngredient"
	KindInvalidAmount           ValidationKind = "InvalidAmount"
	KindInvalidCookingTime      ValidationKind = "InvalidCookingTime"
	KindUnknownTag              ValidationKind = "UnknownTag"
	KindDuplicateTag            ValidationKind = "DuplicateTag"
	KindLinkGenerationExhausted ValidationKind = "LinkGenerationExhausted"
)

const (
	FieldIngredients = "ingredients"
	FieldTags        = "tags"
	FieldCookingTime = "cooking_time"
	FieldShortLink   = "short_link"
)

// ValidationError is one violated rule on one submitted field. ID is set
// for rules that point at a single list element.
type ValidationError struct {
	Field   string         `json:"field"`
	Kind    ValidationKind `json:"kind"`
	ID      *uint          `json:"id,omitempty"`
	Message string         `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field string, kind ValidationKind, message string) ValidationError {
	return ValidationError{Field: field, Kind: kind, Message: message}
}

func NewElementValidationError(field string, kind ValidationKind, id uint, message string) ValidationError {
	return ValidationError{Field: field, Kind: kind, ID: &id, Message: fmt.Sprintf(message, id)}
}

// ValidationErrors collects every violation found in one submission.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Fields groups messages by field, preserving report order.
func (v ValidationErrors) Fields() map[string][]string {
	out := make(map[string][]string)
	for _, e := range v {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

func (v ValidationErrors) Find(kind ValidationKind) (ValidationError, bool) {
	for _, e := range v {
		if e.Kind == kind {
			return e, true
		}
	}
	return ValidationError{}, false
}

// ErrOrNil returns nil for an empty collection so callers can return it as error.
func (v ValidationErrors) ErrOrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
