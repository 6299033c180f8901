package domain

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
)

const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCreatedAt   = "created_at"
	FieldAuthor      = "author"
)

// AdProperties is the exposed projection of an Ad, in rendering order.
var AdProperties = []string{FieldID, FieldTitle, FieldDescription, FieldCreatedAt, FieldAuthor}

var adRequiredFields = []string{FieldTitle, FieldDescription, FieldCreatedAt, FieldAuthor}

// CreatedAt is kept as the client sent it; it is not parsed as a time.
type Ad struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	Author      string `json:"author"`
}

type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrInvalid
}

type FieldTypeError struct {
	Field string
	Err   error
}

// Error omits the decoder's message; Err keeps it for logs.
func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %q must be a string", e.Field)
}

func (e *FieldTypeError) Unwrap() error {
	return ErrInvalid
}

// NewAdFromFields builds an unsaved Ad from a decoded request body. Every
// mandatory field must be present; unknown keys are ignored.
func NewAdFromFields(fields map[string]jsoniter.RawMessage) (*Ad, error) {
	var missing []string
	for _, name := range adRequiredFields {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	ad := &Ad{}
	for _, name := range adRequiredFields {
		if _, err := ad.SetField(name, fields[name]); err != nil {
			return nil, err
		}
	}
	return ad, nil
}

func (a *Ad) Field(name string) (any, bool) {
	switch name {
	case FieldID:
		return a.ID, true
	case FieldTitle:
		return a.Title, true
	case FieldDescription:
		return a.Description, true
	case FieldCreatedAt:
		return a.CreatedAt, true
	case FieldAuthor:
		return a.Author, true
	}
	return nil, false
}

// SetField decodes raw into the named field. It reports false for unknown
// fields and for the id, which is assigned by the store.
func (a *Ad) SetField(name string, raw jsoniter.RawMessage) (bool, error) {
	var target *string
	switch name {
	case FieldTitle:
		target = &a.Title
	case FieldDescription:
		target = &a.Description
	case FieldCreatedAt:
		target = &a.CreatedAt
	case FieldAuthor:
		target = &a.Author
	default:
		return false, nil
	}

	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, &FieldTypeError{Field: name}
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return false, &FieldTypeError{Field: name, Err: err}
	}
	*target = value
	return true, nil
}
