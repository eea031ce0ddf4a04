package ranker

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CreateDomainRequest is the body of POST /domains/custom
type CreateDomainRequest struct {
	Name    string   `json:"name" validate:"required"`
	Tickers []string `json:"tickers" validate:"min=1,dive,required"`
}

// UpdateDomainRequest is the body of PUT /domains/custom/{id}
type UpdateDomainRequest struct {
	Tickers []string `json:"tickers" validate:"min=1,dive,required"`
}

// ParseTickers splits raw input on commas and newlines, trims and
// upper-cases each entry, drops empties and keeps the first occurrence of
// duplicates. "aapl, msft , googl" yields [AAPL MSFT GOOGL].
func ParseTickers(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	seen := make(map[string]struct{}, len(fields))
	tickers := make([]string, 0, len(fields))
	for _, f := range fields {
		t := strings.ToUpper(strings.TrimSpace(f))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
	}
	return tickers
}

// Validate checks a create request; the name is trimmed first
func (r *CreateDomainRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return validationError(validate.Struct(r))
}

// Validate checks an update request
func (r *UpdateDomainRequest) Validate() error {
	return validationError(validate.Struct(r))
}

// validationError maps the first failed field to its user message
func validationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	switch fieldErrs[0].StructField() {
	case "Name":
		return &ValidationError{Message: MsgNameRequired}
	default:
		return &ValidationError{Message: MsgTickersRequired}
	}
}
