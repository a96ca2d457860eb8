package errors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrMissingCredentials  = errors.New("missing credentials")
	ErrVectorQueryFailed   = errors.New("vector query failed")
	ErrNoRelevantData      = errors.New("no relevant data")
	ErrGenerationFailed    = errors.New("ai generation failed")
	ErrGenerationExhausted = errors.New("ai generation exhausted")
)

func IsNoRelevantData(err error) bool {
	return errors.Is(err, ErrNoRelevantData)
}
