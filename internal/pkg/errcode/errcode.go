package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrInvalid
	ErrTooMany
	ErrInternal
	ErrVectorQueryFailed
	ErrNoRelevantData
	ErrGenerationExhausted
)
