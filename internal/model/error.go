package model

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes returned in ErrorResponse.Code
const (
	CodeValidation  = "VALIDATION"
	CodeNotFound    = "NOT_FOUND"
	CodeConflict    = "DUPLICATE_CREATE"
	CodeCustody     = "CUSTODY_PROVIDER"
	CodePersistence = "PERSISTENCE"
	CodeInternal    = "INTERNAL"
	CodeTimeout     = "TIMEOUT"
	CodeCanceled    = "CANCELED"
)
