package constants

// ResultStatus is the status column written to the summary sheet for each document.
type ResultStatus string

// Stable values (the report consumers match on these exact strings).
const (
	StatusSuccess ResultStatus = "success"
	StatusError   ResultStatus = "error"
)

// EmptyTableMessage is recorded when text was decoded but no line item survived reconstruction.
const EmptyTableMessage = "item table not found or empty"

// DecodeFailurePrefix starts every error recorded for a document whose text could not be obtained.
const DecodeFailurePrefix = "decode failed"
