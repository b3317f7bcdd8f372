package entity

import (
	"github.com/shopspring/decimal"

	"github.com/Appa019/Coleta-dados-faturas/constants"
)

// RawDocument is an undecoded input document and its display name.
type RawDocument struct {
	Name string
	Data []byte
}

// ExtractionResult is the outcome for one document. Error is empty on success.
type ExtractionResult struct {
	FileName       string     `json:"fileName"`
	InstallationID string     `json:"installationId"`
	BillingPeriod  string     `json:"billingPeriod"`
	LineItems      []LineItem `json:"lineItems"`
	Error          string     `json:"error"`
}

// Failed reports whether the document produced an error.
func (r ExtractionResult) Failed() bool {
	return r.Error != ""
}

// Status maps the result onto the report status column.
func (r ExtractionResult) Status() constants.ResultStatus {
	if r.Failed() {
		return constants.StatusError
	}
	return constants.StatusSuccess
}

// TotalValue sums the totalValue of every line item, treating unset as zero.
func (r ExtractionResult) TotalValue() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range r.LineItems {
		sum = sum.Add(li.Total())
	}
	return sum
}

// BatchSummary is derived from a result sequence; never stored.
type BatchSummary struct {
	Documents  int             `json:"documents"`
	Successes  int             `json:"successes"`
	Failures   int             `json:"failures"`
	LineItems  int             `json:"lineItems"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// Summarize counts successes, failures and line items over results.
func Summarize(results []ExtractionResult) BatchSummary {
	s := BatchSummary{Documents: len(results), GrandTotal: decimal.Zero}
	for _, r := range results {
		if r.Failed() {
			s.Failures++
		} else {
			s.Successes++
		}
		s.LineItems += len(r.LineItems)
		s.GrandTotal = s.GrandTotal.Add(r.TotalValue())
	}
	return s
}
