package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Appa019/Coleta-dados-faturas/internal/common"
	"github.com/Appa019/Coleta-dados-faturas/internal/entity"
)

// MarshalResults encodes results as indented JSON and checks the output
// against BuildResultJSONSchema.
func MarshalResults(results []entity.ExtractionResult) ([]byte, error) {
	if results == nil {
		results = []entity.ExtractionResult{}
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, common.NewAppError(common.CodeExport, "marshal results", err)
	}
	if err := ValidateJSONAgainstSchema(BuildResultJSONSchema(), b); err != nil {
		return nil, common.NewAppError(common.CodeExport, "validate results", err)
	}
	return b, nil
}

// WriteJSON writes the validated JSON form of results to w.
func WriteJSON(w io.Writer, results []entity.ExtractionResult) error {
	b, err := MarshalResults(results)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
