package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Appa019/Coleta-dados-faturas/internal/common"
	"github.com/Appa019/Coleta-dados-faturas/internal/entity"
)

// SummarySheet is the name of the per-document overview sheet.
const SummarySheet = "Resumo"

const maxSheetName = 31

var (
	summaryHeaders = []string{"fileName", "installationId", "billingPeriod", "itemCount", "totalValue", "status"}
	detailHeaders  = []string{"item", "unit", "quantity", "unitValue", "totalValue", "pisCofins", "icmsBase", "icmsRate", "icms", "unitTariff"}
)

// Renderer writes extraction results as an XLSX workbook.
type Renderer struct {
	logger *slog.Logger
}

func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger}
}

// Render returns workbook bytes: a summary row per document, failed rows
// highlighted, then one detail sheet per document in input order.
func (r *Renderer) Render(results []entity.ExtractionResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, common.WrapError(err, "rename summary sheet")
	}
	failedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Font: &excelize.Font{Color: "9C0006"},
	})
	if err != nil {
		return nil, common.WrapError(err, "xlsx style")
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, common.WrapError(err, "xlsx style")
	}

	writeHeader(f, SummarySheet, summaryHeaders, headerStyle)
	for i, res := range results {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SummarySheet, cell, v)
		}
		write(1, res.FileName)
		write(2, res.InstallationID)
		write(3, res.BillingPeriod)
		write(4, len(res.LineItems))
		write(5, res.TotalValue().InexactFloat64())
		write(6, string(res.Status()))

		if res.Failed() {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(summaryHeaders), row)
			_ = f.SetCellStyle(SummarySheet, first, last, failedStyle)
		}
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 40) // file
	_ = f.SetColWidth(SummarySheet, "B", "C", 16) // id, period
	_ = f.SetColWidth(SummarySheet, "D", "F", 12)

	names := map[string]struct{}{strings.ToLower(SummarySheet): {}}
	for _, res := range results {
		sheet := uniqueSheetName(SheetName(res.FileName), names)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("new sheet %q: %w", sheet, err)
		}
		writeHeader(f, sheet, detailHeaders, headerStyle)
		for i, li := range res.LineItems {
			writeLineItem(f, sheet, i+2, li)
		}
		_ = f.SetColWidth(sheet, "A", "A", 36)
		_ = f.SetColWidth(sheet, "B", "J", 12)
	}

	idx, _ := f.GetSheetIndex(SummarySheet)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.WrapError(err, "xlsx write")
	}

	r.logger.Info("export.xlsx.ok",
		"documents", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", last, style)
}

func writeLineItem(f *excelize.File, sheet string, row int, li entity.LineItem) {
	cells := []any{li.Item, li.Unit}
	for _, v := range []decimal.NullDecimal{
		li.Quantity, li.UnitValue, li.TotalValue,
		li.PisCofins, li.IcmsBase, li.IcmsRate, li.Icms, li.UnitTariff,
	} {
		if v.Valid {
			cells = append(cells, v.Decimal.InexactFloat64())
		} else {
			cells = append(cells, nil)
		}
	}
	for i, v := range cells {
		if v == nil {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

var sheetNameReplacer = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// SheetName turns a file name into a valid worksheet name: the directory
// and extension are dropped, forbidden characters replaced, and the result
// cut to 31 characters.
func SheetName(fileName string) string {
	base := fileName
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	name := strings.Trim(sheetNameReplacer.Replace(base), "' ")
	if name == "" {
		name = "doc"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

// uniqueSheetName appends "~N" until name is unused (case-insensitive) and
// records it in used.
func uniqueSheetName(name string, used map[string]struct{}) string {
	candidate := name
	for n := 2; ; n++ {
		if _, taken := used[strings.ToLower(candidate)]; !taken {
			break
		}
		suffix := fmt.Sprintf("~%d", n)
		r := []rune(name)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		candidate = string(r) + suffix
	}
	used[strings.ToLower(candidate)] = struct{}{}
	return candidate
}
