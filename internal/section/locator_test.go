package section

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate_NoStart(t *testing.T) {
	assert.Equal(t, "", NewLocator(nil).Locate("Conta de energia\nTotal a pagar 10,00"))
	assert.Equal(t, "", NewLocator(nil).Locate(""))
}

func TestLocate_NoEndRunsToEnd(t *testing.T) {
	text := "cabecalho\nITENS DA FATURA\nEnergia Elétrica kWh 100,0 0,50 50,00\n"
	got := NewLocator(nil).Locate(text)
	assert.Equal(t, text[strings.Index(text, "ITENS"):], got)
}

func TestLocate_EndExtendedByTail(t *testing.T) {
	filler := strings.Repeat("x", 500)
	text := "ITENS DA FATURA\nDesconto 15,00\nTOTAL A PAGAR 35,00\n" + filler

	got := NewLocator(nil).Locate(text)
	endAt := strings.Index(text, "TOTAL A PAGAR")
	require.Equal(t, text[:endAt+DefaultTail], got)
	assert.Contains(t, got, "TOTAL A PAGAR 35,00")
}

func TestLocate_EarliestEndWins(t *testing.T) {
	text := "ITENS DA FATURA\nA\nHistórico de Consumo\n" + strings.Repeat("y", 300) +
		"\nObservações\n" + strings.Repeat("z", 300)

	start, end, ok := NewLocator(nil).LocateSpan(text)
	require.True(t, ok)
	assert.Equal(t, 0, start)
	histAt := strings.Index(text, "Histórico")
	assert.Len(t, []rune(text[histAt:end]), DefaultTail)
}

func TestLocate_EndBeforeStartIgnored(t *testing.T) {
	text := "Observações gerais\nITENS DA FATURA\nEnergia Elétrica kWh 100,0 0,50 50,00"
	got := NewLocator(nil).Locate(text)
	assert.True(t, strings.HasPrefix(got, "ITENS DA FATURA"))
	assert.True(t, strings.HasSuffix(got, "50,00"))
}

func TestLocate_TailClampedAtEnd(t *testing.T) {
	text := "Detalhamento da Fatura\nItem 1,00\nTotal da fatura 1,00"
	got := NewLocator(nil).Locate(text)
	assert.Equal(t, text, got)
}

func TestLocate_InvoiceExample(t *testing.T) {
	footer := strings.Repeat("f", 400)
	tests := []struct {
		name string
		text string
	}{
		{name: "short footer", text: "... Itens da Fatura ... row1 ... row2 ... Total da Fatura R$100 ... footer"},
		{name: "long footer", text: "... Itens da Fatura ... row1 ... row2 ... Total da Fatura R$100 ... footer" + footer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLocator(nil).Locate(tt.text)

			start := strings.Index(tt.text, "Itens da Fatura")
			end := min(strings.Index(tt.text, "Total da Fatura")+DefaultTail, len(tt.text))
			assert.Equal(t, tt.text[start:end], got)
			assert.True(t, strings.HasPrefix(got, "Itens da Fatura"))
			assert.Contains(t, got, "Total da Fatura R$100")
		})
	}
}
