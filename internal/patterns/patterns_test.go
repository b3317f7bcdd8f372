package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallationPatterns(t *testing.T) {
	lib := Default()
	samples := map[string]struct {
		text string
		want string
	}{
		"installation_number": {"Nº DA INSTALAÇÃO: 3001234567", "3001234567"},
		"consumer_unit":       {"Unidade Consumidora 12345678", "12345678"},
		"client_code":         {"Código do Cliente: 987654321", "987654321"},
		"client_consumer":     {"Cliente/Consumidor 55554444", "55554444"},
		"positional":          {"0123456789 Tarifa Convencional", "0123456789"},
	}

	require.Len(t, lib.Installation, len(samples))
	for _, p := range lib.Installation {
		t.Run(p.Name, func(t *testing.T) {
			s, ok := samples[p.Name]
			require.True(t, ok, "no sample for %s", p.Name)
			m := p.Re.FindStringSubmatch(s.text)
			require.NotNil(t, m)
			got := p.Render(m)
			assert.Equal(t, s.want, got)
			assert.True(t, p.Accepts(got))
		})
	}
}

func TestInstallationPatterns_RejectLongNumbers(t *testing.T) {
	p := Default().Installation[0]
	assert.Nil(t, p.Re.FindStringSubmatch("Instalação 1234567890123"))
	assert.Nil(t, p.Re.FindStringSubmatch("Instalação 1234567"))
}

func TestPeriodPatterns(t *testing.T) {
	lib := Default()
	samples := map[string]struct {
		text string
		want string
	}{
		"labeled_numeric":    {"Referência: 03-2024", "03/2024"},
		"labeled_month_name": {"Mês de referência MARÇO/2024", "MARÇO/2024"},
		"bare_numeric":       {"Vencimento 15/03/2024", "03/2024"},
		"month_abbreviation": {"Conta de FEV/2024", "FEV/2024"},
	}

	require.Len(t, lib.Period, len(samples))
	for _, p := range lib.Period {
		t.Run(p.Name, func(t *testing.T) {
			s, ok := samples[p.Name]
			require.True(t, ok, "no sample for %s", p.Name)
			assert.Equal(t, 2, p.Groups())
			m := p.Re.FindStringSubmatch(s.text)
			require.NotNil(t, m)
			assert.Equal(t, s.want, p.Render(m))
		})
	}
}

func TestBarePeriodRejectsMonth13(t *testing.T) {
	p := Default().Period[2]
	assert.Nil(t, p.Re.FindStringSubmatch("13/2024"))
}

func TestSectionPatterns(t *testing.T) {
	lib := Default()
	for _, text := range []string{"ITENS DA FATURA", "Detalhamento da Fatura", "detalhes do faturamento"} {
		assert.True(t, lib.SectionStart.Re.MatchString(text), text)
	}

	ends := map[string]string{
		"invoice_total": "TOTAL A PAGAR",
		"notes":         "Informações Importantes",
		"history":       "Histórico de Consumo",
	}
	require.Len(t, lib.SectionEnd, len(ends))
	for _, p := range lib.SectionEnd {
		assert.True(t, p.Re.MatchString(ends[p.Name]), p.Name)
	}
}

func TestRowPatterns(t *testing.T) {
	lib := Default()

	m := lib.FullRow.Re.FindStringSubmatch("Energia Elétrica kWh 100,0 0,50 50,00")
	require.NotNil(t, m)
	assert.Equal(t, []string{"Energia Elétrica", "kWh", "100,0", "0,50", "50,00"}, m[1:])

	m = lib.SimpleRow.Re.FindStringSubmatch("Desconto 15,00")
	require.NotNil(t, m)
	assert.Equal(t, []string{"Desconto", "15,00"}, m[1:])

	assert.Nil(t, lib.FullRow.Re.FindStringSubmatch("Desconto 15,00"))

	for _, line := range []string{"Itens da Fatura", "Descrição Unid Quant", "-----------", "====="} {
		assert.True(t, lib.HeaderRow.Re.MatchString(line), line)
	}
	assert.False(t, lib.HeaderRow.Re.MatchString("Energia Elétrica kWh 100,0 0,50 50,00"))

	for _, label := range []string{"Total", "SUBTOTAL geral", "Página 2", "Folha 1 de 2"} {
		assert.True(t, lib.NonItemLabel.Re.MatchString(label), label)
	}
	assert.False(t, lib.NonItemLabel.Re.MatchString("Contribuição Iluminação Pública"))
}

func TestAll(t *testing.T) {
	lib := Default()
	all := lib.All()
	assert.Len(t, all, 17)
	assert.Equal(t, "installation_number", all[0].Name)
	assert.Equal(t, KindNonItem, all[len(all)-1].Kind)
	for _, p := range all {
		assert.NotNil(t, p.Re, p.Name)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "energia eletrica", Fold("Energia Elétrica"))
	assert.Equal(t, "instalacao", Fold("INSTALAÇÃO"))
	assert.Equal(t, "", Fold(""))
}

func TestIsStructureKeyword(t *testing.T) {
	lib := Default()
	for _, w := range []string{"Total", "ITEM", "Unidade", " preço  unitário ", "Descrição"} {
		assert.True(t, lib.IsStructureKeyword(w), w)
	}
	assert.False(t, lib.IsStructureKeyword("Energia Elétrica"))
}
