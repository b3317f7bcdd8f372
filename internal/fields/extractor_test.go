package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstallationID(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "labeled installation", text: "Nº DA INSTALAÇÃO\n3001234567\nCLIENTE", want: "3001234567"},
		{name: "installation number inline", text: "Número da Instalação: 123456789", want: "123456789"},
		{name: "consumer unit", text: "UC: 12345678 Classe Residencial", want: "12345678"},
		{name: "label priority over position", text: "0987654321 Tarifa B1\nCódigo do Cliente 11223344", want: "11223344"},
		{name: "positional fallback", text: "Conta\n0987654321 Grupo B", want: "0987654321"},
		{name: "too short", text: "Instalação: 1234567", want: ""},
		{name: "absent", text: "nada aqui", want: ""},
		{name: "empty", text: "", want: ""},
	}
	e := NewExtractor(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.InstallationID(tt.text))
		})
	}
}

func TestBillingPeriod(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "labeled numeric", text: "Vencimento 10/04/2024\nReferência: 03/2024", want: "03/2024"},
		{name: "labeled dash", text: "COMPETÊNCIA 12-2023", want: "12/2023"},
		{name: "labeled month name", text: "Mês/Ano: Março de 2024", want: "Março/2024"},
		{name: "bare fallback", text: "Leitura 02/2024 atual", want: "02/2024"},
		{name: "abbreviation", text: "Conta de JAN/2024", want: "JAN/2024"},
		{name: "absent", text: "sem periodo", want: ""},
	}
	e := NewExtractor(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.BillingPeriod(tt.text))
		})
	}
}
