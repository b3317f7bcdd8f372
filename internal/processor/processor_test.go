package processor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Appa019/Coleta-dados-faturas/constants"
	"github.com/Appa019/Coleta-dados-faturas/internal/common"
	"github.com/Appa019/Coleta-dados-faturas/internal/decoder"
	"github.com/Appa019/Coleta-dados-faturas/internal/entity"
)

const invoiceText = `DISTRIBUIDORA DE ENERGIA S.A.
Nº DA INSTALAÇÃO: 3001234567
Referência: 03/2024        Vencimento: 10/04/2024

ITENS DA FATURA
Descrição            Unid   Quant   Preço Unit   Valor
Energia Elétrica kWh 100,0 0,50 50,00
Bandeira Amarela kWh 100,0 0,02 2,00
Contrib. Ilum. Pública 12,30
Energia Elétrica kWh 10,0 0,50 5,00
TOTAL A PAGAR 64,30

Informações Importantes
`

type stubDecoder struct {
	text   map[string]string
	panics bool
}

func (s stubDecoder) Decode(_ context.Context, data []byte) (decoder.Result, error) {
	if s.panics {
		panic("corrupt xref")
	}
	t, ok := s.text[string(data)]
	if !ok {
		return decoder.Result{Attempts: 9}, common.NewAppError(common.CodeDecode, "unreadable after 9 password attempts", common.ErrDecode)
	}
	return decoder.Result{Text: t, Source: "stub"}, nil
}

func TestProcess_Success(t *testing.T) {
	p := NewProcessor(stubDecoder{text: map[string]string{"a": invoiceText}}, nil, nil)

	res := p.Process(context.Background(), entity.RawDocument{Name: "a.pdf", Data: []byte("a")})
	assert.Empty(t, res.Error)
	assert.Equal(t, "a.pdf", res.FileName)
	assert.Equal(t, "3001234567", res.InstallationID)
	assert.Equal(t, "03/2024", res.BillingPeriod)

	require.Len(t, res.LineItems, 3)
	assert.Equal(t, "Energia Elétrica", res.LineItems[0].Item)
	assert.Equal(t, 50.0, res.LineItems[0].TotalValue.Decimal.InexactFloat64())
	assert.Equal(t, "Bandeira Amarela", res.LineItems[1].Item)
	assert.Equal(t, "Contrib. Ilum. Pública", res.LineItems[2].Item)
	assert.Equal(t, 12.3, res.LineItems[2].TotalValue.Decimal.InexactFloat64())
	assert.Equal(t, constants.StatusSuccess, res.Status())
}

func TestProcess_DecodeFailure(t *testing.T) {
	p := NewProcessor(stubDecoder{text: map[string]string{}}, nil, nil)

	res := p.Process(context.Background(), entity.RawDocument{Name: "locked.pdf", Data: []byte("x")})
	assert.True(t, strings.HasPrefix(res.Error, constants.DecodeFailurePrefix), res.Error)
	assert.Empty(t, res.InstallationID)
	assert.Empty(t, res.BillingPeriod)
	assert.NotNil(t, res.LineItems)
	assert.Empty(t, res.LineItems)
}

func TestProcess_EmptyTableKeepsFields(t *testing.T) {
	text := "UC 12345678\nReferência 05/2024\nITENS DA FATURA\nnada\nTOTAL A PAGAR 0,00"
	p := NewProcessor(stubDecoder{text: map[string]string{"b": text}}, nil, nil)

	res := p.Process(context.Background(), entity.RawDocument{Name: "b.pdf", Data: []byte("b")})
	assert.Equal(t, constants.EmptyTableMessage, res.Error)
	assert.Equal(t, "item table not found or empty", res.Error)
	assert.Equal(t, "12345678", res.InstallationID)
	assert.Equal(t, "05/2024", res.BillingPeriod)
	assert.NotNil(t, res.LineItems)
}

func TestProcess_NoSection(t *testing.T) {
	p := NewProcessor(stubDecoder{text: map[string]string{"c": "Referência 05/2024"}}, nil, nil)
	res := p.Process(context.Background(), entity.RawDocument{Name: "c.pdf", Data: []byte("c")})
	assert.Equal(t, constants.EmptyTableMessage, res.Error)
	assert.Equal(t, "05/2024", res.BillingPeriod)
}

func TestProcess_RecoversPanic(t *testing.T) {
	p := NewProcessor(stubDecoder{panics: true}, nil, nil)
	res := p.Process(context.Background(), entity.RawDocument{Name: "bad.pdf"})
	assert.Equal(t, "bad.pdf", res.FileName)
	assert.Contains(t, res.Error, "corrupt xref")
	assert.NotNil(t, res.LineItems)
}

func TestProcess_DecodeErrorIsTyped(t *testing.T) {
	_, err := stubDecoder{}.Decode(context.Background(), nil)
	assert.True(t, errors.Is(err, common.ErrDecode))
}
