package decoder

import (
	"bytes"
	"context"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Unlocker removes encryption from a PDF given a candidate password.
type Unlocker interface {
	Unlock(ctx context.Context, data []byte, password string) ([]byte, error)
}

// PdfcpuUnlocker decrypts with pdfcpu, trying the password as user and owner password.
type PdfcpuUnlocker struct{}

func (PdfcpuUnlocker) Unlock(ctx context.Context, data []byte, password string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.UserPW = password
	conf.OwnerPW = password

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &out, conf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
