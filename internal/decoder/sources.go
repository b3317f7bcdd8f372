package decoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Text is the plain text of a document, pages joined in order.
type Text struct {
	Content string
	Pages   int
}

// TextSource extracts text from PDF bytes.
type TextSource interface {
	Name() string
	Text(ctx context.Context, data []byte) (Text, error)
}

// PopplerSource shells out to pdftotext in layout mode.
type PopplerSource struct {
	bin    string
	runner Runner
}

// NewPopplerSource uses bin ("pdftotext" when empty) through runner.
func NewPopplerSource(bin string, runner Runner) *PopplerSource {
	if bin == "" {
		bin = "pdftotext"
	}
	if runner == nil {
		runner = NewExecRunner(nil)
	}
	return &PopplerSource{bin: bin, runner: runner}
}

func (s *PopplerSource) Name() string { return "pdftotext" }

// Available reports whether the binary can be found.
func (s *PopplerSource) Available() bool {
	_, err := exec.LookPath(s.bin)
	return err == nil
}

func (s *PopplerSource) Text(ctx context.Context, data []byte) (Text, error) {
	f, err := os.CreateTemp("", "faturas-*.pdf")
	if err != nil {
		return Text{}, err
	}
	defer func() { _ = os.Remove(f.Name()) }()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return Text{}, err
	}
	if err := f.Close(); err != nil {
		return Text{}, err
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := s.runner.Run(ctx, s.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", f.Name(), "-")
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return Text{}, fmt.Errorf("pdftotext: %s: %w", truncate(msg, 512), err)
		}
		return Text{}, fmt.Errorf("pdftotext: %w", err)
	}
	text := strings.TrimRight(string(out), "\f")
	// A form-feed \f is used as page separator by default
	return Text{Content: text, Pages: 1 + strings.Count(text, "\f")}, nil
}

// NativeSource reads the PDF in-process with ledongthuc/pdf.
type NativeSource struct{}

func (NativeSource) Name() string { return "native" }

func (NativeSource) Text(ctx context.Context, data []byte) (t Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = Text{}, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Text{}, err
	}

	var b strings.Builder
	n := r.NumPage()
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return Text{}, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return Text{}, fmt.Errorf("page %d: %w", i, err)
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(content)
	}
	return Text{Content: b.String(), Pages: n}, nil
}
