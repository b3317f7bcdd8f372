// Package decoder turns PDF bytes into plain text, retrying locked
// documents with a fixed ordered list of candidate passwords.
package decoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Appa019/Coleta-dados-faturas/constants"
	"github.com/Appa019/Coleta-dados-faturas/internal/common"
)

// Config controls the decoder.
type Config struct {
	Pdftotext string        // binary name or absolute path; if empty -> "pdftotext"
	Passwords []string      // candidates tried after a direct decode fails; nil -> constants.Passwords()
	Timeout   time.Duration // per attempt; 0 = no limit
}

// Result is a decoded document.
type Result struct {
	Text     string
	Pages    int
	Source   string // name of the TextSource that produced Text
	Password string // candidate that unlocked the document, when Unlocked
	Unlocked bool
	Attempts int // password attempts made; 0 when the direct decode succeeded
}

// Decoder extracts text through an ordered list of sources.
type Decoder struct {
	cfg      Config
	sources  []TextSource
	unlocker Unlocker
	logger   *slog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithSources replaces the default text sources.
func WithSources(sources ...TextSource) Option {
	return func(d *Decoder) { d.sources = sources }
}

// WithUnlocker replaces the pdfcpu unlocker.
func WithUnlocker(u Unlocker) Option {
	return func(d *Decoder) { d.unlocker = u }
}

// WithRunner sets the command runner used by the pdftotext source.
func WithRunner(r Runner) Option {
	return func(d *Decoder) {
		d.sources = []TextSource{NewPopplerSource(d.cfg.Pdftotext, r), NativeSource{}}
	}
}

// New builds a Decoder. By default pdftotext is used when installed, with
// the in-process reader behind it.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Passwords == nil {
		cfg.Passwords = constants.Passwords()
	}

	d := &Decoder{cfg: cfg, unlocker: PdfcpuUnlocker{}, logger: logger}
	poppler := NewPopplerSource(cfg.Pdftotext, NewExecRunner(logger))
	if poppler.Available() {
		d.sources = append(d.sources, poppler)
	} else {
		logger.Debug("decoder.pdftotext.unavailable", "bin", cfg.Pdftotext)
	}
	d.sources = append(d.sources, NativeSource{})

	for _, o := range opts {
		o(d)
	}
	return d
}

// Decode returns the document text. A direct decode is tried first; if it
// fails each candidate password is tried in order to unlock the document.
// Errors wrap common.ErrDecode.
func (d *Decoder) Decode(ctx context.Context, data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, common.NewAppError(common.CodeDecode, "empty document", common.ErrDecode)
	}

	res, directErr := d.extract(ctx, data)
	if directErr == nil {
		return res, nil
	}
	d.logger.Debug("decoder.direct.failed", "error", directErr)

	var unlocked Result
	pw, attempts, err := TryPasswords(d.cfg.Passwords, func(pw string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		plain, err := d.unlocker.Unlock(ctx, data, pw)
		if err != nil {
			return err
		}
		r, err := d.extract(ctx, plain)
		if err != nil {
			return err
		}
		unlocked = r
		return nil
	})
	if err != nil {
		cause := err
		if errors.Is(err, ErrNoCandidates) {
			cause = directErr
		}
		return Result{Attempts: attempts}, common.NewAppError(common.CodeDecode,
			fmt.Sprintf("unreadable after %d password attempts", attempts),
			fmt.Errorf("%w: %v", common.ErrDecode, cause))
	}

	unlocked.Password = pw
	unlocked.Unlocked = true
	unlocked.Attempts = attempts
	d.logger.Debug("decoder.unlocked", "attempts", attempts, "source", unlocked.Source)
	return unlocked, nil
}

// extract runs sources in order and returns the first non-empty text. A
// source that succeeds with blank text is kept only if nothing better turns up.
func (d *Decoder) extract(ctx context.Context, data []byte) (Result, error) {
	var (
		blank *Result
		errs  []error
	)
	for _, src := range d.sources {
		t, err := d.run(ctx, src, data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		r := Result{Text: Normalize(t.Content), Pages: t.Pages, Source: src.Name()}
		if strings.TrimSpace(r.Text) != "" {
			return r, nil
		}
		if blank == nil {
			blank = &r
		}
	}
	if blank != nil {
		return *blank, nil
	}
	if len(errs) == 0 {
		return Result{}, errors.New("no text sources configured")
	}
	return Result{}, errors.Join(errs...)
}

func (d *Decoder) run(ctx context.Context, src TextSource, data []byte) (Text, error) {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}
	return src.Text(ctx, data)
}
