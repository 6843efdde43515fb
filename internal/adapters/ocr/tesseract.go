// Package ocr recognizes text in binarized regions with Tesseract.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/extract"
)

// languageCodes maps configuration language names to Tesseract traineddata names.
var languageCodes = map[string]string{ //nolint:gochecknoglobals // lookup table
	"en":     "eng",
	"ch_sim": "chi_sim",
	"ch_tra": "chi_tra",
	"ja":     "jpn",
	"ko":     "kor",
	"de":     "deu",
	"fr":     "fra",
	"es":     "spa",
	"ru":     "rus",
	"pt":     "por",
	"vi":     "vie",
	"th":     "tha",
}

// Languages converts configured language names to Tesseract codes, dropping
// duplicates. Names that are already Tesseract codes pass through.
func Languages(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		code, ok := languageCodes[n]
		if !ok {
			code = n
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

// Engine wraps a single Tesseract client. Calls are serialized because the
// client holds the image and whitelist as mutable state.
type Engine struct {
	mu         sync.Mutex
	client     *gosseract.Client
	languages  []string
	psm        gosseract.PageSegMode
	dictionary bool
}

var _ extract.Engine = (*Engine)(nil)

// New creates an engine for the configured languages.
func New(languages []string, opts ...Option) (*Engine, error) {
	codes := Languages(languages)
	if len(codes) == 0 {
		return nil, ErrNoLanguages
	}

	e := &Engine{
		languages: codes,
		psm:       gosseract.PSM_SINGLE_LINE,
	}
	for _, opt := range opts {
		opt(e)
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(codes...); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetPageSegMode(e.psm); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set page segmentation: %w", err)
	}
	if !e.dictionary {
		_ = client.SetVariable("load_system_dawg", "false")
		_ = client.SetVariable("load_freq_dawg", "false")
	}
	e.client = client
	return e, nil
}

// Languages returns the Tesseract language codes in use.
func (e *Engine) Languages() []string {
	return append([]string(nil), e.languages...)
}

// ReadText returns recognized words in reading order. An empty allowlist
// lifts any character restriction.
func (e *Engine) ReadText(ctx context.Context, img *image.Gray, allowlist string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return nil, ErrClosed
	}
	if err := e.client.SetWhitelist(allowlist); err != nil {
		return nil, fmt.Errorf("set whitelist: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	words := make([]string, 0, len(boxes))
	for _, b := range boxes {
		if w := strings.TrimSpace(b.Word); w != "" {
			words = append(words, w)
		}
	}
	return words, nil
}

// Close releases the Tesseract client.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
