// Package export writes ranked snapshots as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
	"github.com/ravushimo/gunsmoke-scanner/pkg/metrics"
)

// Defaults for saved files.
const (
	DefaultDir    = "./results"
	DefaultPrefix = "Gunsmoke"

	timestampLayout = "20060102_150405"
)

// utf8BOM lets spreadsheet tools detect the encoding of CJK nicknames.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF} //nolint:gochecknoglobals // constant bytes

// Header is the column order of every export.
var Header = []string{"rank", "season", "ign", "topscore", "totalscore"} //nolint:gochecknoglobals // column contract

const guildRankColumn = "guildrank"

// WriteCSV writes rows with a BOM and header. A non-empty guildRank adds a
// column whose value appears on the first row only.
func WriteCSV(w io.Writer, rows []model.RankedRecord, guildRank string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	header := Header
	if guildRank != "" {
		header = append(append([]string(nil), Header...), guildRankColumn)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		line := []string{
			strconv.Itoa(r.Rank),
			strconv.Itoa(r.Season),
			r.IGN,
			strconv.Itoa(r.TopScore),
			strconv.Itoa(r.TotalScore),
		}
		if guildRank != "" {
			v := ""
			if i == 0 {
				v = guildRank
			}
			line = append(line, v)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Writer saves snapshots into timestamped files.
type Writer struct {
	dir       string
	prefix    string
	guildRank string
	now       func() time.Time
}

// NewWriter creates a writer for ./results/Gunsmoke_Season<n>_<timestamp>.csv.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		dir:    DefaultDir,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// FileName returns the file name used for season at t.
func (w *Writer) FileName(season int, t time.Time) string {
	return fmt.Sprintf("%s_Season%d_%s.csv", w.prefix, season, t.Format(timestampLayout))
}

// Save writes rows to a new file and returns its path.
func (w *Writer) Save(season int, rows []model.RankedRecord) (string, error) {
	if len(rows) == 0 {
		return "", ErrEmpty
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(w.dir, w.FileName(season, w.now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := WriteCSV(f, rows, w.guildRank); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}

	metrics.RecordExport("file")
	return path, nil
}
