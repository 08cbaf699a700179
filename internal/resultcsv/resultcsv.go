// Package resultcsv writes and reads the identifier → link CSV produced by a run.
package resultcsv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"suaplinks/internal/processo"
)

// Column names of the output file.
const (
	ColumnIdentifier = "NumeroProcesso"
	ColumnLink       = "LinkProcesso"
)

// DefaultPath is used when no output path is configured.
const DefaultPath = "processos_links.csv"

// ErrBadHeader is returned by ReadFile when the header does not match.
var ErrBadHeader = errors.New("cabeçalho CSV inesperado")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer serializes outcomes to CSV.
type Writer struct {
	// BOM prefixes the file with a UTF-8 byte order mark, which some
	// spreadsheet tools need to detect the encoding.
	BOM bool
}

// WriteFile writes outcomes to path, replacing any existing file.
func (w Writer) WriteFile(path string, outcomes []processo.Outcome) error {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("criando pasta de saída: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := w.Write(f, outcomes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes outcomes to out in order, header first.
func (w Writer) Write(out io.Writer, outcomes []processo.Outcome) error {
	if w.BOM {
		if _, err := out.Write(utf8BOM); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(out)
	if err := cw.Write([]string{ColumnIdentifier, ColumnLink}); err != nil {
		return err
	}
	for _, o := range outcomes {
		link := o.Link
		if !o.Found() {
			link = processo.NotFound
		}
		if err := cw.Write([]string{o.Identifier, link}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFile parses a CSV previously produced by WriteFile.
func ReadFile(path string) ([]processo.Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("lendo %s: %w", path, err)
	}
	if len(records) == 0 || len(records[0]) != 2 ||
		records[0][0] != ColumnIdentifier || records[0][1] != ColumnLink {
		return nil, fmt.Errorf("%w em %s", ErrBadHeader, path)
	}

	outcomes := make([]processo.Outcome, 0, len(records)-1)
	for _, rec := range records[1:] {
		outcomes = append(outcomes, processo.Outcome{Identifier: rec[0], Link: rec[1]})
	}
	return outcomes, nil
}
