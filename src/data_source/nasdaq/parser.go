package nasdaq

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"secmaster/src/models"
)

// trailerPrefix starts the last line of every symbol directory file.
const trailerPrefix = "File Creation Time"

// Parse reads a '|' separated symbol directory file. cols gives the column
// indexes of symbol, security name and test issue flag. The header line and
// the trailer line are skipped, as are rows too short to hold every column.
func Parse(r io.Reader, cols []int) ([]models.MListing, error) {
	if len(cols) != 3 {
		return nil, fmt.Errorf("need 3 columns, got %d", len(cols))
	}
	maxCol := max(cols[0], cols[1], cols[2])

	cr := csv.NewReader(r)
	cr.Comma = '|'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var (
		out    []models.MListing
		header = true
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse listings: %w", err)
		}

		if header {
			header = false
			continue
		}
		if len(rec) <= maxCol || strings.HasPrefix(rec[0], trailerPrefix) {
			continue
		}

		out = append(out, models.MListing{
			Symbol:    strings.TrimSpace(rec[cols[0]]),
			Name:      strings.TrimSpace(rec[cols[1]]),
			TestIssue: strings.TrimSpace(rec[cols[2]]),
		})
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// ParseFile opens path and parses it with Parse.
func ParseFile(path string, cols []int) ([]models.MListing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f, cols)
}
