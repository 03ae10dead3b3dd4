// Package report renders a collected timeline as a CSV file and as a
// three-row scatter chart.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"tracefile/internal/timeline"
)

// TimeLayout is the timestamp format used in CSV reports. It keeps the zone
// offset and every fractional digit the host reported.
const TimeLayout = time.RFC3339Nano

// Header is the fixed first row of every CSV report.
var Header = []string{"File Path", "Created", "Modified", "Accessed"}

// ErrBadHeader is returned when a CSV report does not start with Header.
var ErrBadHeader = errors.New("unexpected csv header")

// WriteCSV writes tl to path, replacing any existing file.
func WriteCSV(tl timeline.Timeline, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close csv %s: %w", path, closeErr)
		}
	}()

	if err := EncodeCSV(f, tl); err != nil {
		return fmt.Errorf("write csv %s: %w", path, err)
	}
	return nil
}

// EncodeCSV writes the header and one row per record to w.
func EncodeCSV(w io.Writer, tl timeline.Timeline) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, record := range tl {
		row := []string{
			record.Path,
			record.Created.Format(TimeLayout),
			record.Modified.Format(TimeLayout),
			record.Accessed.Format(TimeLayout),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV loads a report previously produced by WriteCSV.
func ReadCSV(path string) (timeline.Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	tl, err := DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return tl, nil
}

// DecodeCSV parses a report from r.
func DecodeCSV(r io.Reader) (timeline.Timeline, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrBadHeader)
	}
	if err != nil {
		return nil, err
	}
	for i, column := range Header {
		if header[i] != column {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i+1, header[i], column)
		}
	}

	tl := timeline.Timeline{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		var stamps [3]time.Time
		for i := range stamps {
			parsed, parseErr := time.Parse(TimeLayout, row[i+1])
			if parseErr != nil {
				return nil, fmt.Errorf("line %d %s: %w", line, Header[i+1], parseErr)
			}
			stamps[i] = parsed
		}

		tl = append(tl, timeline.Record{
			Path:     row[0],
			Created:  stamps[0],
			Modified: stamps[1],
			Accessed: stamps[2],
		})
	}
	return tl, nil
}
