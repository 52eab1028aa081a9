package batch

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/segmentio/parquet-go"
)

const maxLineSize = 16 << 20

// recordReader yields records in file order. Next returns io.EOF at the end
// and a *ValidationError for a row that could not be decoded.
type recordReader interface {
	Next() (*Record, int64, error)
	Close() error
}

func openReader(path string, format FileFormat) (recordReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", format, err)
	}

	var reader recordReader
	switch format {
	case FormatCSV:
		reader, err = newCSVReader(file)
	case FormatParquet:
		reader = &parquetReader{file: file, reader: parquet.NewReader(file)}
	case FormatJSONL:
		reader = newJSONLReader(file)
	default:
		err = fmt.Errorf("unsupported file format: %s", format)
	}
	if err != nil {
		file.Close()
		return nil, err
	}
	return reader, nil
}

// csvReader reads files with a header row naming the text, id and tier columns
type csvReader struct {
	file   *os.File
	reader *csv.Reader
	text   int
	id     int
	tier   int
	row    int64
}

func newCSVReader(file *os.File) (*csvReader, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	r := &csvReader{file: file, reader: reader, text: -1, id: -1, tier: -1}
	for i, column := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(column, "\ufeff"))) {
		case "text":
			r.text = i
		case "id":
			r.id = i
		case "tier":
			r.tier = i
		}
	}
	if r.text < 0 {
		return nil, fmt.Errorf("CSV header has no text column: %v", header)
	}
	return r, nil
}

func (r *csvReader) Next() (*Record, int64, error) {
	fields, err := r.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, io.EOF
	}
	r.row++
	if err != nil {
		return nil, r.row, &ValidationError{Row: r.row, Field: "record", Message: err.Error()}
	}
	if r.text >= len(fields) {
		return nil, r.row, &ValidationError{Row: r.row, Field: "text", Message: "missing column"}
	}

	record := &Record{Text: fields[r.text]}
	if r.id >= 0 && r.id < len(fields) {
		record.ID = strings.TrimSpace(fields[r.id])
	}
	if r.tier >= 0 && r.tier < len(fields) {
		if value := strings.TrimSpace(fields[r.tier]); value != "" {
			tier, err := strconv.Atoi(value)
			if err != nil {
				return nil, r.row, &ValidationError{Row: r.row, Field: "tier", Message: fmt.Sprintf("not an integer: %q", value)}
			}
			record.Tier = &tier
		}
	}
	return record, r.row, nil
}

func (r *csvReader) Close() error {
	return r.file.Close()
}

type parquetReader struct {
	file   *os.File
	reader *parquet.Reader
	row    int64
}

func (r *parquetReader) Next() (*Record, int64, error) {
	var record Record
	err := r.reader.Read(&record)
	if errors.Is(err, io.EOF) {
		return nil, 0, io.EOF
	}
	r.row++
	if err != nil {
		return nil, r.row, fmt.Errorf("failed to read Parquet row %d: %w", r.row, err)
	}
	return &record, r.row, nil
}

func (r *parquetReader) Close() error {
	r.reader.Close()
	return r.file.Close()
}

// jsonlReader reads one JSON object per line; blank lines are ignored
type jsonlReader struct {
	file    *os.File
	scanner *bufio.Scanner
	row     int64
}

func newJSONLReader(file *os.File) *jsonlReader {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &jsonlReader{file: file, scanner: scanner}
}

func (r *jsonlReader) Next() (*Record, int64, error) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		r.row++
		var record Record
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, r.row, &ValidationError{Row: r.row, Field: "record", Message: err.Error()}
		}
		return &record, r.row, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, r.row, fmt.Errorf("failed to read JSONL: %w", err)
	}
	return nil, 0, io.EOF
}

func (r *jsonlReader) Close() error {
	return r.file.Close()
}
