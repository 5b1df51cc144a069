// Package storage reads and writes the delimited flat files the pipeline
// communicates through.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"faretrack/internal/models"
)

// AppendRawRows opens the raw file in append mode, writes one record per row
// and closes the file again. No header is written; the file handle is never
// held across fetch calls.
func AppendRawRows(path string, rows []models.RawRow) error {
	if len(rows) == 0 {
		return nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open raw file: %w", err)
	}

	writer := csv.NewWriter(file)
	for _, row := range rows {
		if err := writer.Write(row.Fields()); err != nil {
			file.Close()
			return fmt.Errorf("write raw row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("flush raw file: %w", err)
	}

	return file.Close()
}

// ReadTable loads an entire delimited file. Ragged rows are tolerated; the
// normalizer treats short rows as having empty trailing fields.
func ReadTable(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// WriteTable creates path and writes a header followed by the rows.
func WriteTable(path string, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			file.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}

	return file.Close()
}
