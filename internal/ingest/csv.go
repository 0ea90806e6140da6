package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/opsexstack/debtscan/internal/models"
	"github.com/opsexstack/debtscan/internal/utils"
)

// Required CSV columns. Extra columns are ignored.
var requiredColumns = []string{"Timestamp", "Endpoint", "Latency_ms", "Status"}

// anomalyColumns is the export schema for the anomalies-only download.
var anomalyColumns = []string{"Timestamp", "Endpoint", "Latency_ms", "Wasted_ms", "Status"}

// LoadCSV parses a delimited log dataset from r. The header row must
// name the four required columns; a missing or malformed cell leaves
// the field in a state the validator will flag (NaN latency, zero
// timestamp) rather than failing the whole load.
func LoadCSV(r io.Reader) ([]models.LogRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing columns: %s", col)
		}
	}

	var records []models.LogRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		records = append(records, parseRow(row, index))
	}
	return records, nil
}

func parseRow(row []string, index map[string]int) models.LogRecord {
	cell := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := models.LogRecord{
		Endpoint:  cell("Endpoint"),
		LatencyMs: math.NaN(),
	}

	if ts, err := utils.ParseTimestamp(cell("Timestamp")); err == nil {
		rec.Timestamp = ts
	}
	if latency, err := strconv.ParseFloat(cell("Latency_ms"), 64); err == nil {
		rec.LatencyMs = latency
	}
	if status, err := strconv.Atoi(cell("Status")); err == nil {
		rec.Status = status
	}
	return rec
}

// WriteRecordsCSV writes a plain log dataset in the ingest schema.
func WriteRecordsCSV(w io.Writer, records []models.LogRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(requiredColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Timestamp.Format(time.RFC3339),
			rec.Endpoint,
			strconv.FormatFloat(rec.LatencyMs, 'f', -1, 64),
			strconv.Itoa(rec.Status),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteAnomaliesCSV writes the anomalies-only record set in the
// downloadable report schema. Timestamps are rendered as RFC3339 so the
// file round-trips through LoadCSV.
func WriteAnomaliesCSV(w io.Writer, anomalies []models.AnnotatedRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(anomalyColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range anomalies {
		row := []string{
			rec.Timestamp.Format(time.RFC3339),
			rec.Endpoint,
			strconv.FormatFloat(rec.LatencyMs, 'f', -1, 64),
			strconv.FormatFloat(rec.WastedMs, 'f', -1, 64),
			strconv.Itoa(rec.Status),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// LoadAnomaliesCSV parses a file produced by WriteAnomaliesCSV back into
// annotated records.
func LoadAnomaliesCSV(r io.Reader) ([]models.AnnotatedRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range anomalyColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing columns: %s", col)
		}
	}

	var records []models.AnnotatedRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rec := models.AnnotatedRecord{LogRecord: parseRow(row, index), IsAnomaly: true}
		if wasted, err := strconv.ParseFloat(strings.TrimSpace(row[index["Wasted_ms"]]), 64); err == nil {
			rec.WastedMs = wasted
		}
		records = append(records, rec)
	}
	return records, nil
}
