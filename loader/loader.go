package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/viant/tracknn/track"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither CSV nor Parquet.
	ErrUnsupportedFormat = errors.New("loader: unsupported file format")
	// ErrMalformedRow is returned when a row cannot be decoded.
	ErrMalformedRow = errors.New("loader: malformed row")
	// ErrMissingColumn is returned when a CSV header lacks a required column.
	ErrMissingColumn = errors.New("loader: missing column")
)

// DefaultProgressEvery is the row interval of progress logs.
const DefaultProgressEvery = 1000

// Source provides points for an engine build.
type Source interface {
	Load(ctx context.Context) ([]track.Point, error)
}

// File loads tracks from a .csv or .parquet file.
type File struct {
	Path          string
	Logger        *zap.Logger
	ProgressEvery int
}

// NewFile returns a File source for path.
func NewFile(path string, logger *zap.Logger) *File {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &File{Path: path, Logger: logger, ProgressEvery: DefaultProgressEvery}
}

// Load implements Source.
func (f *File) Load(ctx context.Context) ([]track.Point, error) {
	records, err := f.Records(ctx)
	if err != nil {
		return nil, err
	}
	return Points(records), nil
}

// Records reads every record of the file.
func (f *File) Records(ctx context.Context) ([]Record, error) {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".csv":
		file, err := os.Open(f.Path)
		if err != nil {
			return nil, fmt.Errorf("loader: open %s: %w", f.Path, err)
		}
		defer file.Close()
		records, err := ReadCSV(ctx, file, logger, f.ProgressEvery)
		if err != nil {
			return nil, fmt.Errorf("loader: %s: %w", f.Path, err)
		}
		logger.Info("tracks loaded", zap.String("path", f.Path), zap.Int("rows", len(records)))
		return records, nil
	case ".parquet":
		records, err := ReadParquet(f.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("tracks loaded", zap.String("path", f.Path), zap.Int("rows", len(records)))
		return records, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.Path)
}

// ReadParquet reads all records of a Parquet file. Rows are numbered from 1.
func ReadParquet(path string) ([]Record, error) {
	records, err := parquet.ReadFile[Record](path)
	if err != nil {
		return nil, fmt.Errorf("loader: read parquet %s: %w", path, err)
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("loader: %s: %w: row %d: %v", path, ErrMalformedRow, i+1, err)
		}
	}
	return records, nil
}

var requiredColumns = []string{
	"id", "name", "artists", "duration_ms", "explicit",
	"valence", "acousticness", "danceability", "energy",
	"instrumentalness", "liveness", "speechiness",
}

// ReadCSV decodes a CSV stream with a header row. Columns are matched by
// name; extra columns are ignored. progressEvery <= 0 disables progress logs.
func ReadCSV(ctx context.Context, r io.Reader, logger *zap.Logger, progressEvery int) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var records []Record
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		rec, err := decodeRow(row, columns)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		records = append(records, rec)
		if progressEvery > 0 && len(records)%progressEvery == 0 {
			logger.Debug("loading tracks", zap.Int("rows", len(records)))
		}
	}
	return records, nil
}

func decodeRow(row []string, columns map[string]int) (Record, error) {
	var (
		rec  Record
		errs []error
	)
	text := func(name string) string { return row[columns[name]] }
	number := func(name string) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(text(name)), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return v
	}
	integer := func(name string, bits int) int64 {
		v, err := strconv.ParseUint(strings.TrimSpace(text(name)), 10, bits)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return int64(v)
	}

	rec.ID = text("id")
	rec.Name = text("name")
	rec.Artists = text("artists")
	rec.DurationMs = integer("duration_ms", 32)
	rec.Explicit = integer("explicit", 8)
	rec.Valence = number("valence")
	rec.Acousticness = number("acousticness")
	rec.Danceability = number("danceability")
	rec.Energy = number("energy")
	rec.Instrumentalness = number("instrumentalness")
	rec.Liveness = number("liveness")
	rec.Speechiness = number("speechiness")
	if len(errs) > 0 {
		return rec, errors.Join(errs...)
	}
	return rec, rec.Validate()
}
