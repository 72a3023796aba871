// Package csvfile stores dataset tables as one CSV file per table in a
// directory, and loads them back strictly for staged runs and validation.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/couchcryptid/streetlight-datagen/internal/domain"
)

// Store reads and writes <dir>/<table>.csv.
// It implements pipeline.Source and pipeline.Sink.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a Store rooted at dir.
func New(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Path returns the file backing table.
func (s *Store) Path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

// WriteTables writes each table to its file, replacing any previous version.
// Every table is staged under a temporary name first and the files are renamed
// only once all of them are complete, so a failed or cancelled run leaves the
// previous tables in place.
func (s *Store) WriteTables(ctx context.Context, run domain.RunInfo, tables []domain.Table) (err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	staged := make([]string, 0, len(tables))
	defer func() {
		if err != nil {
			for _, tmp := range staged {
				os.Remove(tmp)
			}
		}
	}()

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		tmp, err := s.stageTable(t)
		if err != nil {
			return err
		}
		staged = append(staged, tmp)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, t := range tables {
		path := s.Path(t.Name)
		if err := os.Rename(staged[i], path); err != nil {
			return fmt.Errorf("rename %s: %w", path, err)
		}
		s.logger.Info("table written", "table", t.Name, "rows", len(t.Rows), "path", path, "run_id", run.ID)
	}
	return nil
}

// stageTable writes t to a temporary file next to its final path and returns
// the temporary name.
func (s *Store) stageTable(t domain.Table) (name string, err error) {
	path := s.Path(t.Name)
	tmp, err := os.CreateTemp(s.dir, "."+t.Name+"-*.csv")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := WriteTable(tmp, t); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return tmp.Name(), nil
}

// WriteTable encodes t as CSV with a header row.
func WriteTable(w io.Writer, t domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := cw.Write(r.Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Record is one data row keyed by column, with its 1-based file line.
type Record struct {
	Line   int
	Fields map[string]string
}

// ReadTable reads the header and data rows of a CSV file. The header must
// contain every column in want; extra columns are ignored by loaders but
// reported to callers through the returned header.
func ReadTable(path string, want []string) ([]string, []Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%s: %w: empty file", path, domain.ErrMalformedRecord)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, col := range want {
		if !slices.Contains(header, col) {
			return nil, nil, fmt.Errorf("%s:1: %w: missing column %q", path, domain.ErrMalformedRecord, col)
		}
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w: %w", path, domain.ErrMalformedRecord, err)
		}
		line, _ := cr.FieldPos(0)
		fields := make(map[string]string, len(header))
		for i, col := range header {
			fields[col] = row[i]
		}
		records = append(records, Record{Line: line, Fields: fields})
	}
	return header, records, nil
}

// Load parses every row of table under dir with parse. The first malformed
// row aborts the load with an error naming the file and line.
func Load[T any](dir, table string, parse func(map[string]string) (T, error)) ([]T, error) {
	path := filepath.Join(dir, table+".csv")
	_, records, err := ReadTable(path, domain.Headers[table])
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		v, err := parse(r.Fields)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, r.Line, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// LoadNeighborhoods loads neighborhoods.csv.
func (s *Store) LoadNeighborhoods(_ context.Context) ([]domain.Neighborhood, error) {
	hoods, err := Load(s.dir, domain.TableNeighborhoods, domain.ParseNeighborhood)
	if err != nil {
		return nil, err
	}
	if len(hoods) == 0 {
		return nil, fmt.Errorf("%s: %w: no neighborhoods", s.Path(domain.TableNeighborhoods), domain.ErrMalformedRecord)
	}
	s.logger.Info("table loaded", "table", domain.TableNeighborhoods, "rows", len(hoods))
	return hoods, nil
}

// LoadStreetLights loads street_lights.csv.
func (s *Store) LoadStreetLights(_ context.Context) ([]domain.StreetLight, error) {
	lights, err := Load(s.dir, domain.TableStreetLights, domain.ParseStreetLight)
	if err != nil {
		return nil, err
	}
	s.logger.Info("table loaded", "table", domain.TableStreetLights, "rows", len(lights))
	return lights, nil
}

// LoadDataset loads all six tables.
func (s *Store) LoadDataset() (domain.Dataset, error) {
	var (
		ds  domain.Dataset
		err error
	)
	if ds.Neighborhoods, err = Load(s.dir, domain.TableNeighborhoods, domain.ParseNeighborhood); err != nil {
		return ds, err
	}
	if ds.Lights, err = Load(s.dir, domain.TableStreetLights, domain.ParseStreetLight); err != nil {
		return ds, err
	}
	if ds.Suppliers, err = Load(s.dir, domain.TableSuppliers, domain.ParseSupplier); err != nil {
		return ds, err
	}
	if ds.Weather, err = Load(s.dir, domain.TableWeather, domain.ParseWeather); err != nil {
		return ds, err
	}
	if ds.Demographics, err = Load(s.dir, domain.TableDemographics, domain.ParseDemographics); err != nil {
		return ds, err
	}
	if ds.PowerGrid, err = Load(s.dir, domain.TablePowerGrid, domain.ParsePowerGrid); err != nil {
		return ds, err
	}
	return ds, nil
}
