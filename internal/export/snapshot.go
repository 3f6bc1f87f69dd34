package export

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// Snapshot formats.
const (
	FormatXLSX    = "xlsx"
	FormatParquet = "parquet"
)

// Snapshotter writes each intermediate batch of a run to Dir. A nil
// Snapshotter writes nothing.
type Snapshotter struct {
	Dir    string
	Format string
	log    zerolog.Logger
}

// NewSnapshotter validates the format and prepares dir.
func NewSnapshotter(dir, format string, log zerolog.Logger) (*Snapshotter, error) {
	if format != FormatXLSX && format != FormatParquet {
		return nil, fmt.Errorf("unknown snapshot format %q (want xlsx or parquet)", format)
	}
	if err := PrepareDir(dir); err != nil {
		return nil, err
	}
	return &Snapshotter{Dir: dir, Format: format, log: log}, nil
}

// PrepareDir creates dir if needed and removes any files left in it.
func PrepareDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("clear snapshot dir: %w", err)
		}
	}
	return nil
}

// Snapshot writes rows as snap_<name>.<format>. Errors are returned; the
// caller decides whether they are fatal.
func Snapshot[T any](s *Snapshotter, name string, rows []T) error {
	if s == nil {
		return nil
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("snap_%s.%s", name, s.Format))
	var err error
	switch s.Format {
	case FormatParquet:
		err = parquet.WriteFile(path, rows)
	default:
		columns, values := structTable(rows)
		err = WriteWorkbook(path, name, columns, values)
	}
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", name, err)
	}
	s.log.Debug().Str("snapshot", path).Int("rows", len(rows)).Msg("snapshot written")
	return nil
}

// structTable flattens structs into columns named by their parquet tags.
func structTable[T any](rows []T) ([]string, [][]any) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return []string{"value"}, wrapValues(rows)
	}

	var columns []string
	var fields []int
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("parquet"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		columns = append(columns, name)
		fields = append(fields, i)
	}

	values := make([][]any, len(rows))
	for r := range rows {
		v := reflect.ValueOf(rows[r])
		row := make([]any, len(fields))
		for c, i := range fields {
			row[c] = v.Field(i).Interface()
		}
		values[r] = row
	}
	return columns, values
}

func wrapValues[T any](rows []T) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{r}
	}
	return out
}
