package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/quap/internal/formula"
)

var (
	ErrNotFound     = errors.New("dataset: not found")
	ErrEmpty        = errors.New("dataset: no header row")
	ErrNoColumn     = errors.New("dataset: unknown column")
	ErrNotNumeric   = errors.New("dataset: column is not numeric")
	ErrRaggedRecord = errors.New("dataset: record has wrong number of fields")
)

// Value is a single cell. Num is set when the text parses as a number.
type Value struct {
	Text    string
	Num     float64
	Numeric bool
}

func parseValue(s string) Value {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
		return Value{Text: s, Num: f, Numeric: true}
	}
	return Value{Text: s}
}

func (v Value) String() string { return v.Text }

// Row maps column names to cells.
type Row map[string]Value

type Dataset struct {
	name    string
	columns []string
	rows    []Row
}

// New builds a dataset from rows already in memory.
func New(name string, columns []string, rows []Row) *Dataset {
	return &Dataset{
		name:    name,
		columns: append([]string(nil), columns...),
		rows:    rows,
	}
}

// Load reads a CSV file with a header row. The delimiter is ',' unless the
// header holds more ';' than ','.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Read(name, f)
}

// Open loads <dir>/<name>.csv.
func Open(dir, name string) (*Dataset, error) {
	return Load(filepath.Join(dir, name+".csv"))
}

// Available lists the dataset names in dir, sorted.
func Available(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".csv"))
	}
	sort.Strings(names)
	return names, nil
}

func Read(name string, r io.Reader) (*Dataset, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.Comma = detectDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("dataset: read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	ds := &Dataset{name: name, columns: columns}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) != len(columns) {
			return nil, fmt.Errorf("%w: line %d has %d, want %d", ErrRaggedRecord, line, len(rec), len(columns))
		}
		row := make(Row, len(columns))
		for i, c := range columns {
			row[c] = parseValue(rec[i])
		}
		ds.rows = append(ds.rows, row)
	}
	return ds, nil
}

func detectDelimiter(head []byte) rune {
	line := string(head)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func (d *Dataset) Name() string { return d.name }

func (d *Dataset) Columns() []string { return append([]string(nil), d.columns...) }

func (d *Dataset) Len() int { return len(d.rows) }

func (d *Dataset) Rows() []Row { return d.rows }

func (d *Dataset) HasColumn(col string) bool {
	for _, c := range d.columns {
		if c == col {
			return true
		}
	}
	return false
}

// Floats returns a numeric column. Any non-numeric cell is an error.
func (d *Dataset) Floats(col string) ([]float64, error) {
	if !d.HasColumn(col) {
		return nil, fmt.Errorf("%w: %s", ErrNoColumn, col)
	}
	out := make([]float64, len(d.rows))
	for i, r := range d.rows {
		v := r[col]
		if !v.Numeric {
			return nil, fmt.Errorf("%w: %s row %d is %q", ErrNotNumeric, col, i+1, v.Text)
		}
		out[i] = v.Num
	}
	return out, nil
}

func (d *Dataset) Strings(col string) ([]string, error) {
	if !d.HasColumn(col) {
		return nil, fmt.Errorf("%w: %s", ErrNoColumn, col)
	}
	out := make([]string, len(d.rows))
	for i, r := range d.rows {
		out[i] = r[col].Text
	}
	return out, nil
}

// IsNumeric reports whether every non-empty cell of col is a number and at
// least one is.
func (d *Dataset) IsNumeric(col string) bool {
	seen := false
	for _, r := range d.rows {
		v := r[col]
		if v.Text == "" {
			continue
		}
		if !v.Numeric {
			return false
		}
		seen = true
	}
	return seen
}

// Filter returns a dataset holding the rows keep accepts.
func (d *Dataset) Filter(keep func(Row) bool) *Dataset {
	out := &Dataset{name: d.name, columns: d.columns}
	for _, r := range d.rows {
		if keep(r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Where keeps rows whose col equals value, numerically when both parse.
func (d *Dataset) Where(col, value string) *Dataset {
	want := parseValue(value)
	return d.Filter(func(r Row) bool {
		v := r[col]
		if want.Numeric && v.Numeric {
			return v.Num == want.Num
		}
		return v.Text == want.Text
	})
}

// Select keeps the named columns in the given order.
func (d *Dataset) Select(cols ...string) (*Dataset, error) {
	for _, c := range cols {
		if !d.HasColumn(c) {
			return nil, fmt.Errorf("%w: %s", ErrNoColumn, c)
		}
	}
	return &Dataset{name: d.name, columns: append([]string(nil), cols...), rows: d.rows}, nil
}

// Data returns the fully numeric columns.
func (d *Dataset) Data() formula.Data {
	data := make(formula.Data)
	for _, c := range d.columns {
		if col, err := d.Floats(c); err == nil && len(col) > 0 {
			data[c] = col
		}
	}
	return data
}

type ColumnSummary struct {
	Name    string
	Numeric bool
	Count   int
	Min     float64
	Max     float64
	Mean    float64
	Unique  int
}

// Summary describes every column, skipping empty cells.
func (d *Dataset) Summary() []ColumnSummary {
	out := make([]ColumnSummary, 0, len(d.columns))
	for _, c := range d.columns {
		s := ColumnSummary{Name: c}
		if d.IsNumeric(c) {
			s.Numeric = true
			vals := make([]float64, 0, len(d.rows))
			for _, r := range d.rows {
				if v := r[c]; v.Numeric {
					vals = append(vals, v.Num)
				}
			}
			s.Count = len(vals)
			s.Min, s.Max = vals[0], vals[0]
			for _, v := range vals {
				s.Min = math.Min(s.Min, v)
				s.Max = math.Max(s.Max, v)
			}
			s.Mean = stat.Mean(vals, nil)
		} else {
			uniq := make(map[string]struct{})
			for _, r := range d.rows {
				if v := r[c]; v.Text != "" {
					uniq[v.Text] = struct{}{}
					s.Count++
				}
			}
			s.Unique = len(uniq)
		}
		out = append(out, s)
	}
	return out
}

func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.columns); err != nil {
		return err
	}
	rec := make([]string, len(d.columns))
	for _, r := range d.rows {
		for i, c := range d.columns {
			rec[i] = r[c].Text
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (d *Dataset) String() string {
	return fmt.Sprintf("dataset %s: %d rows, columns %v", d.name, len(d.rows), d.columns)
}
