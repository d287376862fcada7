package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/quap/internal/quap"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var (
	ErrNotFound  = errors.New("storage: fit not found")
	ErrNonFinite = errors.New("storage: fit has non-finite values")
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type FitMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Formulas   []string           `json:"formulas"`
	Priors     bool               `json:"priors"`
	Seed       uint64             `json:"seed"`
	Samples    int                `json:"samples"`
	Params     []string           `json:"params"`
	Coef       map[string]float64 `json:"coef"`
	SE         map[string]float64 `json:"se"`
	Vcov       [][]float64        `json:"vcov"`
	LogLik     float64            `json:"loglik"`
	AIC        float64            `json:"aic"`
	Iterations int                `json:"iterations"`
	Converged  bool               `json:"converged"`
	Fallback   bool               `json:"covariance_fallback"`
}

// FromResult captures a fit for storage. Standard errors of parameters
// with a negative variance are left out.
func FromResult(name string, formulas []string, priors bool, res *quap.FitResult) (FitMetadata, error) {
	if math.IsNaN(res.LogLik()) || math.IsInf(res.LogLik(), 0) {
		return FitMetadata{}, fmt.Errorf("%w: log-likelihood %v", ErrNonFinite, res.LogLik())
	}

	meta := FitMetadata{
		Name:       name,
		Formulas:   append([]string(nil), formulas...),
		Priors:     priors,
		Params:     res.Params(),
		Coef:       res.Coef(),
		SE:         make(map[string]float64),
		LogLik:     res.LogLik(),
		AIC:        res.AIC(),
		Iterations: res.Iterations(),
		Converged:  res.Converged(),
		Fallback:   res.CovarianceFallback(),
	}
	for k, v := range res.SE() {
		if !math.IsNaN(v) {
			meta.SE[k] = v
		}
	}
	if cov := res.Vcov(); cov != nil {
		n := cov.SymmetricDim()
		meta.Vcov = make([][]float64, n)
		for i := range meta.Vcov {
			meta.Vcov[i] = make([]float64, n)
			for j := range meta.Vcov[i] {
				meta.Vcov[i][j] = cov.At(i, j)
			}
		}
	}
	return meta, nil
}

// Save writes meta and samples under a new directory and returns its ID.
// Sample columns follow meta.Params.
func (s *Store) Save(meta FitMetadata, samples map[string][]float64) (string, error) {
	meta.ID = uuid.NewString()
	meta.Timestamp = time.Now().UTC()
	if len(meta.Params) > 0 {
		meta.Samples = len(samples[meta.Params[0]])
	}

	fitDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(fitDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(fitDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(fitDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteSamples(csvFile, meta.Params, samples); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// WriteSamples writes one column per parameter in order.
func WriteSamples(w io.Writer, order []string, samples map[string][]float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(order); err != nil {
		return err
	}

	n := 0
	for _, p := range order {
		if len(samples[p]) > n {
			n = len(samples[p])
		}
	}
	row := make([]string, len(order))
	for i := 0; i < n; i++ {
		for j, p := range order {
			col := samples[p]
			if i < len(col) {
				row[j] = strconv.FormatFloat(col[i], 'g', -1, 64)
			} else {
				row[j] = ""
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns every stored fit, newest first.
func (s *Store) List() ([]FitMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []FitMetadata{}, nil
		}
		return nil, err
	}

	fits := make([]FitMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		fits = append(fits, *meta)
	}

	sort.Slice(fits, func(i, j int) bool { return fits[i].Timestamp.After(fits[j].Timestamp) })
	return fits, nil
}

func (s *Store) Load(id string) (*FitMetadata, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var meta FitMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads the stored samples and their column order.
func (s *Store) LoadSamples(id string) (map[string][]float64, []string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	file, err := os.Open(filepath.Join(s.baseDir, id, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return map[string][]float64{}, nil, nil
	}

	order := records[0]
	samples := make(map[string][]float64, len(order))
	for _, p := range order {
		samples[p] = make([]float64, 0, len(records)-1)
	}
	for _, record := range records[1:] {
		for j, p := range order {
			if j >= len(record) || record[j] == "" {
				continue
			}
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			samples[p] = append(samples[p], v)
		}
	}
	return samples, order, nil
}

type exportData struct {
	FitMetadata
	Draws map[string][]float64 `json:"draws"`
}

// ExportJSON writes the metadata and samples of a fit as one document.
func (s *Store) ExportJSON(w io.Writer, id string) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	samples, _, err := s.LoadSamples(id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData{FitMetadata: *meta, Draws: samples})
}

// ExportCSV copies the stored samples to w.
func (s *Store) ExportCSV(w io.Writer, id string) error {
	samples, order, err := s.LoadSamples(id)
	if err != nil {
		return err
	}
	return WriteSamples(w, order, samples)
}
