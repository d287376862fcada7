package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/quap/internal/quap"
)

var formulas = []string{
	"y ~ normal(mu, sigma)",
	"mu ~ normal(0, 10)",
	"sigma ~ exponential(1)",
}

func fit(t *testing.T) (*quap.FitResult, map[string][]float64) {
	t.Helper()
	q, err := quap.New(formulas, quap.Data{"y": {-1, 1, 0.5, -0.3, 2.1}})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if _, err := q.Estimate(context.Background()); err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	res, _ := q.Result()
	return res, res.Samples(20, 42)
}

func saved(t *testing.T, st *Store) (string, *quap.FitResult) {
	t.Helper()
	res, samples := fit(t)
	meta, err := FromResult("normal", formulas, true, res)
	if err != nil {
		t.Fatalf("from result failed: %v", err)
	}
	id, err := st.Save(meta, samples)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	return id, res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	id, res := saved(t, st)
	if id == "" {
		t.Error("expected non-empty fit id")
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "normal" {
		t.Errorf("expected name 'normal', got '%s'", meta.Name)
	}
	if meta.Coef["mu"] != res.Coef()["mu"] {
		t.Errorf("expected mu %v, got %v", res.Coef()["mu"], meta.Coef["mu"])
	}
	if meta.AIC != res.AIC() {
		t.Errorf("expected aic %v, got %v", res.AIC(), meta.AIC)
	}
	if len(meta.Vcov) != 2 || len(meta.Vcov[0]) != 2 {
		t.Errorf("expected 2x2 vcov, got %v", meta.Vcov)
	}
	if meta.Samples != 20 {
		t.Errorf("expected 20 samples, got %d", meta.Samples)
	}

	samples, order, err := st.LoadSamples(id)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if strings.Join(order, ",") != "mu,sigma" {
		t.Errorf("expected columns mu,sigma, got %v", order)
	}
	want := res.Samples(20, 42)
	for _, p := range order {
		if len(samples[p]) != 20 {
			t.Fatalf("expected 20 %s samples, got %d", p, len(samples[p]))
		}
		for i := range want[p] {
			if samples[p][i] != want[p][i] {
				t.Fatalf("%s[%d]: expected %v, got %v", p, i, want[p][i], samples[p][i])
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	fits, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(fits) != 0 {
		t.Errorf("expected 0 fits, got %d", len(fits))
	}

	saved(t, st)
	saved(t, st)

	fits, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(fits) != 2 {
		t.Errorf("expected 2 fits, got %d", len(fits))
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	fits, err := st.List()
	if err != nil || len(fits) != 0 {
		t.Errorf("expected empty list, got %v, %v", fits, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	id, _ := saved(t, st)
	for _, name := range []string{metadataFile, samplesFile} {
		if _, err := os.Stat(filepath.Join(dir, id, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())
	for _, id := range []string{"../etc", "00000000-0000-0000-0000-000000000000"} {
		if _, err := st.Load(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("load %q: expected ErrNotFound, got %v", id, err)
		}
		if _, _, err := st.LoadSamples(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("load samples %q: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	id, _ := saved(t, st)

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, id); err != nil {
		t.Fatalf("export json failed: %v", err)
	}
	var doc struct {
		ID    string               `json:"id"`
		Draws map[string][]float64 `json:"draws"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if doc.ID != id || len(doc.Draws["sigma"]) != 20 {
		t.Errorf("unexpected export: id=%s draws=%d", doc.ID, len(doc.Draws["sigma"]))
	}

	buf.Reset()
	if err := st.ExportCSV(&buf, id); err != nil {
		t.Fatalf("export csv failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "mu,sigma" || len(lines) != 21 {
		t.Errorf("unexpected csv: header %q, %d lines", lines[0], len(lines))
	}
}
