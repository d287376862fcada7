package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
)

const howell = `"height";"weight";"age";"male"
151.765;47.8256065;63;1
139.7;36.4858065;63;0
136.525;31.864838;65;0
156.845;53.0419145;41;1
145.415;41.276872;51;0
121.92;19.617854;8;1
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadSemicolon(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()
	writeFile(t, dir, "Howell1.csv", howell)

	ds, err := Open(dir, "Howell1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ds.Name()).To(Equal("Howell1"))
	g.Expect(ds.Columns()).To(Equal([]string{"height", "weight", "age", "male"}))
	g.Expect(ds.Len()).To(Equal(6))

	h, err := ds.Floats("height")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(h[0]).To(BeNumerically("~", 151.765, 1e-9))
}

func TestLoadComma(t *testing.T) {
	g := NewWithT(t)
	ds, err := Read("toy", strings.NewReader("x,label\n1,a\n2,b\n3,a\n"))
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(ds.IsNumeric("x")).To(BeTrue())
	g.Expect(ds.IsNumeric("label")).To(BeFalse())

	_, err = ds.Floats("label")
	g.Expect(errors.Is(err, ErrNotNumeric)).To(BeTrue())
	_, err = ds.Floats("missing")
	g.Expect(errors.Is(err, ErrNoColumn)).To(BeTrue())

	labels, err := ds.Strings("label")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(labels).To(Equal([]string{"a", "b", "a"}))
}

func TestLoadErrors(t *testing.T) {
	g := NewWithT(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	g.Expect(errors.Is(err, ErrNotFound)).To(BeTrue())

	_, err = Read("empty", strings.NewReader(""))
	g.Expect(errors.Is(err, ErrEmpty)).To(BeTrue())

	_, err = Read("ragged", strings.NewReader("a,b\n1,2\n3\n"))
	g.Expect(errors.Is(err, ErrRaggedRecord)).To(BeTrue())
}

func TestAvailable(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "x\n1\n")
	writeFile(t, dir, "a.csv", "x\n1\n")
	writeFile(t, dir, "notes.txt", "hi")

	names, err := Available(dir)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(names).To(Equal([]string{"a", "b"}))
}

func TestFilterAndWhere(t *testing.T) {
	g := NewWithT(t)
	ds, err := Read("howell", strings.NewReader(howell))
	g.Expect(err).NotTo(HaveOccurred())

	adults := ds.Filter(func(r Row) bool { return r["age"].Num >= 18 })
	g.Expect(adults.Len()).To(Equal(5))
	g.Expect(ds.Len()).To(Equal(6))

	males := ds.Where("male", "1.0")
	g.Expect(males.Len()).To(Equal(3))

	sub, err := ds.Select("weight", "height")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sub.Columns()).To(Equal([]string{"weight", "height"}))
	_, err = ds.Select("shoe")
	g.Expect(errors.Is(err, ErrNoColumn)).To(BeTrue())
}

func TestData(t *testing.T) {
	g := NewWithT(t)
	ds, err := Read("toy", strings.NewReader("x,label,y\n1,a,2\n2,b,4\n"))
	g.Expect(err).NotTo(HaveOccurred())

	data := ds.Data()
	g.Expect(data).To(HaveLen(2))
	g.Expect(data["x"]).To(Equal([]float64{1, 2}))
	g.Expect(data["y"]).To(Equal([]float64{2, 4}))
}

func TestSummary(t *testing.T) {
	g := NewWithT(t)
	ds, err := Read("toy", strings.NewReader("x,label\n1,a\n2,b\n6,a\n"))
	g.Expect(err).NotTo(HaveOccurred())

	s := ds.Summary()
	g.Expect(s).To(HaveLen(2))
	g.Expect(s[0]).To(Equal(ColumnSummary{Name: "x", Numeric: true, Count: 3, Min: 1, Max: 6, Mean: 3}))
	g.Expect(s[1]).To(Equal(ColumnSummary{Name: "label", Count: 3, Unique: 2}))
}

func TestWriteCSV(t *testing.T) {
	g := NewWithT(t)
	ds, err := Read("howell", strings.NewReader(howell))
	g.Expect(err).NotTo(HaveOccurred())

	var buf bytes.Buffer
	g.Expect(ds.WriteCSV(&buf)).To(Succeed())

	again, err := Read("copy", &buf)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(again.Columns()).To(Equal(ds.Columns()))
	g.Expect(again.Len()).To(Equal(ds.Len()))

	w1, _ := ds.Floats("weight")
	w2, _ := again.Floats("weight")
	g.Expect(w2).To(Equal(w1))
}
