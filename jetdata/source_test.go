package jetdata

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeNpyMember writes a minimal npy v1 payload for a float32 or float64
// array with the given shape.
func writeNpyMember(t *testing.T, w io.Writer, descr string, shape []int, data any) {
	t.Helper()

	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = fmt.Sprintf("%d", d)
	}
	shapeStr := "(" + strings.Join(dims, ", ") + ")"
	if len(shape) == 1 {
		shapeStr = fmt.Sprintf("(%d,)", shape[0])
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, shapeStr)
	for (10+len(header)+1)%64 != 0 {
		header += " "
	}
	header += "\n"

	if _, err := w.Write([]byte("\x93NUMPY\x01\x00")); err != nil {
		t.Fatalf("writing npy magic: %v", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(header))); err != nil {
		t.Fatalf("writing npy header length: %v", err)
	}
	if _, err := io.WriteString(w, header); err != nil {
		t.Fatalf("writing npy header: %v", err)
	}
	if err := binary.Write(w, binary.LittleEndian, data); err != nil {
		t.Fatalf("writing npy data: %v", err)
	}
}

// npzBytes builds an npz archive holding float32 particle and jet arrays.
func npzBytes(t *testing.T, rows, particles int) []byte {
	t.Helper()

	pf := make([]float32, rows*particles*len(ParticleFeatureOrder))
	for i := range pf {
		pf[i] = float32(i)
	}
	jf := make([]float32, rows*4)
	for i := range jf {
		jf[i] = float32(i) / 2
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, member := range []struct {
		name  string
		shape []int
		data  []float32
	}{
		{particleArrayName + ".npy", []int{rows, particles, len(ParticleFeatureOrder)}, pf},
		{jetArrayName + ".npy", []int{rows, 4}, jf},
	} {
		w, err := zw.Create(member.name)
		if err != nil {
			t.Fatalf("creating zip member: %v", err)
		}
		writeNpyMember(t, w, "<f4", member.shape, member.data)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func TestZenodoSource_ReadNpz(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "g.npz")
	if err := os.WriteFile(path, npzBytes(t, 3, 5), 0o644); err != nil {
		t.Fatalf("writing npz: %v", err)
	}

	src := &ZenodoSource{}
	raw, err := src.Read(path, particleArrayName)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	wantShape := []int{3, 5, len(ParticleFeatureOrder)}
	if len(raw.Shape) != 3 || raw.Shape[0] != wantShape[0] || raw.Shape[1] != wantShape[1] || raw.Shape[2] != wantShape[2] {
		t.Fatalf("shape = %v, want %v", raw.Shape, wantShape)
	}
	if raw.Len() != 3 {
		t.Fatalf("Len = %d, want 3", raw.Len())
	}
	if raw.Data[0] != 0 || raw.Data[7] != 7 {
		t.Fatalf("unexpected data: %v", raw.Data[:8])
	}

	jets, err := src.Read(path, jetArrayName)
	if err != nil {
		t.Fatalf("Read jet array error: %v", err)
	}
	if len(jets.Shape) != 2 || jets.Shape[1] != 4 {
		t.Fatalf("jet shape = %v, want [3 4]", jets.Shape)
	}

	if _, err := src.Read(path, "no_such_array"); !errors.Is(err, ErrRetrieval) {
		t.Fatalf("expected ErrRetrieval for missing array, got %v", err)
	}
	if _, err := src.Read(filepath.Join(tmp, "missing.npz"), particleArrayName); !errors.Is(err, ErrRetrieval) {
		t.Fatalf("expected ErrRetrieval for missing file, got %v", err)
	}
}

func TestZenodoSource_ReadFloat64Payload(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "wide.npz")

	data := []float64{1.5, 2.5, 3.5, 4.5, 5.5, 6.5}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(jetArrayName + ".npy")
	if err != nil {
		t.Fatalf("creating zip member: %v", err)
	}
	writeNpyMember(t, w, "<f8", []int{2, 3}, data)
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing npz: %v", err)
	}

	src := &ZenodoSource{}
	raw, err := src.Read(path, jetArrayName)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	for i, want := range data {
		if raw.Data[i] != float32(want) {
			t.Fatalf("value %d = %v, want %v", i, raw.Data[i], want)
		}
	}
}

func TestZenodoSource_EnsureLocalDownloadsAndCaches(t *testing.T) {
	payload := npzBytes(t, 4, 6)
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if !strings.Contains(r.URL.Path, "6975118/files/q.npz") {
			http.NotFound(w, r)
			return
		}
		w.Write(payload)
	}))
	defer server.Close()

	tmp := t.TempDir()
	src := &ZenodoSource{BaseURL: server.URL}

	path, err := src.EnsureLocal(tmp, LightQuark, Res30)
	if err != nil {
		t.Fatalf("EnsureLocal error: %v", err)
	}
	if path != filepath.Join(tmp, "q.npz") {
		t.Fatalf("unexpected cache path: %s", path)
	}
	if requests != 1 {
		t.Fatalf("expected 1 download, got %d", requests)
	}

	// Second call hits the cache.
	if _, err := src.EnsureLocal(tmp, LightQuark, Res30); err != nil {
		t.Fatalf("cached EnsureLocal error: %v", err)
	}
	if requests != 1 {
		t.Fatalf("cache hit still downloaded (%d requests)", requests)
	}

	raw, err := src.Read(path, particleArrayName)
	if err != nil {
		t.Fatalf("Read after download error: %v", err)
	}
	if raw.Len() != 4 {
		t.Fatalf("downloaded array has %d rows, want 4", raw.Len())
	}

	// A missing remote file surfaces as a retrieval error.
	if _, err := src.EnsureLocal(tmp, ZBoson, Res30); !errors.Is(err, ErrRetrieval) {
		t.Fatalf("expected ErrRetrieval for missing remote file, got %v", err)
	}
}

func TestDatasetName(t *testing.T) {
	if got := datasetName(Gluon, Res30); got != "g" {
		t.Fatalf("datasetName(g, 30) = %q", got)
	}
	if got := datasetName(TopQuark, Res150); got != "t150" {
		t.Fatalf("datasetName(t, 150) = %q", got)
	}
}
