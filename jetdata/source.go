package jetdata

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sbinet/npyio"
)

// Resolution selects which raw-source granularity to fetch. The coarse
// sources keep 30 particles per jet, the fine ones 150; the assembler picks
// Res150 whenever the requested cap exceeds 30.
type Resolution string

const (
	Res30  Resolution = "30"
	Res150 Resolution = "150"
)

// coarseParticleCap is the particles-per-jet limit of the Res30 sources;
// caps above it require the Res150 files.
const coarseParticleCap = 30

// zenodoRecordIDs maps each resolution to the Zenodo record hosting its
// per-type archive files.
var zenodoRecordIDs = map[Resolution]int{
	Res30:  6975118,
	Res150: 6975117,
}

// Names of the two arrays every raw source file carries.
const (
	particleArrayName = "particle_features"
	jetArrayName      = "jet_features"
)

// datasetName is the per-type file stem inside a record: "g" for the
// 30-particle gluon file, "g150" for the 150-particle one.
func datasetName(jt JetType, res Resolution) string {
	if res == Res150 {
		return string(jt) + "150"
	}
	return string(jt)
}

// RawArray is an n-dimensional numeric array read from a raw source file,
// flattened row-major.
type RawArray struct {
	Data  []float32
	Shape []int
}

// Len returns the number of leading-axis entries.
func (a *RawArray) Len() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

// RawSource is the retrieval collaborator the pipeline loads from. EnsureLocal
// resolves (and fetches, if missing) the file for one jet type and resolution
// and returns its local path; Read decodes one named array from that file.
type RawSource interface {
	EnsureLocal(dataDir string, jt JetType, res Resolution) (string, error)
	Read(path, name string) (*RawArray, error)
}

// ZenodoSource fetches raw files from the public Zenodo records and caches
// them under the data directory as <name>.npz. The zero value is usable.
type ZenodoSource struct {
	// BaseURL overrides the Zenodo record root, mainly for tests.
	// Defaults to "https://zenodo.org/record".
	BaseURL string

	// Client used for downloads. Defaults to http.DefaultClient.
	Client *http.Client

	// Checksums optionally maps file names (e.g. "g150.npz") to expected
	// sha256 hex digests; downloads failing verification are rejected.
	Checksums map[string]string
}

func (s *ZenodoSource) baseURL() string {
	if s.BaseURL != "" {
		return strings.TrimRight(s.BaseURL, "/")
	}
	return "https://zenodo.org/record"
}

func (s *ZenodoSource) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// EnsureLocal returns the local path of the npz file for (jt, res),
// downloading it from the matching Zenodo record first if it is not already
// cached in dataDir.
func (s *ZenodoSource) EnsureLocal(dataDir string, jt JetType, res Resolution) (string, error) {
	key := datasetName(jt, res) + ".npz"
	path := filepath.Join(dataDir, key)
	url := fmt.Sprintf("%s/%d/files/%s?download=1", s.baseURL(), zenodoRecordIDs[res], key)
	if err := ensureDownloaded(s.client(), url, path, s.Checksums[key]); err != nil {
		return "", err
	}
	return path, nil
}

// Read decodes the named array from an npz file. Array members are stored as
// npy payloads named <name>.npy; both float32 and float64 payloads are
// accepted, the latter converted down.
func (s *ZenodoSource) Read(path, name string) (*RawArray, error) {
	z, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrRetrieval, path, err)
	}
	defer z.Close()

	member := name + ".npy"
	for _, f := range z.File {
		if f.Name != member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening member %s of %s: %v", ErrRetrieval, member, path, err)
		}
		defer rc.Close()
		return readNpy(rc, path, name)
	}
	return nil, fmt.Errorf("%w: array %q not found in %s", ErrRetrieval, name, path)
}

func readNpy(r io.Reader, path, name string) (*RawArray, error) {
	npy, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s in %s: %v", ErrRetrieval, name, path, err)
	}
	shape := make([]int, len(npy.Header.Descr.Shape))
	copy(shape, npy.Header.Descr.Shape)

	var data []float32
	switch {
	case strings.HasSuffix(npy.Header.Descr.Type, "f8"):
		var wide []float64
		if err := npy.Read(&wide); err != nil {
			return nil, fmt.Errorf("%w: reading %s in %s: %v", ErrRetrieval, name, path, err)
		}
		data = make([]float32, len(wide))
		for i, v := range wide {
			data[i] = float32(v)
		}
	case strings.HasSuffix(npy.Header.Descr.Type, "f4"):
		if err := npy.Read(&data); err != nil {
			return nil, fmt.Errorf("%w: reading %s in %s: %v", ErrRetrieval, name, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s in %s has unsupported dtype %q", ErrRetrieval, name, path, npy.Header.Descr.Type)
	}
	return &RawArray{Data: data, Shape: shape}, nil
}
