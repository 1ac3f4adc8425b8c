package ml

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ArtifactFiles names the four artifact files inside an artifact directory.
type ArtifactFiles struct {
	Linear           string `yaml:"linear"`
	Scaler           string `yaml:"scaler"`
	PowerTransformer string `yaml:"power_transformer"`
	SkewedColumns    string `yaml:"skewed_columns"`
}

func DefaultArtifactFiles() ArtifactFiles {
	return ArtifactFiles{
		Linear:           "linear_model.json",
		Scaler:           "feature_scaler.json",
		PowerTransformer: "power_transformer.json",
		SkewedColumns:    "skewed_columns.json",
	}
}

func (f ArtifactFiles) withDefaults() ArtifactFiles {
	d := DefaultArtifactFiles()
	if f.Linear == "" {
		f.Linear = d.Linear
	}
	if f.Scaler == "" {
		f.Scaler = d.Scaler
	}
	if f.PowerTransformer == "" {
		f.PowerTransformer = d.PowerTransformer
	}
	if f.SkewedColumns == "" {
		f.SkewedColumns = d.SkewedColumns
	}
	return f
}

// Names returns the file names keyed by artifact.
func (f ArtifactFiles) Names() map[string]string {
	f = f.withDefaults()
	return map[string]string{
		ArtifactLinear:           f.Linear,
		ArtifactScaler:           f.Scaler,
		ArtifactPowerTransformer: f.PowerTransformer,
		ArtifactSkewedColumns:    f.SkewedColumns,
	}
}

// LoadBundle reads and validates the four artifacts in dir. On any failure it
// returns an *ArtifactLoadError and no bundle.
func LoadBundle(dir string, files ArtifactFiles) (*Bundle, error) {
	files = files.withDefaults()
	paths := map[string]string{}
	for artifact, name := range files.Names() {
		paths[artifact] = filepath.Join(dir, name)
	}

	var (
		linear LinearModel
		scaler ScalerModel
		power  PowerTransformModel
		skewed []string
	)
	if err := readArtifact(paths[ArtifactLinear], &linear); err != nil {
		return nil, &ArtifactLoadError{Artifact: ArtifactLinear, Path: paths[ArtifactLinear], Err: err}
	}
	if err := readArtifact(paths[ArtifactScaler], &scaler); err != nil {
		return nil, &ArtifactLoadError{Artifact: ArtifactScaler, Path: paths[ArtifactScaler], Err: err}
	}
	if err := readArtifact(paths[ArtifactPowerTransformer], &power); err != nil {
		return nil, &ArtifactLoadError{Artifact: ArtifactPowerTransformer, Path: paths[ArtifactPowerTransformer], Err: err}
	}
	if err := readArtifact(paths[ArtifactSkewedColumns], &skewed); err != nil {
		return nil, &ArtifactLoadError{Artifact: ArtifactSkewedColumns, Path: paths[ArtifactSkewedColumns], Err: err}
	}

	bundle, artifact, err := newBundle(&linear, &scaler, &power, skewed)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: artifact, Path: paths[artifact], Err: err}
	}
	bundle.dir = dir
	return bundle, nil
}

func readArtifact(path string, v interface{}) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return errors.New("empty file")
	}
	return json.Unmarshal(payload, v)
}

// Loader loads each artifact directory at most once and hands out the same
// bundle on later calls.
type Loader struct {
	files ArtifactFiles
	mu    sync.Mutex
	cache *lru.Cache[string, *Bundle]
}

func NewLoader(files ArtifactFiles, size int) (*Loader, error) {
	if size <= 0 {
		size = 4
	}
	cache, err := lru.New[string, *Bundle](size)
	if err != nil {
		return nil, err
	}
	return &Loader{files: files.withDefaults(), cache: cache}, nil
}

func (l *Loader) Load(dir string) (*Bundle, error) {
	key, err := filepath.Abs(dir)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: "directory", Path: dir, Err: err}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if bundle, ok := l.cache.Get(key); ok {
		return bundle, nil
	}
	bundle, err := LoadBundle(dir, l.files)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, bundle)
	return bundle, nil
}

func (l *Loader) Files() ArtifactFiles {
	return l.files
}
