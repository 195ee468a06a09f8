package run

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/KaramelBytes/reviewlens/internal/utils"
	"github.com/google/uuid"
)

const manifestFileName = "manifest.json"

// Artifact is one output file of a run, relative to the run directory.
type Artifact struct {
	Kind string `json:"kind"` // report|json|xlsx|chart
	Path string `json:"path"`
}

// Manifest records what an analyze run read and produced.
type Manifest struct {
	ID         string     `json:"id"`
	Input      string     `json:"input"`
	Rows       int        `json:"rows"`
	Findings   int        `json:"findings"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Artifacts  []Artifact `json:"artifacts"`
	Warnings   []string   `json:"warnings,omitempty"`

	// Not serialized: the run directory holding manifest.json
	dir string
}

// New starts a manifest for input writing into dir.
func New(input, dir string) *Manifest {
	return &Manifest{
		ID:        uuid.NewString(),
		Input:     input,
		StartedAt: time.Now().UTC(),
		dir:       dir,
	}
}

// Load reads manifest.json from dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("run not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.dir = dir
	return &m, nil
}

// Dir returns the run directory.
func (m *Manifest) Dir() string { return m.dir }

// Add records an artifact. Absolute paths inside the run directory are stored relative to it.
func (m *Manifest) Add(kind, path string) {
	if rel, err := filepath.Rel(m.dir, path); err == nil && filepath.IsLocal(rel) {
		path = filepath.ToSlash(rel)
	}
	m.Artifacts = append(m.Artifacts, Artifact{Kind: kind, Path: path})
}

func (m *Manifest) Warn(msg string) { m.Warnings = append(m.Warnings, msg) }

// Save stamps FinishedAt and writes manifest.json atomically.
func (m *Manifest) Save() error {
	if m.dir == "" {
		return errors.New("run directory not set")
	}
	if err := utils.EnsureDir(m.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	m.FinishedAt = time.Now().UTC()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(m.dir, manifestFileName), data)
}

// List loads every run directly under root, newest first. Directories
// without a readable manifest are skipped.
func List(root string) ([]*Manifest, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read output root: %w", err)
	}
	var out []*Manifest
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := Load(filepath.Join(root, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}
