// Package export writes bloc snapshots as YAML or JSON, to a writer or to a
// directory holding one file per bloc.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/comalice/bloc"
)

var ErrInvalidName = errors.New("export: invalid snapshot name")

// Encoder serializes snapshots in one format.
type Encoder interface {
	Encode(w io.Writer, v any) error
	Decode(r io.Reader, v any) error
	// Ext is the file extension without the dot.
	Ext() string
}

type yamlEncoder struct{}

func (yamlEncoder) Encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	return enc.Close()
}

func (yamlEncoder) Decode(r io.Reader, v any) error {
	if err := yaml.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("yaml unmarshal: %w", err)
	}
	return nil
}

func (yamlEncoder) Ext() string { return "yaml" }

type jsonEncoder struct{}

func (jsonEncoder) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return nil
}

func (jsonEncoder) Decode(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}

func (jsonEncoder) Ext() string { return "json" }

var (
	YAML Encoder = yamlEncoder{}
	JSON Encoder = jsonEncoder{}
)

// Write encodes snap to w.
func Write[S any](w io.Writer, enc Encoder, snap bloc.Snapshot[S]) error {
	return enc.Encode(w, snap)
}

// Read decodes a snapshot from r.
func Read[S any](r io.Reader, enc Encoder) (bloc.Snapshot[S], error) {
	var snap bloc.Snapshot[S]
	if err := enc.Decode(r, &snap); err != nil {
		return bloc.Snapshot[S]{}, err
	}
	return snap, nil
}

// Dir keeps the latest snapshot of each bloc in <dir>/<name>.<ext>.
// Saving overwrites the previous file.
type Dir struct {
	dir string
	enc Encoder
}

// NewDir creates a Dir, ensuring the directory exists.
func NewDir(dir string, enc Encoder) (*Dir, error) {
	if enc == nil {
		enc = YAML
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &Dir{dir: dir, enc: enc}, nil
}

// Path returns the file that holds the snapshot for name.
func (d *Dir) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(d.dir, name+"."+d.enc.Ext()), nil
}

// Save writes snap to the file named after snap.Name.
func Save[S any](ctx context.Context, d *Dir, snap bloc.Snapshot[S]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn, err := d.Path(snap.Name)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := d.enc.Encode(&buf, snap); err != nil {
		return err
	}
	if err := os.WriteFile(fn, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

// Load reads the snapshot saved for name. A missing file yields an error
// wrapping os.ErrNotExist.
func Load[S any](ctx context.Context, d *Dir, name string) (bloc.Snapshot[S], error) {
	if err := ctx.Err(); err != nil {
		return bloc.Snapshot[S]{}, err
	}
	fn, err := d.Path(name)
	if err != nil {
		return bloc.Snapshot[S]{}, err
	}

	f, err := os.Open(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return bloc.Snapshot[S]{}, fmt.Errorf("bloc %q: %w", name, os.ErrNotExist)
		}
		return bloc.Snapshot[S]{}, fmt.Errorf("read %s: %w", fn, err)
	}
	defer f.Close()

	snap, err := Read[S](f, d.enc)
	if err != nil {
		return bloc.Snapshot[S]{}, fmt.Errorf("decode %s: %w", fn, err)
	}
	snap.Name = name
	return snap, nil
}

// Observer returns a state-change observer that saves b's snapshot to d
// after every state change. Save failures are returned to Submit.
func Observer[S, E any](b *bloc.Bloc[S, E], d *Dir) bloc.StateChangeFunc[S] {
	return func(_, _ S) error {
		return Save(context.Background(), d, b.Snapshot())
	}
}
