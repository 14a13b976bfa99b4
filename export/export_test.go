package export_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gopkg.in/yaml.v3"

	"github.com/comalice/bloc"
	"github.com/comalice/bloc/export"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type light string

const (
	red    light = "red"
	green  light = "green"
	yellow light = "yellow"
)

type tick struct{}

func cycle(s light, _ tick) (light, error) {
	switch s {
	case red:
		return green, nil
	case green:
		return yellow, nil
	default:
		return red, nil
	}
}

var fixedTime = time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

func newLights(t *testing.T, name string) *bloc.Bloc[light, tick] {
	t.Helper()
	b, err := bloc.New(red, cycle,
		bloc.WithName(name),
		bloc.WithClock(func() time.Time { return fixedTime }),
	)
	require.NoError(t, err)
	return b
}

func TestWriteYAML(t *testing.T) {
	b := newLights(t, "crossing")
	require.NoError(t, b.Submit(tick{}))

	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.YAML, b.Snapshot()))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, "crossing", doc["name"])
	require.Equal(t, "green", doc["state"])
	require.Equal(t, 1, doc["events"])
	require.Equal(t, 1, doc["changes"])
	require.Equal(t, false, doc["disposed"])
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, enc := range []export.Encoder{export.YAML, export.JSON} {
		t.Run(enc.Ext(), func(t *testing.T) {
			b := newLights(t, "rt")
			b.OnEvent(func(tick) error { return nil })
			require.NoError(t, b.Submit(tick{}))
			require.NoError(t, b.Submit(tick{}))

			var buf bytes.Buffer
			require.NoError(t, export.Write(&buf, enc, b.Snapshot()))
			got, err := export.Read[light](&buf, enc)
			require.NoError(t, err)
			require.Equal(t, b.Snapshot(), got)
		})
	}
}

func TestReadInvalid(t *testing.T) {
	_, err := export.Read[light](bytes.NewBufferString("{not json"), export.JSON)
	require.ErrorContains(t, err, "json unmarshal")

	_, err = export.Read[light](bytes.NewBufferString("state: [unterminated"), export.YAML)
	require.ErrorContains(t, err, "yaml unmarshal")
}

func TestDirSaveLoad(t *testing.T) {
	dir := t.TempDir()
	d, err := export.NewDir(dir, export.YAML)
	require.NoError(t, err)

	b := newLights(t, "main-street")
	require.NoError(t, b.Submit(tick{}))
	ctx := context.Background()
	require.NoError(t, export.Save(ctx, d, b.Snapshot()))

	_, err = os.Stat(filepath.Join(dir, "main-street.yaml"))
	require.NoError(t, err)

	// Saving again overwrites the previous snapshot.
	require.NoError(t, b.Submit(tick{}))
	require.NoError(t, export.Save(ctx, d, b.Snapshot()))

	got, err := export.Load[light](ctx, d, "main-street")
	require.NoError(t, err)
	require.Equal(t, yellow, got.State)
	require.Equal(t, uint64(2), got.Changes)
}

func TestDirLoadNonExistent(t *testing.T) {
	d, err := export.NewDir(t.TempDir(), export.JSON)
	require.NoError(t, err)

	_, err = export.Load[light](context.Background(), d, "missing")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDirInvalidName(t *testing.T) {
	d, err := export.NewDir(t.TempDir(), nil)
	require.NoError(t, err)

	for _, name := range []string{"", ".", "..", "a/b", "../escape"} {
		_, err := d.Path(name)
		require.ErrorIs(t, err, export.ErrInvalidName, name)
	}
	p, err := d.Path("ok")
	require.NoError(t, err)
	require.Equal(t, "ok.yaml", filepath.Base(p))
}

func TestDirCancelledContext(t *testing.T) {
	d, err := export.NewDir(t.TempDir(), export.YAML)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := newLights(t, "cancelled")
	require.ErrorIs(t, export.Save(ctx, d, b.Snapshot()), context.Canceled)
	_, err = export.Load[light](ctx, d, "cancelled")
	require.ErrorIs(t, err, context.Canceled)
}

func TestObserverSavesOnChange(t *testing.T) {
	d, err := export.NewDir(t.TempDir(), export.JSON)
	require.NoError(t, err)

	b := newLights(t, "observed")
	b.OnStateChange(export.Observer(b, d))

	ctx := context.Background()
	_, err = export.Load[light](ctx, d, "observed")
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, b.Submit(tick{}))
	got, err := export.Load[light](ctx, d, "observed")
	require.NoError(t, err)
	require.Equal(t, green, got.State)
}

func TestObserverSaveFailure(t *testing.T) {
	root := t.TempDir()
	d, err := export.NewDir(filepath.Join(root, "snaps"), export.YAML)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "snaps")))

	b := newLights(t, "broken")
	b.OnStateChange(export.Observer(b, d))

	err = b.Submit(tick{})
	var oerr *bloc.ObserverError
	require.True(t, errors.As(err, &oerr))
	require.Equal(t, bloc.ChannelStateChange, oerr.Channel)
	require.Equal(t, green, b.State())
}
