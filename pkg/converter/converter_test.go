package converter

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDevice implements Device interface for testing
type mockDevice struct{}

func (m *mockDevice) Name() string                    { return "Mock Device" }
func (m *mockDevice) ID() string                      { return "mock" }
func (m *mockDevice) FolderName(pkg string) string    { return "Mock " + Title(pkg) }
func (m *mockDevice) MappingFileName(f string) string { return f + ".map" }
func (m *mockDevice) MappingExt() string              { return ".map" }
func (m *mockDevice) FileName(d Descriptor, style string) string {
	return fmt.Sprintf("%s-%s-%s-%s%s", d.Group, d.Type, d.Variation, style, MIDIExt)
}

// writePackage lays out a small package below parent and returns its root
func writePackage(t *testing.T, parent string, data []byte) string {
	t.Helper()
	root := filepath.Join(parent, "000353@UK_DANCE")
	touch(t, filepath.Join(root, "S001@UK DANCE_4#4", "100-A@Grooves", "Variation_01.mid"), data)
	touch(t, filepath.Join(root, "S001@UK DANCE_4#4", "100-A@Grooves", "Variation_02.mid"), data)
	touch(t, filepath.Join(root, "S001@UK DANCE_4#4", "100-B@Fills", "Fill_01.mid"), data)
	return root
}

func checksums(t *testing.T, root string) map[string][32]byte {
	t.Helper()
	sums := make(map[string][32]byte)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sums[path] = sha256.Sum256(data)
		return nil
	})
	require.NoError(t, err)
	return sums
}

func newTestConverter(out, maps string, trace *bytes.Buffer) *Converter {
	return NewWithOptions(&mockDevice{}, nil, Options{OutputDir: out, MappingDir: maps, Trace: trace})
}

func TestConverterNew(t *testing.T) {
	device := &mockDevice{}
	conv := New(device)

	require.NotNil(t, conv)
	assert.Equal(t, device, conv.GetDevice())
	assert.Equal(t, ".", conv.Options().OutputDir)
	assert.Equal(t, ".", conv.Options().MappingDir)
	assert.NotNil(t, conv.Options().Trace)
	assert.NotNil(t, conv.Options().Logger)
	assert.Equal(t, "Fill", conv.Normalizer().Normalize("fills"))
}

func TestConverterSetDevice(t *testing.T) {
	device1 := &mockDevice{}
	device2 := &mockDevice{}

	conv := New(device1)
	assert.Same(t, device1, conv.GetDevice())

	conv.SetDevice(device2)
	assert.Same(t, device2, conv.GetDevice())
}

func TestPlan(t *testing.T) {
	root := writePackage(t, t.TempDir(), []byte("x"))
	out := t.TempDir()
	conv := newTestConverter(out, t.TempDir(), &bytes.Buffer{})

	plan, err := conv.Plan(root, "Electronic")
	require.NoError(t, err)

	assert.Equal(t, "Mock Uk Dance", plan.Folder)
	require.Len(t, plan.Entries, 3)

	names := make([]string, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		assert.Equal(t, filepath.Join(out, "Mock Uk Dance"), e.DestDir)
		names = append(names, e.DestName)
	}
	assert.Equal(t, []string{
		"A-Groove-01-Electronic.mid",
		"A-Groove-02-Electronic.mid",
		"B-Fill-01-Electronic.mid",
	}, names)

	_, err = os.Stat(filepath.Join(out, "Mock Uk Dance"))
	assert.ErrorIs(t, err, os.ErrNotExist, "Plan must not write anything")
}

func TestRun(t *testing.T) {
	root := writePackage(t, t.TempDir(), []byte("groove"))
	out := t.TempDir()
	var trace bytes.Buffer
	conv := newTestConverter(out, t.TempDir(), &trace)

	res, err := conv.Run(context.Background(), root, "Electronic")
	require.NoError(t, err)

	dest := filepath.Join(out, "Mock Uk Dance")
	assert.Equal(t, 3, res.Files)
	assert.Equal(t, []string{dest}, res.Dirs)
	assert.Empty(t, res.MappingSource)
	assert.Empty(t, res.MappingDest)

	for _, name := range []string{"A-Groove-01-Electronic.mid", "A-Groove-02-Electronic.mid", "B-Fill-01-Electronic.mid"} {
		data, err := os.ReadFile(filepath.Join(dest, name))
		require.NoError(t, err, name)
		assert.Equal(t, "groove", string(data))
	}

	lines := strings.Split(strings.TrimSpace(trace.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"UK DANCE", "Uk Dance", "4#4", "A", "Groove", "01"`)
	assert.Equal(t, "[]", lines[3])
}

func TestRunIsIdempotent(t *testing.T) {
	root := writePackage(t, t.TempDir(), []byte("groove"))
	out := t.TempDir()
	conv := newTestConverter(out, t.TempDir(), &bytes.Buffer{})

	_, err := conv.Run(context.Background(), root, "Funk")
	require.NoError(t, err)
	first := checksums(t, out)

	_, err = conv.Run(context.Background(), root, "Funk")
	require.NoError(t, err)
	assert.Equal(t, first, checksums(t, out))
}

func TestRunOverwritesExisting(t *testing.T) {
	root := writePackage(t, t.TempDir(), []byte("new"))
	out := t.TempDir()
	stale := filepath.Join(out, "Mock Uk Dance", "A-Groove-01-Funk.mid")
	touch(t, stale, []byte("old content that is longer"))

	_, err := newTestConverter(out, t.TempDir(), &bytes.Buffer{}).Run(context.Background(), root, "Funk")
	require.NoError(t, err)

	data, err := os.ReadFile(stale)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestRunLeavesSourcesUntouched(t *testing.T) {
	root := writePackage(t, t.TempDir(), []byte("groove"))
	before := checksums(t, root)

	_, err := newTestConverter(t.TempDir(), t.TempDir(), &bytes.Buffer{}).Run(context.Background(), root, "Funk")
	require.NoError(t, err)

	assert.Equal(t, before, checksums(t, root))
}

func TestRunCopiesFirstMappingFile(t *testing.T) {
	root := writePackage(t, t.TempDir(), []byte("groove"))
	out := t.TempDir()
	maps := t.TempDir()
	touch(t, filepath.Join(maps, "b.map"), []byte("second"))
	touch(t, filepath.Join(maps, "a.map"), []byte("first"))

	var trace bytes.Buffer
	res, err := newTestConverter(out, maps, &trace).Run(context.Background(), root, "Funk")
	require.NoError(t, err)

	want := filepath.Join(out, "Mock Uk Dance", "Mock Uk Dance.map")
	assert.Equal(t, filepath.Join(maps, "a.map"), res.MappingSource)
	assert.Equal(t, want, res.MappingDest)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
	assert.Contains(t, trace.String(), "a.map")
}

func TestRunFollowsSymlinkedSources(t *testing.T) {
	store := t.TempDir()
	touch(t, filepath.Join(store, "groove.mid"), []byte("groove"))
	touch(t, filepath.Join(store, "EZD3.map"), []byte("map"))

	root := filepath.Join(t.TempDir(), "000334@FUNK")
	tempo := filepath.Join(root, "S001@Straight_4#4", "96-A@Grooves")
	require.NoError(t, os.MkdirAll(tempo, 0755))
	require.NoError(t, os.Symlink(filepath.Join(store, "groove.mid"), filepath.Join(tempo, "Variation_01.mid")))

	maps := t.TempDir()
	require.NoError(t, os.Symlink(filepath.Join(store, "EZD3.map"), filepath.Join(maps, "EZD3.map")))

	out := t.TempDir()
	res, err := newTestConverter(out, maps, &bytes.Buffer{}).Run(context.Background(), root, "Funk")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Files)

	data, err := os.ReadFile(filepath.Join(out, "Mock Funk", "A-Groove-01-Funk.mid"))
	require.NoError(t, err)
	assert.Equal(t, "groove", string(data))

	info, err := os.Lstat(res.MappingDest)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular(), "mapping should be copied, not linked")
	data, err = os.ReadFile(res.MappingDest)
	require.NoError(t, err)
	assert.Equal(t, "map", string(data))
}

func TestRunMappingFileWithoutMIDI(t *testing.T) {
	root := filepath.Join(t.TempDir(), "000334@FUNK")
	require.NoError(t, os.MkdirAll(root, 0755))
	out := t.TempDir()
	maps := t.TempDir()
	touch(t, filepath.Join(maps, "ezd.map"), []byte("map"))

	res, err := newTestConverter(out, maps, &bytes.Buffer{}).Run(context.Background(), root, "Funk")
	require.NoError(t, err)

	assert.Zero(t, res.Files)
	assert.FileExists(t, filepath.Join(out, "Mock Funk", "Mock Funk.map"))
}

func TestRunMalformedLeafAbortsBeforeCopy(t *testing.T) {
	root := writePackage(t, t.TempDir(), []byte("groove"))
	touch(t, filepath.Join(root, "S001@UK DANCE_4#4", "100-B@Fills", "VariationFoo.mid"), nil)
	out := t.TempDir()

	res, err := newTestConverter(out, t.TempDir(), &bytes.Buffer{}).Run(context.Background(), root, "Funk")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoVariationNumber)
	assert.ErrorIs(t, err, ErrMalformedPath)

	_, statErr := os.Stat(filepath.Join(out, "Mock Uk Dance"))
	assert.ErrorIs(t, statErr, os.ErrNotExist, "no file may be copied when any path is malformed")
}

func TestRunBadPackageFolder(t *testing.T) {
	root := filepath.Join(t.TempDir(), "FUNK")
	require.NoError(t, os.MkdirAll(root, 0755))

	_, err := newTestConverter(t.TempDir(), t.TempDir(), &bytes.Buffer{}).Run(context.Background(), root, "Funk")
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, StagePackage, de.Stage)
}

func TestRunMissingPackage(t *testing.T) {
	root := filepath.Join(t.TempDir(), "000334@FUNK")
	_, err := newTestConverter(t.TempDir(), t.TempDir(), &bytes.Buffer{}).Run(context.Background(), root, "Funk")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunDryRun(t *testing.T) {
	root := writePackage(t, t.TempDir(), []byte("groove"))
	out := t.TempDir()
	maps := t.TempDir()
	touch(t, filepath.Join(maps, "a.map"), nil)

	var trace bytes.Buffer
	conv := NewWithOptions(&mockDevice{}, nil, Options{OutputDir: out, MappingDir: maps, DryRun: true, Trace: &trace})
	res, err := conv.Run(context.Background(), root, "Funk")
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Zero(t, res.Files)
	assert.Empty(t, res.Dirs)
	assert.Contains(t, trace.String(), "  -> "+filepath.Join(out, "Mock Uk Dance", "A-Groove-01-Funk.mid"))
	assert.Contains(t, trace.String(), "  -> "+filepath.Join(out, "Mock Uk Dance", "Mock Uk Dance.map"))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunVerify(t *testing.T) {
	out := t.TempDir()
	conv := NewWithOptions(&mockDevice{}, nil, Options{OutputDir: out, MappingDir: t.TempDir(), Verify: true, Trace: &bytes.Buffer{}})

	good := writePackage(t, t.TempDir(), testSMF(t))
	res, err := conv.Run(context.Background(), good, "Funk")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Files)

	bad := writePackage(t, t.TempDir(), []byte("not midi"))
	_, err = conv.Run(context.Background(), bad, "Funk")
	assert.ErrorIs(t, err, ErrInvalidMIDI)
}

func TestRunCanceled(t *testing.T) {
	root := writePackage(t, t.TempDir(), []byte("groove"))
	out := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestConverter(out, t.TempDir(), &bytes.Buffer{}).Run(ctx, root, "Funk")
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Zero(t, res.Files)
}

func TestRunRelativePackagePath(t *testing.T) {
	parent := t.TempDir()
	writePackage(t, parent, []byte("groove"))
	touch(t, filepath.Join(parent, "ezd.map"), []byte("map"))
	t.Chdir(parent)

	res, err := NewWithOptions(&mockDevice{}, nil, Options{Trace: &bytes.Buffer{}}).
		Run(context.Background(), "000353@UK_DANCE", "Funk")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Files)
	assert.FileExists(t, filepath.Join(parent, "Mock Uk Dance", "A-Groove-01-Funk.mid"))
	assert.FileExists(t, filepath.Join(parent, "Mock Uk Dance", "Mock Uk Dance.map"))
}

func TestDescriptorString(t *testing.T) {
	d := Descriptor{
		SourcePath: "a.mid",
		TempoLabel: "100",
		Package:    "UK DANCE",
		Groove:     "Uk Dance",
		Signature:  "4#4",
		Group:      "A",
		Type:       "Groove",
		Variation:  "01",
	}
	assert.Equal(t, `("a.mid", "100", "UK DANCE", "Uk Dance", "4#4", "A", "Groove", "01")`, d.String())
}
