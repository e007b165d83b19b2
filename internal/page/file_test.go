package page

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.pages")

	pf, err := Create(path, 64)
	require.NoError(t, err)
	defer pf.Close()

	data := bytes.Repeat([]byte{0xAB}, 64)
	id, err := pf.Append(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)
	assert.Equal(t, int64(1), pf.NumPages())

	got, err := pf.ReadPage(id)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestWritePageOverwriteExisting(t *testing.T) {
	dir := t.TempDir()
	pf, err := Create(filepath.Join(dir, "g.pages"), 16)
	require.NoError(t, err)
	defer pf.Close()

	a := bytes.Repeat([]byte{1}, 16)
	b := bytes.Repeat([]byte{2}, 16)
	id, err := pf.Append(a)
	require.NoError(t, err)

	require.NoError(t, pf.WritePage(id, b))
	got, err := pf.ReadPage(id)
	require.NoError(t, err)
	assert.Equal(t, b, got)
	assert.Equal(t, int64(1), pf.NumPages())
}

func TestWritePageRejectsHole(t *testing.T) {
	dir := t.TempDir()
	pf, err := Create(filepath.Join(dir, "g.pages"), 8)
	require.NoError(t, err)
	defer pf.Close()

	err = pf.WritePage(5, bytes.Repeat([]byte{0}, 8))
	assert.Error(t, err)
}

func TestReadPageOutOfRange(t *testing.T) {
	dir := t.TempDir()
	pf, err := Create(filepath.Join(dir, "g.pages"), 8)
	require.NoError(t, err)
	defer pf.Close()

	_, err = pf.ReadPage(0)
	assert.Error(t, err)
}

func TestOpenExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.pages")

	pf, err := Create(path, 32)
	require.NoError(t, err)
	data := bytes.Repeat([]byte{9}, 32)
	_, err = pf.Append(data)
	require.NoError(t, err)
	require.NoError(t, pf.Close())

	reopened, err := Open(path, 32)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, int64(1), reopened.NumPages())

	got, err := reopened.ReadPage(0)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestOpenRejectsMisalignedSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.pages")

	pf, err := Create(path, 32)
	require.NoError(t, err)
	require.NoError(t, pf.Close())

	_, err = Open(path, 20)
	assert.Error(t, err)
}
