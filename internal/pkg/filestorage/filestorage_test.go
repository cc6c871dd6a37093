package filestorage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["avatar"][0]
}

func TestSaveAvatar(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	path, err := storage.SaveAvatar(makeFileHeader(t, "me.PNG", []byte("fake image bytes")))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "http://localhost:8080/uploads/avatars/"), path)
	assert.True(t, strings.HasSuffix(path, ".png"), "extension is lowercased")

	// The file landed in the avatars subdirectory
	stored, err := os.ReadDir(filepath.Join(dir, "avatars"))
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestSaveAvatarRejectsUnsupportedType(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = storage.SaveAvatar(makeFileHeader(t, "payload.exe", []byte("nope")))
	assert.Error(t, err)
}

func TestSaveAvatarRejectsOversize(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	big := bytes.Repeat([]byte("x"), MaxAvatarSize+1)
	_, err = storage.SaveAvatar(makeFileHeader(t, "huge.png", big))
	assert.Error(t, err)
}

func TestSaveAvatarNilHeader(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	path, err := storage.SaveAvatar(nil)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestDeleteFile(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir, "")
	require.NoError(t, err)

	path, err := storage.SaveAvatar(makeFileHeader(t, "me.jpg", []byte("bytes")))
	require.NoError(t, err)

	require.NoError(t, storage.DeleteFile(path))

	stored, err := os.ReadDir(filepath.Join(dir, "avatars"))
	require.NoError(t, err)
	assert.Empty(t, stored)

	// Deleting a missing file is idempotent
	assert.NoError(t, storage.DeleteFile(path))
	assert.NoError(t, storage.DeleteFile(""))
}
