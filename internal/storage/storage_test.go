package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStoreSave(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	content := []byte("jpeg bytes go here")
	saved, err := s.Save("label.jpg", bytes.NewReader(content))
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), saved.Size)
	require.Equal(t, ".jpg", filepath.Ext(saved.Path))

	onDisk, err := os.ReadFile(saved.Path)
	require.NoError(t, err)
	require.Equal(t, content, onDisk)

	sum := sha256.Sum256(content)
	require.Equal(t, hex.EncodeToString(sum[:]), saved.SHA256)
}

func TestLocalStoreHashStable(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	content := []byte("identical invoice bytes")
	a, err := s.Save("invoice-a.png", bytes.NewReader(content))
	require.NoError(t, err)
	b, err := s.Save("invoice-b.png", bytes.NewReader(content))
	require.NoError(t, err)

	// Identical content hashes identically even under different names;
	// duplicate detection depends on this.
	require.Equal(t, a.SHA256, b.SHA256)
	require.NotEqual(t, a.Path, b.Path)
}

func TestLocalStoreRejectsOversize(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	require.NoError(t, err)

	big := strings.NewReader(strings.Repeat("x", MaxFileSize+1))
	_, err = s.Save("huge.jpg", big)
	require.Error(t, err)

	// The partial file is cleaned up.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestAllowedMimeType(t *testing.T) {
	require.True(t, AllowedMimeType("image/jpeg"))
	require.True(t, AllowedMimeType(" IMAGE/PNG "))
	require.True(t, AllowedMimeType("image/heic"))
	require.False(t, AllowedMimeType("application/pdf"))
	require.False(t, AllowedMimeType(""))
}
