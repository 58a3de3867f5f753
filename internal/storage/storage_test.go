package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageKey(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

	key, ct, err := ImageKey("sehitlik-berlin", "Front View (1).JPG", now)
	require.NoError(t, err)
	assert.Equal(t, "mosques/sehitlik-berlin/Front_View_1_20250301_123000.jpg", key)
	assert.Equal(t, "image/jpeg", ct)

	key, _, err = ImageKey("x", "../../???.png", now)
	require.NoError(t, err)
	assert.Equal(t, "mosques/x/image_20250301_123000.png", key)

	_, _, err = ImageKey("x", "malware.exe", now)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLocalStorageSaveImage(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocalStorage(dir, "/uploads/")

	url, err := ls.SaveImage(context.Background(), "mosques/a/img.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/mosques/a/img.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "mosques", "a", "img.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}
