package utils

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtils_Math(t *testing.T) {
	assert.Equal(t, 2, Min(2, 5))
	assert.Equal(t, -1.5, Min(3.0, -1.5))
	assert.Equal(t, 5, Max(2, 5))
	assert.Equal(t, "b", Max("a", "b"))
	assert.Equal(t, 3, Abs(-3))
	assert.Equal(t, 0.25, Abs(0.25))
	assert.Equal(t, 0.0, Clamp(-0.5, 0.0, 1.0))
	assert.Equal(t, 1.0, Clamp(1.5, 0.0, 1.0))
	assert.Equal(t, 7, Clamp(7, 0, 10))
}

func TestUtils_DecorateText(t *testing.T) {
	assert.Equal(t, SuccessColor+"ok"+DefaultColor, DecorateText("ok", SuccessMessage))
	assert.Equal(t, ErrorColor+"3 failed"+DefaultColor, Decoratef(ErrorMessage, "%d failed", 3))
	assert.Equal(t, "plain", DecorateText("plain", MessageType(42)))
}

func TestUtils_FormatTime(t *testing.T) {
	testCases := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.50s"},
		{2*time.Minute + 3*time.Second, "2m 3.00s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h 2m 3.00s"},
		{26*time.Hour + 4*time.Second, "1d 2h 0m 4.00s"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, FormatTime(tc.d))
	}
}

func TestUtils_DetectContentType(t *testing.T) {
	dir := t.TempDir()

	imgPath := filepath.Join(dir, "face.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, os.WriteFile(imgPath, buf.Bytes(), 0644))

	ctype, err := DetectContentType(imgPath)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ctype)
	assert.True(t, IsImageFile(imgPath))

	txtPath := filepath.Join(dir, "notes.png")
	require.NoError(t, os.WriteFile(txtPath, []byte("not an image"), 0644))
	assert.False(t, IsImageFile(txtPath))

	emptyPath := filepath.Join(dir, "empty.jpg")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0644))
	assert.False(t, IsImageFile(emptyPath))

	assert.False(t, IsImageFile(filepath.Join(dir, "missing.jpg")))
}

func TestUtils_Spinner(t *testing.T) {
	var buf safeBuffer
	s := NewSpinner(&buf, "working", 3, time.Millisecond, false)
	s.Start()
	s.Inc()
	s.Inc()
	time.Sleep(10 * time.Millisecond)
	s.StopMsg = "done"
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "working")
	assert.True(t, strings.HasSuffix(out, "done"))
}

func TestUtils_Logger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "lmprep.log")
	logger, err := NewLogger(LogOptions{Level: "debug", File: logFile})
	require.NoError(t, err)
	logger.Infow("annotations loaded", "kept", 12)
	_ = logger.Sync()

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"annotations loaded"`)
	assert.Contains(t, string(content), `"kept":12`)

	_, err = NewLogger(LogOptions{Level: "verbose"})
	assert.Error(t, err)
}

// safeBuffer is a bytes.Buffer guarded for the spinner goroutine.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
