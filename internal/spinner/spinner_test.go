package spinner

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_DrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	stop := Start(&buf, "Resampling")
	time.Sleep(3 * interval)
	stop()

	out := buf.String()
	assert.Contains(t, out, "Resampling")
	assert.Contains(t, out, frames[0])
	assert.True(t, strings.HasSuffix(out, "\r"), "line is cleared on stop")
}

func TestStart_StopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	stop := Start(&buf, "x")
	stop()
	stop()
}

func TestStart_StopBeforeFirstFrame(t *testing.T) {
	var buf bytes.Buffer
	Start(&buf, "quick")()
	assert.Empty(t, buf.String())
}

func TestStartOnTerminal_NotATerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	stop := StartOnTerminal(f, "Resampling")
	time.Sleep(2 * interval)
	stop()

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Empty(t, data)
}
