package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPacksParagraphs(t *testing.T) {
	text := "first paragraph\n\nsecond paragraph\n\nthird paragraph"

	chunks := Split(text, 40)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first paragraph\n\nsecond paragraph", chunks[0])
	assert.Equal(t, "third paragraph", chunks[1])
}

func TestSplitKeepsLongParagraphWhole(t *testing.T) {
	long := strings.Repeat("word ", 100)
	chunks := Split("short\n\n"+long, 50)

	require.Len(t, chunks, 2)
	assert.Equal(t, "short", chunks[0])
	assert.Equal(t, strings.TrimSpace(long), chunks[1])
}

func TestSplitEmptyInput(t *testing.T) {
	assert.Nil(t, Split("", 100))
	assert.Nil(t, Split("\n\n\n\n", 100))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "daily"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "daily", "a.md"),
		[]byte("Trello sync notes.\n\nSecond paragraph."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"),
		[]byte("Docker rebuild log."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.json"),
		[]byte("{}"), 0o644))

	chunks, err := LoadDir(dir, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	// Lexical path order: b.txt before daily/a.md.
	assert.Equal(t, "b.txt#0", chunks[0].ID)
	assert.Equal(t, "b.txt", chunks[0].Source)
	assert.Equal(t, "daily/a.md#0", chunks[1].ID)
	assert.Contains(t, chunks[1].Text, "Trello sync notes.")
}

func TestLoadDirEmpty(t *testing.T) {
	_, err := LoadDir(t.TempDir(), 0)
	assert.Error(t, err)
}
