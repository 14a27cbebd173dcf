package checkpoint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hfharvest/pkg/logger"
	"hfharvest/pkg/record"
)

func TestPartName(t *testing.T) {
	assert.Equal(t, "me@host_part_000001.jsonl", PartName("me@host", 1))
	assert.Equal(t, "me@host_part_000042.jsonl", PartName("me@host", 42))
}

func TestNewWriterStartsAtOne(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "me@host", 10, logger.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, w.NextIndex())
}

func TestNewWriterResumesFromHighestIndex(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"me@host_part_000001.jsonl",
		"me@host_part_000007.jsonl",
		"me@host_part_000003.jsonl",
		"other@host_part_000099.jsonl", // different prefix, ignored
		"unrelated.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0644))
	}

	w, err := NewWriter(dir, "me@host", 10, logger.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, 8, w.NextIndex())
}

func TestAddFlushesAtBatchSize(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "me@host", 2, logger.NewTestLogger())
	require.NoError(t, err)

	require.NoError(t, w.Add(record.OK("a", nil)))
	assert.Equal(t, 1, w.Buffered())

	require.NoError(t, w.Add(record.OK("b", nil)))
	assert.Equal(t, 0, w.Buffered(), "buffer clears after automatic flush")
	assert.Equal(t, 2, w.NextIndex())

	records, err := record.ReadFile(filepath.Join(dir, "me@host_part_000001.jsonl"))
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
}

func TestFlushEmptyBufferIsNoOp(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "me@host", 10, logger.NewTestLogger())
	require.NoError(t, err)

	require.NoError(t, w.Flush())
	assert.Equal(t, 1, w.NextIndex())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSequenceIncrementsInMemoryOnly(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "me@host", 1, logger.NewTestLogger())
	require.NoError(t, err)

	require.NoError(t, w.Add(record.OK("a", nil)))
	require.NoError(t, w.Add(record.OK("b", nil)))
	require.NoError(t, w.Add(record.OK("c", nil)))

	for i, name := range []string{
		"me@host_part_000001.jsonl",
		"me@host_part_000002.jsonl",
		"me@host_part_000003.jsonl",
	} {
		records, err := record.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, "part %d", i+1)
		assert.Len(t, records, 1)
	}
}

func TestNewWriterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "parts")
	_, err := NewWriter(dir, "me@host", 10, logger.NewTestLogger())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestUniquePrefix(t *testing.T) {
	a := UniquePrefix("me@host")
	b := UniquePrefix("me@host")

	assert.True(t, strings.HasPrefix(a, "me@host-"))
	assert.NotEqual(t, a, b)
}

func TestDefaultPrefixShape(t *testing.T) {
	prefix := DefaultPrefix()
	assert.Contains(t, prefix, "@")
	assert.NotContains(t, prefix, " ")
}
