package checkpoint

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/google/uuid"

	"hfharvest/pkg/logger"
	"hfharvest/pkg/record"
)

// partPattern matches part filenames and captures the sequence index
var partPattern = regexp.MustCompile(`_part_(\d+)\.jsonl$`)

// PartName builds the filename for a batch part
func PartName(prefix string, index int) string {
	return fmt.Sprintf("%s_part_%06d.jsonl", prefix, index)
}

// DefaultPrefix returns the producer prefix distinguishing this process's
// parts from those of harvesters on other machines: user@host, matching
// the original layout. Two processes started concurrently on the same
// machine share this prefix and can race on sequence numbering; use
// UniquePrefix to rule that out.
func DefaultPrefix() string {
	username := "unknown"
	if u, err := user.Current(); err == nil && u.Username != "" {
		username = u.Username
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return username + "@" + host
}

// UniquePrefix appends a short random fragment to a producer prefix so
// that concurrently started processes can never collide on part names.
func UniquePrefix(base string) string {
	return base + "-" + uuid.NewString()[:8]
}

// Writer buffers completed records and flushes them as immutable batch
// part files. The next sequence index is computed once from the files
// already present for this prefix and then incremented purely in memory;
// the directory is never re-scanned mid-run.
//
// Writer is not safe for concurrent use. The coordinator is the single
// goroutine that feeds it.
type Writer struct {
	dir       string
	prefix    string
	batchSize int
	nextIndex int
	buffer    []record.Record
	logger    logger.Logger
}

// NewWriter creates a Writer for the given parts directory, creating the
// directory if needed and scanning it for the highest existing index under
// the prefix.
func NewWriter(dir, prefix string, batchSize int, log logger.Logger) (*Writer, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if batchSize <= 0 {
		batchSize = 2000
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parts directory: %w", err)
	}

	next, err := nextPartIndex(dir, prefix)
	if err != nil {
		return nil, err
	}

	log.InfoWithFields("checkpoint writer ready", map[string]interface{}{
		"dir":        dir,
		"prefix":     prefix,
		"next_index": next,
		"batch_size": batchSize,
	})

	return &Writer{
		dir:       dir,
		prefix:    prefix,
		batchSize: batchSize,
		nextIndex: next,
		buffer:    make([]record.Record, 0, batchSize),
		logger:    log,
	}, nil
}

// nextPartIndex returns one more than the highest index present for the
// prefix, or 1 when the prefix has no parts yet
func nextPartIndex(dir, prefix string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list parts directory: %w", err)
	}

	max := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
			continue
		}
		m := partPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if idx > max {
			max = idx
		}
	}
	return max + 1, nil
}

// Add appends a record to the buffer, flushing a new part once the buffer
// reaches the batch size
func (w *Writer) Add(rec record.Record) error {
	w.buffer = append(w.buffer, rec)
	if len(w.buffer) >= w.batchSize {
		return w.Flush()
	}
	return nil
}

// Flush writes the buffered records as the next batch part and clears the
// buffer. An empty buffer is a no-op.
func (w *Writer) Flush() error {
	if len(w.buffer) == 0 {
		return nil
	}

	path := filepath.Join(w.dir, PartName(w.prefix, w.nextIndex))
	if err := record.WriteFile(path, w.buffer); err != nil {
		return fmt.Errorf("failed to write part: %w", err)
	}

	w.logger.InfoWithFields("checkpoint part written", map[string]interface{}{
		"path": path,
		"rows": len(w.buffer),
	})

	w.nextIndex++
	w.buffer = w.buffer[:0]
	return nil
}

// Buffered returns the number of records awaiting flush
func (w *Writer) Buffered() int {
	return len(w.buffer)
}

// NextIndex returns the sequence index the next flush will use
func (w *Writer) NextIndex() int {
	return w.nextIndex
}
