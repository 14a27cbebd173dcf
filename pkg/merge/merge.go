// Package merge consolidates batch parts into the single deduplicated
// output dataset.
package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hfharvest/pkg/logger"
	"hfharvest/pkg/record"
)

// Merge reads every readable part in partsDir plus the prior consolidated
// file at outPath, deduplicates by id keeping the record encountered last
// in enumeration order, sorts by id, and atomically replaces outPath with
// the result. The prior output is enumerated first so fresh parts win over
// stale consolidated rows. Unreadable files are logged and skipped.
//
// Returns the number of rows written. A run with nothing to merge writes
// nothing and returns zero.
func Merge(partsDir, outPath string, log logger.Logger) (int, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	paths := []string{outPath}

	entries, err := os.ReadDir(partsDir)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to list parts directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		paths = append(paths, filepath.Join(partsDir, name))
	}

	// Last write wins: later files in enumeration order overwrite earlier ones
	byID := make(map[string]record.Record)
	for _, path := range paths {
		records, err := record.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			log.WarnWithFields("skipping unreadable file during merge", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		for _, rec := range records {
			byID[rec.ID] = rec
		}
	}

	if len(byID) == 0 {
		log.Info("nothing to merge")
		return 0, nil
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	merged := make([]record.Record, 0, len(ids))
	for _, id := range ids {
		merged = append(merged, byID[id])
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := record.WriteFile(outPath, merged); err != nil {
		return 0, fmt.Errorf("failed to write consolidated output: %w", err)
	}

	log.InfoWithFields("consolidated output written", map[string]interface{}{
		"path": outPath,
		"rows": len(merged),
	})
	return len(merged), nil
}
