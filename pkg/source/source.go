package source

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hfharvest/pkg/logger"
	"hfharvest/pkg/record"
)

// Load reads the identifier list: one id per line, UTF-8, blank lines
// dropped, original order preserved.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ids file: %w", err)
	}
	defer file.Close()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ids file: %w", err)
	}

	return ids, nil
}

// Outstanding returns all minus done, preserving the original order of all
func Outstanding(all []string, done map[string]struct{}) []string {
	var todo []string
	for _, id := range all {
		if _, ok := done[id]; !ok {
			todo = append(todo, id)
		}
	}
	return todo
}

// DoneIDs scans every readable batch part plus the consolidated file and
// returns the set of identifiers already recorded. Unreadable or corrupt
// files contribute no ids; they are logged and skipped rather than failing
// the scan. An id counts as done regardless of its recorded status unless
// retryErrors is set, in which case ids whose most recent record is an
// error are treated as outstanding again.
func DoneIDs(partsDir, consolidatedPath string, retryErrors bool, log logger.Logger) map[string]struct{} {
	if log == nil {
		log = logger.GetLogger()
	}

	// Latest status per id across enumeration order: consolidated output
	// first, then parts sorted by name, so fresh parts override old output.
	latest := make(map[string]record.Status)

	paths := []string{}
	if consolidatedPath != "" {
		paths = append(paths, consolidatedPath)
	}
	entries, err := os.ReadDir(partsDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WarnWithFields("failed to list parts directory", map[string]interface{}{
				"dir":   partsDir,
				"error": err.Error(),
			})
		}
	} else {
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
	}

	for _, path := range paths {
		records, err := record.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				// Absent consolidated file on a first run, nothing to report
				continue
			}
			log.WarnWithFields("skipping unreadable checkpoint file", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		for _, rec := range records {
			latest[rec.ID] = rec.Status
		}
	}

	done := make(map[string]struct{}, len(latest))
	for id, status := range latest {
		if retryErrors && status == record.StatusError {
			continue
		}
		done[id] = struct{}{}
	}
	return done
}
