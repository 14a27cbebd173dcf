package fetch

import (
	"context"
	"sort"
	"strings"

	"hfharvest/pkg/hub"
)

// Extractor turns a remote response into the payload fields of a record.
// Each harvest variant (dataset sizes, language tags, task tags, ...)
// supplies its own extractor; the engine is agnostic to the field set.
type Extractor interface {
	// Name identifies the variant, used for logging and CLI selection
	Name() string
	// Extract fetches and flattens the payload for one dataset
	Extract(ctx context.Context, client *hub.Client, dataset string) (map[string]interface{}, error)
	// NullPayload returns the variant's fields as explicit nulls, used for
	// error records so every row shares one schema
	NullPayload() map[string]interface{}
}

// SizeExtractor reports the aggregate dataset size in bytes from the
// datasets-server info endpoint.
type SizeExtractor struct{}

// Name identifies the variant
func (SizeExtractor) Name() string { return "size" }

// NullPayload returns the size field as an explicit null
func (SizeExtractor) NullPayload() map[string]interface{} {
	return map[string]interface{}{"dataset_size_bytes": nil}
}

// Extract fetches dataset_info and aggregates dataset_size. Some datasets
// report a single aggregate field, others report one object per config; in
// the latter case the per-config sizes are summed with missing or
// non-numeric values counted as zero. A zero or absent aggregate is
// reported as null.
func (e SizeExtractor) Extract(ctx context.Context, client *hub.Client, dataset string) (map[string]interface{}, error) {
	info, err := client.DatasetInfo(ctx, dataset)
	if err != nil {
		return nil, err
	}

	var size int64
	if v, ok := info["dataset_size"]; ok {
		size = toInt64(v)
	} else {
		for _, v := range info {
			cfg, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			size += toInt64(cfg["dataset_size"])
		}
	}

	payload := e.NullPayload()
	if size != 0 {
		payload["dataset_size_bytes"] = size
	}
	return payload, nil
}

// toInt64 converts a decoded JSON number, treating anything else as zero
func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

// statsFields maps output columns to the hub metadata fields they expand
var statsFields = []struct {
	column string
	expand string
}{
	{"created_at", "createdAt"},
	{"last_modified", "lastModified"},
	{"downloads_30d", "downloads"},
	{"downloads_all_time", "downloadsAllTime"},
	{"trending_score", "trendingScore"},
	{"likes", "likes"},
	{"used_storage", "usedStorage"},
}

// StatsExtractor reports repository-level statistics from the hub API:
// creation and modification timestamps, 30-day and all-time download
// counts, trending score, likes, and storage use. The request expands
// exactly these fields, nothing more.
type StatsExtractor struct{}

// Name identifies the variant
func (StatsExtractor) Name() string { return "stats" }

// NullPayload returns every statistics field as an explicit null
func (StatsExtractor) NullPayload() map[string]interface{} {
	payload := make(map[string]interface{}, len(statsFields))
	for _, f := range statsFields {
		payload[f.column] = nil
	}
	return payload
}

// Extract fetches the expanded metadata and copies each field into its
// output column. Fields the hub omits stay null; values pass through as
// the remote reports them (timestamps as strings, counts as numbers).
func (e StatsExtractor) Extract(ctx context.Context, client *hub.Client, dataset string) (map[string]interface{}, error) {
	expand := make([]string, len(statsFields))
	for i, f := range statsFields {
		expand[i] = f.expand
	}

	meta, err := client.DatasetMetadata(ctx, dataset, expand)
	if err != nil {
		return nil, err
	}

	payload := e.NullPayload()
	for _, f := range statsFields {
		if v, ok := meta[f.expand]; ok && v != nil {
			payload[f.column] = v
		}
	}
	return payload, nil
}

// TagsExtractor flattens hub tags of the form "<prefix>:<value>" into one
// sorted, deduplicated, semicolon-joined field. It covers the tag-based
// variants: language, modality, region and task harvesting differ only in
// the prefix and output field name.
type TagsExtractor struct {
	// Prefix selects tags, e.g. "language"
	Prefix string
	// Field names the output column, e.g. "languages_final"
	Field string
}

// Name identifies the variant
func (e TagsExtractor) Name() string { return "tags:" + e.Prefix }

// NullPayload returns the tag field as an explicit null
func (e TagsExtractor) NullPayload() map[string]interface{} {
	return map[string]interface{}{e.Field: nil}
}

// Extract fetches the dataset's tags and flattens the matching ones. A
// dataset with no matching tags yields a null field, not an error.
func (e TagsExtractor) Extract(ctx context.Context, client *hub.Client, dataset string) (map[string]interface{}, error) {
	tags, err := client.DatasetTags(ctx, dataset)
	if err != nil {
		return nil, err
	}

	prefix := e.Prefix + ":"
	seen := make(map[string]struct{})
	var values []string
	for _, tag := range tags {
		if !strings.HasPrefix(tag, prefix) {
			continue
		}
		value := tag[len(prefix):]
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	sort.Strings(values)

	payload := e.NullPayload()
	if len(values) > 0 {
		payload[e.Field] = strings.Join(values, ";")
	}
	return payload, nil
}
