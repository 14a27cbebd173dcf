package hub

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// InfoBaseURL is the base URL of the datasets-server
	InfoBaseURL = "https://datasets-server.huggingface.co"

	// HubBaseURL is the base URL of the hub API
	HubBaseURL = "https://huggingface.co"

	// InfoEndpoint serves per-dataset info including split sizes
	InfoEndpoint = "/info"

	// DatasetEndpoint serves per-dataset hub metadata including tags
	DatasetEndpoint = "/api/datasets"
)

// InfoURL constructs the datasets-server info URL for a dataset id
func InfoURL(base, dataset string) string {
	params := url.Values{}
	params.Set("dataset", dataset)
	return fmt.Sprintf("%s%s?%s", base, InfoEndpoint, params.Encode())
}

// DatasetURL constructs the hub API URL for a dataset id. Ids contain a
// slash (owner/name) which must survive as a path separator, so each
// segment is escaped independently.
func DatasetURL(base, dataset string) string {
	segments := strings.Split(dataset, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("%s%s/%s", base, DatasetEndpoint, strings.Join(segments, "/"))
}

// DatasetExpandURL constructs the hub API URL for a dataset id with
// expand parameters selecting which metadata fields the response carries
func DatasetExpandURL(base, dataset string, expand []string) string {
	params := url.Values{}
	for _, field := range expand {
		params.Add("expand", field)
	}
	return DatasetURL(base, dataset) + "?" + params.Encode()
}
