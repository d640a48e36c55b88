package processor

import (
	"context"

	"github.com/sells-group/gtin-cli/internal/fetcher"
	"github.com/sells-group/gtin-cli/pkg/cse"
)

// Compile-time interface checks.
var (
	_ cse.Client         = (*StubSearchClient)(nil)
	_ fetcher.PageReader = (*StubPageReader)(nil)
)

// StubSearchClient implements cse.Client with canned snippets for offline
// runs. Every query "finds" the same valid demo barcode.
type StubSearchClient struct{}

// Search implements cse.Client.
func (s *StubSearchClient) Search(_ context.Context, query string, _ int) (*cse.SearchResponse, error) {
	return &cse.SearchResponse{
		Items: []cse.Item{
			{
				Title:   "Offline stub result",
				Link:    "https://example.invalid/" + query,
				Snippet: "EAN barcode: 4006381333931",
			},
		},
	}, nil
}

// StubPageReader implements fetcher.PageReader with empty pages.
type StubPageReader struct{}

// Text implements fetcher.PageReader.
func (s *StubPageReader) Text(_ context.Context, _ string) (string, error) {
	return "", nil
}
