package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// getJSON performs a GET against a provider endpoint and decodes the body,
// translating transport and status failures into classified errors.
func getJSON(ctx context.Context, client *http.Client, provider, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Error{Kind: KindBadRequest, Provider: provider, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Kind:     classifyStatus(resp.StatusCode),
			Provider: provider,
			Err:      fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindDataFormat, Provider: provider, Err: err}
	}
	return nil
}
