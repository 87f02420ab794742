package connect

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// AssetsClient downloads static files of the mapping library.
type AssetsClient struct {
	client *resty.Client
}

func NewAssetsClient(timeout time.Duration) *AssetsClient {
	return &AssetsClient{client: resty.New().SetTimeout(timeout)}
}

// Fetch returns the body and content type of the asset at url.
func (ac *AssetsClient) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := ac.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("fetch asset %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return nil, "", fmt.Errorf("fetch asset %s: status %d", url, resp.StatusCode())
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}
