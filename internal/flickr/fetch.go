package flickr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"time"

	_ "golang.org/x/image/webp"

	"codeberg.org/snonux/flickfinder/internal/metrics"
)

// FetchImage downloads the image behind url and checks that it decodes
// as an image. Oversized bodies and non-image content are failures.
func (c *Client) FetchImage(ctx context.Context, url string) (data []byte, err error) {
	started := time.Now()
	status := "error"
	defer func() { metrics.ObserveCall(metrics.APIImage, status, started) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create download request: %w", ErrImageFetch, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download failed: %w", ErrImageFetch, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger(ctx).Warn().Err(cerr).Msg("close image body failed")
		}
	}()

	status = strconv.Itoa(resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download failed with status %d", ErrImageFetch, resp.StatusCode)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, c.maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading image: %w", ErrImageFetch, err)
	}
	if int64(len(data)) > c.maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds maximum size of %d bytes", ErrImageFetch, c.maxImageBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: content is not an image: %w", ErrImageFetch, err)
	}

	c.logger(ctx).Debug().
		Str("format", format).
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Int("bytes", len(data)).
		Msg("downloaded image")
	return data, nil
}
