package productapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
)

// ProbeImage issues a HEAD request on url.
//
// Transport errors are reported on the probe with status 0.
func (c Client) ProbeImage(ctx context.Context, url string) domain.ImageProbe {
	const op = "Client.ProbeImage"
	log := slog.With("op", op, "url", url)

	probe := domain.ImageProbe{URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		probe.Err = err.Error()
		return probe
	}

	res, err := c.hc.Do(req)
	if err != nil {
		log.Warn("image unreachable", "err", err)
		probe.Err = err.Error()
		return probe
	}
	defer closeBody(res.Body)

	probe.StatusCode = res.StatusCode
	probe.Accessible = res.StatusCode >= 200 && res.StatusCode < 300
	probe.ContentType = res.Header.Get("Content-Type")
	probe.CacheStatus = res.Header.Get("Cf-Cache-Status")
	probe.ContentLength = max(res.ContentLength, 0)

	if !probe.Accessible {
		probe.Err = fmt.Sprintf(
			"HTTP %d %s", res.StatusCode, http.StatusText(res.StatusCode),
		)
	}
	return probe
}
