package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Abiads/talentscout/internal/config"
)

// BuildTikaCheck returns a readiness probe against the Tika server's version
// endpoint. A nil config URL still yields a probe so /readyz reports the miss.
func BuildTikaCheck(cfg config.Config) func(ctx context.Context) error {
	hc := &http.Client{Timeout: 2 * time.Second}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.TikaURL+"/version", nil)
		if err != nil {
			return err
		}
		resp, err := hc.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("tika status %d", resp.StatusCode)
		}
		return nil
	}
}
