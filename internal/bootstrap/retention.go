package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
)

// RunRetention runs the cleanup scheduler outside the API process. With
// once set it runs a single cycle, writes the report to w and returns.
func RunRetention(ctx context.Context, cfg config.Config, once bool, w io.Writer) error {
	log, err := BuildLogger(cfg)
	if err != nil {
		return err
	}
	app, err := NewContainer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	if !once {
		return app.Scheduler.Run(ctx)
	}

	report := app.Scheduler.RunOnce(ctx)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("retention: %d task(s) failed", n)
	}
	return nil
}
