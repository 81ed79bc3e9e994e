package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/usecase"
)

func PrintAuditStats(ctx context.Context, cfg config.Config, w io.Writer) error {
	log, err := BuildLogger(cfg)
	if err != nil {
		return err
	}
	app, err := NewContainer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	stats, err := app.Retention.Stats(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	writeStats(w, cfg.Retention, stats)
	return nil
}

func writeStats(w io.Writer, cfg config.Retention, s usecase.RetentionStats) {
	fmt.Fprintf(w, "Total de logs:          %d\n", s.Total)
	fmt.Fprintf(w, "Últimas 24h:            %d\n", s.Last24h)
	fmt.Fprintf(w, "Últimos 7 dias:         %d\n", s.Last7d)
	fmt.Fprintf(w, "Logs críticos:          %d\n", s.Critical)
	fmt.Fprintf(w, "Elegíveis para limpeza: %d (retenção %d/%d dias)\n", s.Eligible, cfg.Days, cfg.CriticalDays)
	for _, section := range []struct {
		title   string
		buckets []repository.Bucket
	}{
		{"Ações", s.TopActions},
		{"Módulos", s.TopModules},
		{"Usuários", s.TopUsers},
	} {
		if len(section.buckets) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", section.title)
		for _, b := range section.buckets {
			fmt.Fprintf(w, "  %-24s %d\n", b.Label, b.Total)
		}
	}
}
