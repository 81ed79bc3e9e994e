package bootstrap

import (
	"context"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/metrics"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/persistence"
	"github.com/sirupsen/logrus"
)

func openDB(ctx context.Context, cfg config.Config, log *logrus.Logger) (*persistence.DB, error) {
	start := time.Now()
	conn, err := persistence.New(ctx, persistence.Config{
		WriteDSN:        cfg.Database.WriteDSN,
		ReadDSN:         cfg.Database.ReadDSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, err
	}
	log.Infof("bootstrap: db init in %s", time.Since(start))

	pingCtx := ctx
	if cfg.Database.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
		defer cancel()
	}
	if err := conn.Ping(pingCtx); err != nil {
		conn.Close()
		return nil, err
	}
	log.Infof("bootstrap: db ping in %s", time.Since(start))
	return conn, nil
}

// dbHealthReporter keeps the db_up gauge current and logs only when the
// state flips.
func dbHealthReporter(log *logrus.Logger) func(error) {
	up := true
	metrics.DBUp.Set(1)
	return func(err error) {
		if err != nil {
			metrics.DBUp.Set(0)
			if up {
				log.WithError(err).Warn("bootstrap: db health check failed")
			}
			up = false
			return
		}
		metrics.DBUp.Set(1)
		if !up {
			log.Info("bootstrap: db health check recovered")
		}
		up = true
	}
}
