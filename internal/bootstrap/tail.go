package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/messaging"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// TailAudit follows audit entries published on the stream and prints one
// line per entry until ctx is cancelled.
func TailAudit(ctx context.Context, cfg config.Config, w io.Writer) error {
	log, err := BuildLogger(cfg)
	if err != nil {
		return err
	}

	client, err := messaging.NewNATS(ctx, cfg.NATS)
	if err != nil {
		return err
	}
	if client == nil {
		return errors.New("nats url is required")
	}
	defer client.Close()

	js := client.JetStream()
	if js == nil {
		return errors.New("jetstream not initialized")
	}
	if err := ensureConsumer(ctx, cfg.NATS, js); err != nil {
		return fmt.Errorf("consumer config: %w", err)
	}

	log.Infof("audit-tail: listening on %s (durable=%s)", cfg.NATS.AuditSubject, cfg.NATS.ConsumerDurable)
	sub, err := js.PullSubscribe(
		cfg.NATS.AuditSubject,
		cfg.NATS.ConsumerDurable,
		nats.Bind(cfg.NATS.Stream, cfg.NATS.ConsumerDurable),
	)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msgs, err := sub.Fetch(50, nats.MaxWait(2*time.Second))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			log.WithError(err).Warn("audit-tail: fetch failed")
			continue
		}
		for _, msg := range msgs {
			handleAuditMsg(w, msg, log)
		}
	}
}

func handleAuditMsg(w io.Writer, msg *nats.Msg, log *logrus.Logger) {
	var entry entity.AuditEntry
	if err := json.Unmarshal(msg.Data, &entry); err != nil {
		log.WithError(err).Warn("audit-tail: undecodable message dropped")
		_ = msg.Term()
		return
	}
	fmt.Fprintln(w, FormatAuditLine(entry))
	_ = msg.Ack()
}

func FormatAuditLine(e entity.AuditEntry) string {
	user := e.UserName
	if user == "" {
		user = "-"
	}
	return fmt.Sprintf("%s #%d %-13s %-12s %-20s %s",
		e.Timestamp.UTC().Format(time.RFC3339), e.ID, e.Action, e.Module, user, e.Description)
}

func ensureConsumer(ctx context.Context, cfg config.NATS, js nats.JetStreamContext) error {
	if cfg.Stream == "" {
		return errors.New("nats stream is required")
	}
	if cfg.ConsumerDurable == "" {
		return errors.New("nats consumer durable is required")
	}

	info, err := js.ConsumerInfo(cfg.Stream, cfg.ConsumerDurable, nats.Context(ctx))
	if err != nil && !errors.Is(err, nats.ErrConsumerNotFound) {
		return err
	}
	if info != nil {
		if info.Config.FilterSubject == cfg.AuditSubject {
			return nil
		}
		if err := js.DeleteConsumer(cfg.Stream, cfg.ConsumerDurable, nats.Context(ctx)); err != nil {
			return err
		}
	}

	_, err = js.AddConsumer(cfg.Stream, &nats.ConsumerConfig{
		Durable:       cfg.ConsumerDurable,
		AckPolicy:     nats.AckExplicitPolicy,
		AckWait:       cfg.AckWait,
		MaxAckPending: cfg.MaxAckPending,
		FilterSubject: cfg.AuditSubject,
		DeliverPolicy: nats.DeliverNewPolicy,
	}, nats.Context(ctx))
	return err
}
