package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/accounts"
	"github.com/cleared-dev/finanza/internal/auditlog"
	"github.com/cleared-dev/finanza/internal/budget"
	"github.com/cleared-dev/finanza/internal/cards"
	"github.com/cleared-dev/finanza/internal/categories"
	"github.com/cleared-dev/finanza/internal/config"
	"github.com/cleared-dev/finanza/internal/events"
	"github.com/cleared-dev/finanza/internal/importer"
	"github.com/cleared-dev/finanza/internal/installments"
	"github.com/cleared-dev/finanza/internal/ledger"
	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/rates"
	"github.com/cleared-dev/finanza/internal/report"
	"github.com/cleared-dev/finanza/internal/rules"
	"github.com/cleared-dev/finanza/internal/storage"
	"github.com/cleared-dev/finanza/internal/taxes"
)

// amqpDialAttempts bounds how long a command waits for the broker.
const amqpDialAttempts = 3

// session is everything a command needs once the project is loaded.
type session struct {
	cfg       *config.Config
	db        *storage.DB
	publisher events.Publisher
	amqp      *events.AMQPClient
	out       io.Writer
	orgID     int64
	userID    int64
}

// run loads the project, opens its database and calls fn. Resources are
// released when fn returns.
func run(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, s *session) error) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Logging.Format = flags.logFormat
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context(), log)

	db, err := storage.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	s := &session{
		cfg:    cfg,
		db:     db,
		out:    cmd.OutOrStdout(),
		orgID:  cfg.Organization.ID,
		userID: cfg.User.ID,
	}
	if _, err := db.Queries().GetOrganization(ctx, s.orgID); err != nil {
		return fmt.Errorf("organization %d from config: %w", s.orgID, err)
	}

	pubs := events.Multi{auditlog.NewSink(cfg.Audit.Dir)}
	if cfg.AMQP.Enabled {
		client, err := events.DialRetry(ctx, cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, amqpDialAttempts)
		if err != nil {
			return err
		}
		defer client.Close()
		s.amqp = client
		pubs = append(pubs, client)
	}
	s.publisher = pubs

	return fn(ctx, s)
}

func (s *session) ledger() *ledger.Service { return ledger.NewService(s.db, s.publisher) }

func (s *session) accounts() *accounts.Service { return accounts.NewService(s.db) }

func (s *session) categories() *categories.Service { return categories.NewService(s.db) }

func (s *session) rules() *rules.Service { return rules.NewService(s.db) }

func (s *session) cards() *cards.Service { return cards.NewService(s.db) }

func (s *session) installments() *installments.Service { return installments.NewService(s.db, nil) }

func (s *session) budgets() *budget.Service { return budget.NewService(s.db) }

func (s *session) reports() *report.Service { return report.NewService(s.db) }

func (s *session) rates() *rates.Service { return rates.NewService(s.db) }

func (s *session) taxes() *taxes.Service { return taxes.NewService(s.db) }

func (s *session) importer() *importer.Service {
	return importer.NewService(s.db, s.ledger(), s.publisher)
}
