package listener

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"docucontrol/internal/config"
	"docucontrol/internal/connectors"
	gmailconnector "docucontrol/internal/connectors/gmail"
	imapconnector "docucontrol/internal/connectors/imap"
	"docucontrol/internal/logger"
	"docucontrol/internal/lookup"
	"docucontrol/internal/mailer"
	"docucontrol/internal/reporting"
	"docucontrol/internal/returns"
	"docucontrol/internal/storage"
)

type Service struct {
	db           *storage.DB
	cfg          config.Config
	returns      *returns.Service
	monitoring   *reporting.MonitoringService
	reclamations *reporting.ReclamationService
	connect      func() (connectors.MailConnector, error)
	Now          func() time.Time

	polling sync.Mutex
}

func NewService(db *storage.DB, cfg config.Config, lt *lookup.Tables, m mailer.Mailer) *Service {
	return &Service{
		db:           db,
		cfg:          cfg,
		returns:      returns.NewService(db, cfg, lt, m),
		monitoring:   reporting.NewMonitoringService(db, cfg, lt),
		reclamations: reporting.NewReclamationService(db, cfg, lt, m),
		connect:      func() (connectors.MailConnector, error) { return Connector(cfg, cfg.MailProvider) },
		Now:          time.Now,
	}
}

// Run polls the mailbox on CRON_MAIL_POLL and builds the monitoring report
// and its reclamations on CRON_MONITORING until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(time.Local),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger.Log))),
	)
	if _, err := c.AddFunc(s.cfg.CronMailPoll, func() { s.logCycle("mail poll", s.PollMail(ctx)) }); err != nil {
		return fmt.Errorf("schedule mail poll %q: %w", s.cfg.CronMailPoll, err)
	}
	if _, err := c.AddFunc(s.cfg.CronMonitoring, func() { s.logCycle("monitoring", s.RunReports(ctx)) }); err != nil {
		return fmt.Errorf("schedule monitoring %q: %w", s.cfg.CronMonitoring, err)
	}

	logger.Log.WithFields(logrus.Fields{"mail_poll": s.cfg.CronMailPoll, "monitoring": s.cfg.CronMonitoring}).Info("listener started")
	s.logCycle("mail poll", s.PollMail(ctx))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Log.Info("listener stopped")
	return nil
}

// PollMail fetches new vendor mail and processes everything pending. A poll
// started while another is running returns at once so no message is
// processed twice.
func (s *Service) PollMail(ctx context.Context) error {
	if !s.polling.TryLock() {
		logger.Log.Warn("mail poll still running, skipped")
		return nil
	}
	defer s.polling.Unlock()

	conn, err := s.connect()
	if err != nil {
		return err
	}
	fetched, err := connectors.NewFetchService(s.db, s.cfg.RawMailDir, conn).FetchAndStore(s.cfg.MailLabel, s.cfg.MailFetchMax)
	if err != nil {
		return err
	}
	res, err := s.returns.ProcessPending(ctx, s.cfg.MailBatchSize, "")
	if err != nil {
		return err
	}
	logger.Log.WithFields(logrus.Fields{
		"provider":  s.cfg.MailProvider,
		"fetched":   fetched.Fetched,
		"stored":    fetched.Stored,
		"processed": res.Processed,
		"skipped":   res.Skipped,
		"failed":    res.Failed,
	}).Info("mail poll done")
	return nil
}

// RunReports writes today's monitoring report and sends its reclamations.
func (s *Service) RunReports(ctx context.Context) error {
	today := s.Now()
	if _, err := s.monitoring.Run(ctx, today); err != nil {
		return err
	}
	_, err := s.reclamations.Generate(ctx, today, true)
	return err
}

func (s *Service) logCycle(name string, err error) {
	if err != nil {
		logger.Log.WithField("job", name).Errorf("listener cycle error: %v", err)
	}
}

// Connector builds the mailbox connector for provider.
func Connector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", provider)
	}
}
