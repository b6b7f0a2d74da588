package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docucontrol/internal"
	"docucontrol/internal/config"
	"docucontrol/internal/connectors"
	"docucontrol/internal/listener"
	"docucontrol/internal/logger"
	"docucontrol/internal/lookup"
	"docucontrol/internal/mailer"
	"docucontrol/internal/reporting"
	"docucontrol/internal/returns"
	"docucontrol/internal/storage"
	"docucontrol/internal/util"
)

type app struct {
	cfg    config.Config
	db     *storage.DB
	lookup *lookup.Tables
	logs   io.Closer
}

func (a *app) mailer() (mailer.Mailer, error) {
	return mailer.New(a.cfg)
}

func main() {
	a := &app{lookup: lookup.Default()}

	root := &cobra.Command{
		Use:           "docucontrol",
		Short:         "Document control reports and vendor return processing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			if a.logs, err = logger.Init(cfg); err != nil {
				return err
			}
			a.db, err = storage.Open(cfg.DBPath)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.db != nil {
				_ = a.db.Close()
			}
			if a.logs != nil {
				_ = a.logs.Close()
			}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(
		monitoringCmd(a),
		reclamationsCmd(a),
		ovrCmd(a),
		returnsCmd(a),
		fetchCmd(a),
		listenCmd(a),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	must(root.ExecuteContext(ctx))
}

func monitoringCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "monitoring",
		Short: "Build the monitoring workbook from the ERP extracts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseDate(date)
			if err != nil {
				return err
			}
			path, err := reporting.NewMonitoringService(a.db, a.cfg, a.lookup).Run(cmd.Context(), ref)
			if err != nil {
				return err
			}
			fmt.Printf("monitoring report written: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "reference date dd-mm-yyyy (default today)")
	return cmd
}

func reclamationsCmd(a *app) *cobra.Command {
	var (
		date string
		send bool
	)
	cmd := &cobra.Command{
		Use:   "reclamations",
		Short: "Group overdue sent documents by order and compose the chaser mails",
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseDate(date)
			if err != nil {
				return err
			}
			m, err := a.mailer()
			if err != nil {
				return err
			}
			groups, err := reporting.NewReclamationService(a.db, a.cfg, a.lookup, m).Generate(cmd.Context(), ref, send)
			if err != nil {
				return err
			}
			for _, g := range groups {
				fmt.Printf("%s rows=%d\n", g.Subject, g.Table.Len())
			}
			fmt.Printf("reclamations: %d groups sent=%t\n", len(groups), send)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date of the monitoring report dd-mm-yyyy (default today)")
	cmd.Flags().BoolVar(&send, "send", false, "hand every group to the mailer")
	return cmd
}

func ovrCmd(a *app) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "ovr",
		Short: "Build the OVR revision history report",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := reporting.NewOVRService(a.db, a.cfg)
			var (
				path string
				err  error
			)
			switch strings.ToLower(mode) {
			case "simple":
				path, err = svc.Simple(cmd.Context())
			case "union":
				path, err = svc.Union(cmd.Context())
			default:
				return fmt.Errorf("--mode must be simple or union, got %q", mode)
			}
			if err != nil {
				return err
			}
			fmt.Printf("ovr report written: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "simple", "simple|union")
	return cmd
}

func returnsCmd(a *app) *cobra.Command {
	var (
		vendor string
		file   string
		batch  int
	)
	cmd := &cobra.Command{
		Use:   "returns",
		Short: "Process vendor return notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.mailer()
			if err != nil {
				return err
			}
			svc := returns.NewService(a.db, a.cfg, a.lookup, m)

			var only lookup.Vendor
			if vendor != "" {
				v, ok := svc.Vendor(vendor)
				if !ok {
					return fmt.Errorf("unknown vendor %q", vendor)
				}
				only = v.Name()
			}

			if file != "" {
				row, err := storeFile(a, file)
				if err != nil {
					return err
				}
				out, err := svc.ProcessEmail(cmd.Context(), row)
				if err != nil {
					return err
				}
				if out.Skipped {
					fmt.Printf("%s is not a vendor notification\n", file)
					return nil
				}
				fmt.Printf("processed %s vendor=%s rows=%d summary=%s\n", file, out.Vendor, out.Rows, out.SummaryPath)
				return nil
			}

			if batch <= 0 {
				batch = a.cfg.MailBatchSize
			}
			res, err := svc.ProcessPending(cmd.Context(), batch, only)
			if err != nil {
				return err
			}
			fmt.Printf("returns processed=%d skipped=%d failed=%d rows=%d\n", res.Processed, res.Skipped, res.Failed, res.Rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&vendor, "vendor", "", "tr|gaia|prodoc (default all)")
	cmd.Flags().StringVar(&file, "file", "", "process a saved .eml instead of the pending ledger")
	cmd.Flags().IntVar(&batch, "batch", 0, "max pending messages (default MAIL_BATCH_SIZE)")
	return cmd
}

// storeFile records a saved message in the ledger like a fetched one.
func storeFile(a *app, path string) (internal.EmailRow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return internal.EmailRow{}, err
	}
	msg, err := fileMessage(path, raw)
	if err != nil {
		return internal.EmailRow{}, err
	}
	return connectors.NewMailStoreService(a.db, a.cfg.RawMailDir).Store(msg)
}

func fetchCmd(a *app) *cobra.Command {
	var (
		provider string
		label    string
		max      int
	)
	cmd := &cobra.Command{
		Use:   "mail:fetch",
		Short: "Fetch vendor notifications into the mail ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				provider = a.cfg.MailProvider
			}
			if label == "" {
				label = a.cfg.MailLabel
			}
			if max <= 0 {
				max = a.cfg.MailFetchMax
			}
			conn, err := listener.Connector(a.cfg, provider)
			if err != nil {
				return err
			}
			res, err := connectors.NewFetchService(a.db, a.cfg.RawMailDir, conn).FetchAndStore(label, max)
			if err != nil {
				return err
			}
			fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d pending=%d\n", provider, res.Fetched, res.Stored, res.Pending)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "gmail|imap (default MAIL_PROVIDER)")
	cmd.Flags().StringVar(&label, "label", "", "mailbox or label (default MAIL_LABEL)")
	cmd.Flags().IntVar(&max, "max", 0, "max messages (default MAIL_FETCH_MAX)")
	return cmd
}

func listenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Poll the mailbox and build the daily reports on schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.mailer()
			if err != nil {
				return err
			}
			return listener.NewService(a.db, a.cfg, a.lookup, m).Run(cmd.Context())
		},
	}
}

func parseDate(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Now(), nil
	}
	t, ok := util.ParseDayFirst(value)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date %q, want dd-mm-yyyy", value)
	}
	return t, nil
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
