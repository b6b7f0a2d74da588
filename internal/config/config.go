package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir        string
	OutputDir      string
	TmpDir         string
	ReturnsDir     string
	MonitoringName string
	ERPFile        string
	ConsultaFile   string
	TagsFile       string

	DBPath     string
	RawMailDir string

	LogLevel  string
	LogFormat string

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	MailProvider  string
	MailLabel     string
	MailFetchMax  int
	MailBatchSize int

	Mailer        string
	MailOutboxDir string
	MailFrom      string

	TRSender     string
	GAIASender   string
	PRODOCSender string

	CronMailPoll   string
	CronMonitoring string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}
	data := filepath.Join(cwd, "data")

	cfg := Config{
		DataDir:        getEnv("DOCUCONTROL_DATA_DIR", filepath.Join(data, "input")),
		OutputDir:      getEnv("DOCUCONTROL_OUTPUT_DIR", filepath.Join(data, "output")),
		TmpDir:         getEnv("DOCUCONTROL_TMP_DIR", filepath.Join(data, "tmp")),
		ReturnsDir:     getEnv("DOCUCONTROL_RETURNS_DIR", filepath.Join(data, "returns")),
		MonitoringName: getEnv("DOCUCONTROL_MONITORING_NAME", "monitoring_report_{date}.xlsx"),
		ERPFile:        getEnv("DOCUCONTROL_ERP_FILE", "data_erp.xlsx"),
		ConsultaFile:   getEnv("DOCUCONTROL_CONSULTA_FILE", "consulta_erp.xlsx"),
		TagsFile:       getEnv("DOCUCONTROL_TAGS_FILE", "data_tags.xlsx"),

		DBPath:     getEnv("DB_PATH", filepath.Join(data, "docucontrol.db")),
		RawMailDir: getEnv("MAIL_RAW_DIR", filepath.Join(data, "raw")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		MailProvider:  getEnv("MAIL_PROVIDER", "imap"),
		MailLabel:     getEnv("MAIL_LABEL", "INBOX"),
		MailFetchMax:  getEnvInt("MAIL_FETCH_MAX", 20),
		MailBatchSize: getEnvInt("MAIL_BATCH_SIZE", 20),

		Mailer:        getEnv("MAILER", "outbox"),
		MailOutboxDir: getEnv("MAIL_OUTBOX_DIR", filepath.Join(data, "outbox")),
		MailFrom:      getEnv("MAIL_FROM", "documentacion@eipsa.es"),

		TRSender:     getEnv("TR_SENDER", "egesdoc@grupotr.es"),
		GAIASender:   getEnv("GAIA_SENDER", "gaia-tpplm-prod@ten.com"),
		PRODOCSender: getEnv("PRODOC_SENDER", "Prodoc.postmaster@woodplc.com"),

		CronMailPoll:   getEnv("CRON_MAIL_POLL", "@every 5m"),
		CronMonitoring: getEnv("CRON_MONITORING", "0 7 * * 1-5"),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// SenderFor returns the notification address of a vendor platform.
func (c Config) SenderFor(vendor string) string {
	switch strings.ToUpper(vendor) {
	case "TR":
		return c.TRSender
	case "GAIA":
		return c.GAIASender
	case "PRODOC":
		return c.PRODOCSender
	}
	return ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
