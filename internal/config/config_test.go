package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("IMAP_PORT", "143")
	t.Setenv("IMAP_SECURE", "off")
	t.Setenv("MAIL_FETCH_MAX", "not-a-number")
	t.Setenv("GAIA_SENDER", "gaia@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 143, cfg.IMAPPort)
	require.False(t, cfg.IMAPSecure)
	require.Equal(t, 20, cfg.MailFetchMax)
	require.Equal(t, "monitoring_report_{date}.xlsx", cfg.MonitoringName)
	require.Equal(t, "gaia@example.com", cfg.SenderFor("gaia"))
	require.Equal(t, "egesdoc@grupotr.es", cfg.SenderFor("TR"))
	require.Equal(t, "", cfg.SenderFor("other"))
}

func TestRequire(t *testing.T) {
	var cfg Config
	require.Error(t, cfg.Require("IMAP_HOST", "  "))
	require.NoError(t, cfg.Require("IMAP_HOST", "imap.example.com"))
}
