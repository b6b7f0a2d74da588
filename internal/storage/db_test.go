package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"docucontrol/internal"
	"docucontrol/internal/util"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ledger", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUpsertEmailKeepsLedgerStatus(t *testing.T) {
	db := openTestDB(t)

	row, err := db.UpsertEmail("imap", "<m1@tr>", "Return", "egesdoc@grupotr.es", "2024-01-05T13:45:00Z", "abc", "/raw/abc.eml", EmailFetched)
	require.NoError(t, err)
	require.Equal(t, EmailFetched, row.Status)
	require.Equal(t, "", row.Vendor)

	require.NoError(t, db.UpdateEmailStatus(row.ID, EmailProcessed, "TR"))

	again, err := db.UpsertEmail("imap", "<m1@tr>", "Return (fwd)", "egesdoc@grupotr.es", "2024-01-05T13:45:00Z", "abc", "/raw/abc.eml", EmailFetched)
	require.NoError(t, err)
	require.Equal(t, row.ID, again.ID)
	require.Equal(t, EmailProcessed, again.Status)
	require.Equal(t, "TR", again.Vendor)
	require.Equal(t, "Return (fwd)", again.Subject)

	pending, err := db.ListEmailsByStatus(EmailFetched, 10)
	require.NoError(t, err)
	require.Empty(t, pending)

	missing, err := db.GetEmailByProviderMessageID("gmail", "<m1@tr>")
	require.NoError(t, err)
	require.Nil(t, missing)
	_, err = db.MustEmailByProviderMessageID("gmail", "<m1@tr>")
	require.Error(t, err)
}

func TestReplaceReturnsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	email, err := db.UpsertEmail("gmail", "g-1", "GAIA", "gaia-tpplm-prod@ten.com", "", "h", "/raw/h.eml", EmailFetched)
	require.NoError(t, err)

	date := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	rows := []internal.DocumentRow{
		{
			OrderNumber: util.StringPtr("P-24/091"),
			Supplier:    internal.DefaultSupplier,
			Client:      "TECHNIP/SYNKEDIA",
			Material:    util.StringPtr("CAUDAL"),
			InternalDoc: util.StringPtr("214726C-24-091-DWG-0001"),
			Status:      internal.StatusMinorComments,
			DocType:     internal.DocTypeDrawings,
			Critical:    internal.CriticalYes,
			Date:        date,
		},
		{Supplier: internal.DefaultSupplier},
	}
	require.NoError(t, db.ReplaceReturns(email.ID, "GAIA", rows))
	require.NoError(t, db.ReplaceReturns(email.ID, "GAIA", rows))

	logged, err := db.ListReturns("GAIA")
	require.NoError(t, err)
	require.Len(t, logged, 2)
	require.Equal(t, email.ID, logged[0].EmailID)
	require.Equal(t, "P-24/091", util.Deref(logged[0].Row.OrderNumber))
	require.Equal(t, internal.StatusMinorComments, logged[0].Row.Status)
	require.Equal(t, internal.DocTypeDrawings, logged[0].Row.DocType)
	require.True(t, date.Equal(logged[0].Row.Date))
	require.Nil(t, logged[1].Row.OrderNumber)
	require.True(t, logged[1].Row.Date.IsZero())

	other, err := db.ListReturns("TR")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestReportRunsAndMetadata(t *testing.T) {
	db := openTestDB(t)
	ref := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	run := internal.ReportRun{ID: uuid.NewString(), Kind: "monitoring", ReferenceDate: ref, OutputPath: "/out/m.xlsx", Rows: 12}
	require.NoError(t, db.InsertReportRun(run))

	runs, err := db.ListReportRuns("monitoring", 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, run, runs[0])

	value, err := db.GetMetadata("lastPoll")
	require.NoError(t, err)
	require.Nil(t, value)
	require.NoError(t, db.SetMetadata("lastPoll", "a"))
	require.NoError(t, db.SetMetadata("lastPoll", "b"))
	value, err = db.GetMetadata("lastPoll")
	require.NoError(t, err)
	require.Equal(t, "b", *value)
}
