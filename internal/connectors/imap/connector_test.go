package imap

import (
	"strings"
	"testing"

	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/require"
)

func TestFromVendor(t *testing.T) {
	senders := []string{"egesdoc@grupotr.es", "", "Prodoc.postmaster@woodplc.com"}
	require.True(t, fromVendor("TR EGesdoc <EGESDOC@grupotr.es>", senders))
	require.True(t, fromVendor("prodoc.postmaster@woodplc.com", senders))
	require.False(t, fromVendor("someone@example.com", senders))
	require.False(t, fromVendor("", senders))
}

func TestFormatAddresses(t *testing.T) {
	out := formatAddresses([]*imap.Address{
		{PersonalName: "GAIA", MailboxName: "gaia-tpplm-prod", HostName: "ten.com"},
		nil,
		{MailboxName: "egesdoc", HostName: "grupotr.es"},
	})
	require.Equal(t, "GAIA <gaia-tpplm-prod@ten.com>, egesdoc@grupotr.es", out)
}

func TestSearchCriteria(t *testing.T) {
	none := searchCriteria([]string{"", " "})
	require.Equal(t, []string{imap.SeenFlag}, none.WithoutFlags)
	require.Empty(t, none.Header)
	require.Empty(t, none.Or)

	one := searchCriteria([]string{"egesdoc@grupotr.es"})
	require.Equal(t, "egesdoc@grupotr.es", one.Header.Get("From"))

	three := searchCriteria([]string{"a@x.com", "", "b@x.com", "c@x.com"})
	require.Len(t, three.Or, 1)
	left, right := three.Or[0][0], three.Or[0][1]
	require.Equal(t, "c@x.com", right.Header.Get("From"))
	require.Len(t, left.Or, 1)
	require.Equal(t, "a@x.com", left.Or[0][0].Header.Get("From"))
	require.Equal(t, "b@x.com", left.Or[0][1].Header.Get("From"))
}

func TestToFetchedSkipsStrangers(t *testing.T) {
	c := &Connector{senders: []string{"egesdoc@grupotr.es"}}
	section, items := fetchItems()
	// Servers answer BODY.PEEK[] with a plain BODY[] item.
	reply := &imap.BodySectionName{}

	msg := imap.NewMessage(7, items)
	msg.Uid = 42
	msg.Envelope = &imap.Envelope{Subject: "TR Return", From: []*imap.Address{{MailboxName: "egesdoc", HostName: "grupotr.es"}}}
	msg.Body[reply] = imap.Literal(strings.NewReader("Subject: TR Return\r\n\r\nbody"))

	got, ok, err := c.toFetched(msg, section)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "imap-42", got.MessageID)
	require.Equal(t, "egesdoc@grupotr.es", got.From)
	require.Equal(t, "Subject: TR Return\r\n\r\nbody", string(got.Raw))

	msg.Envelope.From = []*imap.Address{{MailboxName: "someone", HostName: "example.com"}}
	_, ok, err = c.toFetched(msg, section)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = c.toFetched(nil, section)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFetchItemsPeek(t *testing.T) {
	section, items := fetchItems()
	require.True(t, section.Peek)
	require.Len(t, items, 4)
	require.Contains(t, string(items[3]), "PEEK")
}
