package connectors

import (
	"github.com/sirupsen/logrus"

	"docucontrol/internal/logger"
	"docucontrol/internal/storage"
)

type FetchService struct {
	connector MailConnector
	store     *MailStoreService
}

type FetchResult struct {
	Fetched int
	Stored  int
	// Pending counts stored messages still waiting to be processed.
	Pending int
}

func NewFetchService(db *storage.DB, rawMailDir string, connector MailConnector) *FetchService {
	return &FetchService{
		connector: connector,
		store:     NewMailStoreService(db, rawMailDir),
	}
}

func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	res := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		row, err := s.store.Store(msg)
		if err != nil {
			return res, err
		}
		res.Stored++
		if row.Status == storage.EmailFetched {
			res.Pending++
		}
	}

	logger.Log.WithFields(logrus.Fields{"label": label, "fetched": res.Fetched, "pending": res.Pending}).Debug("mailbox fetched")
	return res, nil
}
