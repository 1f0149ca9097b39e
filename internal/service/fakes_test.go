package service

import (
	"context"
	"sync"
	"time"

	"messagesapp/internal/blob"
	"messagesapp/internal/model"
	"messagesapp/internal/paging"
	"messagesapp/internal/repository"
)

type fakeMessageRepo struct {
	batches  [][]paging.Item[model.Message]
	queryErr error

	message *model.Message
	findErr error
}

func (r *fakeMessageRepo) FindMessages(_ context.Context, _ string, _ int, _, _ string) (paging.Cursor[model.Message], error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	return paging.FromBatches(r.batches...), nil
}

func (r *fakeMessageRepo) FindMessageForRecipient(_ context.Context, _, _ string) (*model.Message, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.message == nil {
		return nil, repository.ErrNotFound
	}
	return r.message, nil
}

type fakeStatusRepo struct {
	statuses map[string]model.MessageStatus
	bulkErr  error

	mu       sync.Mutex
	upserted []model.MessageStatus
}

func (r *fakeStatusRepo) FindLastVersionByMessageID(_ context.Context, messageID string) (*model.MessageStatus, error) {
	status, ok := r.statuses[messageID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &status, nil
}

func (r *fakeStatusRepo) FindLastVersionsByMessageIDIn(_ context.Context, messageIDs []string) (map[string]model.MessageStatus, error) {
	if r.bulkErr != nil {
		return nil, r.bulkErr
	}
	out := make(map[string]model.MessageStatus, len(messageIDs))
	for _, id := range messageIDs {
		if status, ok := r.statuses[id]; ok {
			out[id] = status
		}
	}
	return out, nil
}

func (r *fakeStatusRepo) Upsert(_ context.Context, status model.MessageStatus) (*model.MessageStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if last, ok := r.statuses[status.MessageID]; ok {
		status.Version = last.Version + 1
	}
	status.UpdatedAt = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	if r.statuses == nil {
		r.statuses = map[string]model.MessageStatus{}
	}
	r.statuses[status.MessageID] = status
	r.upserted = append(r.upserted, status)
	return &status, nil
}

type fakeContentStore struct {
	contents map[string]*model.MessageContent
	errs     map[string]error
}

func (s *fakeContentStore) GetMessageContent(_ context.Context, messageID string) (*model.MessageContent, error) {
	if err, ok := s.errs[messageID]; ok {
		return nil, err
	}
	content, ok := s.contents[messageID]
	if !ok {
		return nil, blob.ErrContentNotFound
	}
	return content, nil
}

type fakeServiceRepo struct {
	services map[string]model.Service
}

func (r *fakeServiceRepo) FindLastVersionByServiceID(_ context.Context, serviceID string) (*model.Service, error) {
	service, ok := r.services[serviceID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &service, nil
}

type fakeRCConfigurationRepo struct {
	configs map[string]model.RCConfiguration
}

func (r *fakeRCConfigurationRepo) FindLastVersionByConfigurationID(_ context.Context, configurationID string) (*model.RCConfiguration, error) {
	configuration, ok := r.configs[configurationID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &configuration, nil
}

type fakeViewRepo struct {
	batches  [][]paging.Item[model.MessageView]
	queryErr error

	lastArchived bool
}

func (r *fakeViewRepo) QueryPage(_ context.Context, _ string, archived bool, _, _ string, _ int) (paging.Cursor[model.MessageView], error) {
	r.lastArchived = archived
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	return paging.FromBatches(r.batches...), nil
}

// memStore is an in-memory cache.Store.
type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemStore() *memStore { return &memStore{values: map[string]string{}} }

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *memStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// staticFetcher always returns the same category tag.
type staticFetcher string

func (f staticFetcher) Fetch(context.Context, string) string { return string(f) }

type trackedFailure struct {
	kind      string
	messageID string
	serviceID string
}

type recordingTracker struct {
	mu       sync.Mutex
	failures []trackedFailure
}

func (t *recordingTracker) TrackEnrichmentFailure(_ context.Context, kind, _, messageID, serviceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures = append(t.failures, trackedFailure{kind: kind, messageID: messageID, serviceID: serviceID})
}

func (t *recordingTracker) TrackCategoryFetchFailure(context.Context, string) {}
