package app

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

type mockUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) List(_ context.Context, _, _ int) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) Update(_ context.Context, id uuid.UUID, fullName *string, role *domain.Role) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if fullName != nil {
		u.FullName = *fullName
	}
	if role != nil {
		u.Role = *role
	}
	return u, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type mockIssueRepo struct {
	mu       sync.Mutex
	issues   map[uuid.UUID]*domain.Issue
	comments map[uuid.UUID][]*domain.Comment
}

func newMockIssueRepo() *mockIssueRepo {
	return &mockIssueRepo{
		issues:   make(map[uuid.UUID]*domain.Issue),
		comments: make(map[uuid.UUID][]*domain.Comment),
	}
}

func (m *mockIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	m.issues[issue.ID] = issue
	return nil
}

func (m *mockIssueRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.issues[id]; ok {
		copied := *i
		return &copied, nil
	}
	return nil, domain.ErrIssueNotFound
}

func (m *mockIssueRepo) List(_ context.Context, filter domain.IssueFilter, _, _ int) ([]*domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Issue
	for _, i := range m.issues {
		if filter.Status != nil && i.Status != *filter.Status {
			continue
		}
		if filter.CreatedBy != nil && i.CreatedBy != *filter.CreatedBy {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

func (m *mockIssueRepo) Update(_ context.Context, id uuid.UUID, update domain.IssueUpdate, updatedBy uuid.UUID) (*domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.issues[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	if update.Title != nil {
		i.Title = *update.Title
	}
	if update.Description != nil {
		i.Description = *update.Description
	}
	if update.Severity != nil {
		i.Severity = *update.Severity
	}
	if update.Status != nil {
		i.Status = *update.Status
	}
	if update.AssignedTo != nil {
		i.AssignedTo = update.AssignedTo
	}
	if update.FileURL != nil {
		i.FileURL = update.FileURL
	}
	i.UpdatedBy = &updatedBy
	copied := *i
	return &copied, nil
}

func (m *mockIssueRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.issues[id]; !ok {
		return domain.ErrIssueNotFound
	}
	delete(m.issues, id)
	return nil
}

func (m *mockIssueRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.issues)), nil
}

func (m *mockIssueRepo) CountByStatus(_ context.Context) (map[domain.IssueStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.IssueStatus]int64)
	for _, i := range m.issues {
		out[i.Status]++
	}
	return out, nil
}

func (m *mockIssueRepo) CountBySeverity(_ context.Context) (map[domain.IssueSeverity]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.IssueSeverity]int64)
	for _, i := range m.issues {
		out[i.Severity]++
	}
	return out, nil
}

func (m *mockIssueRepo) AddComment(_ context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	m.comments[comment.IssueID] = append(m.comments[comment.IssueID], comment)
	return nil
}

func (m *mockIssueRepo) ListComments(_ context.Context, issueID uuid.UUID) ([]*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.comments[issueID], nil
}

type mockFileRepo struct {
	mu    sync.Mutex
	files map[string]*domain.StoredFile
}

func newMockFileRepo() *mockFileRepo {
	return &mockFileRepo{files: make(map[string]*domain.StoredFile)}
}

func (m *mockFileRepo) Create(_ context.Context, file *domain.StoredFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	m.files[file.FileID] = file
	return nil
}

func (m *mockFileRepo) GetByFileID(_ context.Context, fileID string) (*domain.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[fileID]; ok && f.Status == domain.FileActive {
		return f, nil
	}
	return nil, domain.ErrFileNotFound
}

func (m *mockFileRepo) List(_ context.Context, _, _ int) ([]*domain.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.StoredFile
	for _, f := range m.files {
		if f.Status == domain.FileActive {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockFileRepo) MarkDeleted(_ context.Context, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[fileID]
	if !ok {
		return domain.ErrFileNotFound
	}
	f.Status = domain.FileDeleted
	return nil
}

type mockStatsRepo struct {
	mu      sync.Mutex
	byDate  map[string]*domain.DailyStats
	upserts int
}

func newMockStatsRepo() *mockStatsRepo {
	return &mockStatsRepo{byDate: make(map[string]*domain.DailyStats)}
}

func (m *mockStatsRepo) Upsert(_ context.Context, stats *domain.DailyStats) (*domain.DailyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stats.ID == uuid.Nil {
		stats.ID = uuid.New()
	}
	m.byDate[stats.Date.Format("2006-01-02")] = stats
	m.upserts++
	return stats, nil
}

func (m *mockStatsRepo) GetByDate(_ context.Context, date time.Time) (*domain.DailyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byDate[date.Format("2006-01-02")]; ok {
		return s, nil
	}
	return nil, domain.ErrStatsNotFound
}

func (m *mockStatsRepo) upsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}

type mockBlobStore struct {
	mu       sync.Mutex
	uploads  map[string][]byte
	removals []string
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{uploads: make(map[string][]byte)}
}

func (m *mockBlobStore) Upload(_ context.Context, name string, _ string, content io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	m.uploads[name] = data
	return "http://blobs.test/" + name, nil
}

func (m *mockBlobStore) Remove(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.uploads, name)
	m.removals = append(m.removals, name)
	return nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (m *mockPublisher) Publish(event domain.Event) domain.DeliveryReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return domain.DeliveryReport{Delivered: 1}
}

func (m *mockPublisher) published() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *mockPublisher) lastEvent() (domain.Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return domain.Event{}, false
	}
	return m.events[len(m.events)-1], true
}
