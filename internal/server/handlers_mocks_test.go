package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/akm-xdd/Trackly-core/internal/app"
	"github.com/akm-xdd/Trackly-core/internal/auth"
	"github.com/akm-xdd/Trackly-core/internal/broadcast"
	"github.com/akm-xdd/Trackly-core/internal/config"
	"github.com/akm-xdd/Trackly-core/internal/domain"
)

const testJWTSecret = "server-test-secret-0123456789abcdef"

// In-memory repositories backing handler tests. Only the behavior the
// handlers exercise is implemented.

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUserRepo) List(_ context.Context, _, _ int) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) Update(_ context.Context, id uuid.UUID, fullName *string, role *domain.Role) (*domain.User, error) {
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

func (m *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type memIssueRepo struct {
	mu       sync.Mutex
	issues   map[uuid.UUID]*domain.Issue
	comments map[uuid.UUID][]*domain.Comment
}

func (m *memIssueRepo) Create(_ context.Context, i *domain.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	m.issues[i.ID] = i
	return nil
}

func (m *memIssueRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.issues[id]; ok {
		copied := *i
		return &copied, nil
	}
	return nil, domain.ErrIssueNotFound
}

func (m *memIssueRepo) List(_ context.Context, filter domain.IssueFilter, _, _ int) ([]*domain.Issue, error) {
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

func (m *memIssueRepo) Update(_ context.Context, id uuid.UUID, update domain.IssueUpdate, updatedBy uuid.UUID) (*domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.issues[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	if update.Title != nil {
		i.Title = *update.Title
	}
	if update.Status != nil {
		i.Status = *update.Status
	}
	if update.Severity != nil {
		i.Severity = *update.Severity
	}
	i.UpdatedBy = &updatedBy
	copied := *i
	return &copied, nil
}

func (m *memIssueRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.issues[id]; !ok {
		return domain.ErrIssueNotFound
	}
	delete(m.issues, id)
	return nil
}

func (m *memIssueRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.issues)), nil
}

func (m *memIssueRepo) CountByStatus(_ context.Context) (map[domain.IssueStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.IssueStatus]int64)
	for _, i := range m.issues {
		out[i.Status]++
	}
	return out, nil
}

func (m *memIssueRepo) CountBySeverity(_ context.Context) (map[domain.IssueSeverity]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.IssueSeverity]int64)
	for _, i := range m.issues {
		out[i.Severity]++
	}
	return out, nil
}

func (m *memIssueRepo) AddComment(_ context.Context, c *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.comments[c.IssueID] = append(m.comments[c.IssueID], c)
	return nil
}

func (m *memIssueRepo) ListComments(_ context.Context, issueID uuid.UUID) ([]*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.comments[issueID], nil
}

type memFileRepo struct {
	mu    sync.Mutex
	files map[string]*domain.StoredFile
}

func (m *memFileRepo) Create(_ context.Context, f *domain.StoredFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	m.files[f.FileID] = f
	return nil
}

func (m *memFileRepo) GetByFileID(_ context.Context, fileID string) (*domain.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[fileID]; ok && f.Status == domain.FileActive {
		return f, nil
	}
	return nil, domain.ErrFileNotFound
}

func (m *memFileRepo) List(_ context.Context, _, _ int) ([]*domain.StoredFile, error) {
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

func (m *memFileRepo) MarkDeleted(_ context.Context, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[fileID]
	if !ok {
		return domain.ErrFileNotFound
	}
	f.Status = domain.FileDeleted
	return nil
}

type memStatsRepo struct {
	mu     sync.Mutex
	byDate map[string]*domain.DailyStats
}

func (m *memStatsRepo) Upsert(_ context.Context, s *domain.DailyStats) (*domain.DailyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.byDate[s.Date.Format("2006-01-02")] = s
	return s, nil
}

func (m *memStatsRepo) GetByDate(_ context.Context, date time.Time) (*domain.DailyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byDate[date.Format("2006-01-02")]; ok {
		return s, nil
	}
	return nil, domain.ErrStatsNotFound
}

type memBlobStore struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func (m *memBlobStore) Upload(_ context.Context, name string, _ string, content io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	m.uploads[name] = data
	return "http://blobs.test/" + name, nil
}

func (m *memBlobStore) Remove(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.uploads, name)
	return nil
}

// fakeTicketStore mimics the Redis single-use semantics in memory.
type fakeTicketStore struct {
	mu      sync.Mutex
	tickets map[string]domain.Identity
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{tickets: make(map[string]domain.Identity)}
}

func (f *fakeTicketStore) Issue(_ context.Context, identity domain.Identity) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	ticket := hex.EncodeToString(buf)
	f.mu.Lock()
	f.tickets[ticket] = identity
	f.mu.Unlock()
	return ticket, nil
}

func (f *fakeTicketStore) Redeem(_ context.Context, ticket string) (domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity, ok := f.tickets[ticket]
	if !ok {
		return domain.Identity{}, domain.ErrTicketInvalid
	}
	delete(f.tickets, ticket)
	return identity, nil
}

type fakePgPinger struct{ err error }

func (f *fakePgPinger) Ping(context.Context) error { return f.err }

type fakeRedisPinger struct{ err error }

func (f *fakeRedisPinger) Ping(ctx context.Context) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	}
	return cmd
}

type serverFixture struct {
	server      *Server
	service     *app.Service
	tokens      *auth.Tokens
	users       *memUserRepo
	issues      *memIssueRepo
	broadcaster *broadcast.Broadcaster
	registry    *broadcast.Registry
	tickets     *fakeTicketStore
	pg          *fakePgPinger
	rdb         *fakeRedisPinger
}

func newServerFixture() *serverFixture {
	clock := clockwork.NewRealClock()
	users := &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
	issues := &memIssueRepo{issues: make(map[uuid.UUID]*domain.Issue), comments: make(map[uuid.UUID][]*domain.Comment)}
	files := &memFileRepo{files: make(map[string]*domain.StoredFile)}
	stats := &memStatsRepo{byDate: make(map[string]*domain.DailyStats)}
	blobs := &memBlobStore{uploads: make(map[string][]byte)}

	registry := broadcast.NewRegistry()
	broadcaster := broadcast.NewBroadcaster(registry, clock)
	tokens := auth.NewTokens(testJWTSecret, 30*time.Minute, 7*24*time.Hour, clock)
	service := app.NewService(users, issues, files, stats, blobs, tokens, broadcaster, clock)

	cfg := &config.Config{
		Port:                 "0",
		JWTSecret:            testJWTSecret,
		HeartbeatTimeout:     60 * time.Second,
		ReaperInterval:       15 * time.Second,
		StreamTicketTTL:      30 * time.Second,
		MaxStreamConnections: 100,
		FileStorageRoot:      ".",
	}

	tickets := newFakeTicketStore()
	pg := &fakePgPinger{}
	rdb := &fakeRedisPinger{}

	return &serverFixture{
		server:      NewServer(cfg, service, broadcaster, tickets, tokens, pg, rdb),
		service:     service,
		tokens:      tokens,
		users:       users,
		issues:      issues,
		broadcaster: broadcaster,
		registry:    registry,
		tickets:     tickets,
		pg:          pg,
		rdb:         rdb,
	}
}

// seedUser inserts a user and returns a valid access token for them.
func (f *serverFixture) seedUser(role domain.Role) (*domain.User, string) {
	user := &domain.User{
		ID:    uuid.New(),
		Email: uuid.NewString() + "@example.com",
		Role:  role,
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		panic(err)
	}
	token, err := f.tokens.IssueAccess(user)
	if err != nil {
		panic(err)
	}
	return user, token
}
