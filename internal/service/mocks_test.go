package service

import (
	"context"
	"errors"

	"askhub/internal/models"
	"askhub/internal/pubsub"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// mockCompleter scripts the oracle's reply for one test.
type mockCompleter struct {
	response string
	err      error

	calls      int
	lastSystem string
	lastUser   string
	lastParams CompletionParams
}

func (m *mockCompleter) Complete(_ context.Context, system, user string, params CompletionParams) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	m.lastParams = params
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

type mockEmbedder struct {
	vector []float32
	err    error

	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.lastText = text
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

// mockKnowledgeStore is an in-memory knowledgeQuerier.
type mockKnowledgeStore struct {
	entries map[uuid.UUID]*models.KnowledgeEntry
	results []models.SearchResult

	err           error
	upserts       int
	searchCalls   int
	lastLimit     int
	lastThreshold float64
	lastFilter    map[string]string
}

func newMockKnowledgeStore() *mockKnowledgeStore {
	return &mockKnowledgeStore{entries: make(map[uuid.UUID]*models.KnowledgeEntry)}
}

func (m *mockKnowledgeStore) EnsureSchema(context.Context) error {
	return m.err
}

func (m *mockKnowledgeStore) Upsert(_ context.Context, entry *models.KnowledgeEntry) error {
	if m.err != nil {
		return m.err
	}
	m.upserts++
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockKnowledgeStore) Search(_ context.Context, _ []float32, limit int, threshold float64, filter map[string]string) ([]models.SearchResult, error) {
	m.searchCalls++
	m.lastLimit = limit
	m.lastThreshold = threshold
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockKnowledgeStore) DeleteByID(_ context.Context, id uuid.UUID) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if _, ok := m.entries[id]; !ok {
		return 0, nil
	}
	delete(m.entries, id)
	return 1, nil
}

func (m *mockKnowledgeStore) DeleteByMetadata(_ context.Context, filter map[string]string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var count int64
	for id, entry := range m.entries {
		matched := true
		for k, v := range filter {
			if entry.Metadata[k] != v {
				matched = false
				break
			}
		}
		if matched {
			delete(m.entries, id)
			count++
		}
	}
	return count, nil
}

func (m *mockKnowledgeStore) DeleteAll(context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	count := int64(len(m.entries))
	m.entries = make(map[uuid.UUID]*models.KnowledgeEntry)
	return count, nil
}

func (m *mockKnowledgeStore) Count(context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.entries)), nil
}

// mockUserStore is an in-memory userBanner and userStore.
type mockUserStore struct {
	users map[uuid.UUID]*models.User

	deleteErr      error
	markedInactive []uuid.UUID
	deletes        int
	stickyRows     bool // simulate a delete that does not take effect
}

func newMockUserStore(users ...*models.User) *mockUserStore {
	m := &mockUserStore{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserStore) Create(_ context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserStore) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deletes++
	if m.stickyRows {
		return 1, nil
	}
	if _, ok := m.users[id]; !ok {
		return 0, nil
	}
	delete(m.users, id)
	return 1, nil
}

func (m *mockUserStore) MarkInactive(_ context.Context, id uuid.UUID) error {
	m.markedInactive = append(m.markedInactive, id)
	if u, ok := m.users[id]; ok {
		u.IsActive = false
	}
	return nil
}

// mockVectorSearcher scripts VectorStore behavior for synthesizer tests.
type mockVectorSearcher struct {
	results   []models.SearchResult
	searchErr error
	upsertErr error

	lastContent  string
	lastMetadata map[string]string
	lastID       string
	upserts      int
}

func (m *mockVectorSearcher) Search(_ context.Context, _ string, _ int, _ float64, _ map[string]string) ([]models.SearchResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

func (m *mockVectorSearcher) Upsert(_ context.Context, content string, metadata map[string]string, id string) (uuid.UUID, error) {
	if m.upsertErr != nil {
		return uuid.Nil, m.upsertErr
	}
	m.upserts++
	m.lastContent = content
	m.lastMetadata = metadata
	m.lastID = id
	if id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return uuid.Nil, ErrInvalidIdentifier
		}
		return parsed, nil
	}
	return uuid.New(), nil
}

// mockModerator scripts the gate's verdict.
type mockModerator struct {
	verdict models.ModerationVerdict

	classified []string
	banned     []uuid.UUID
}

func (m *mockModerator) Classify(_ context.Context, text string) models.ModerationVerdict {
	m.classified = append(m.classified, text)
	return m.verdict
}

func (m *mockModerator) BanUser(_ context.Context, userID uuid.UUID) bool {
	m.banned = append(m.banned, userID)
	return true
}

// mockSuggester scripts the advisory synthesizer.
type mockSuggester struct {
	suggestion models.RAGSuggestion
	ingestOK   bool

	ingested  int
	lastQ     string
	lastA     string
	lastQID   string
	generated int
}

func (m *mockSuggester) GenerateAnswer(_ context.Context, _ string, _ int, _ float64) models.RAGSuggestion {
	m.generated++
	return m.suggestion
}

func (m *mockSuggester) AddToKnowledgeBase(_ context.Context, question, answer, questionID string, _ map[string]string) bool {
	m.ingested++
	m.lastQ = question
	m.lastA = answer
	m.lastQID = questionID
	return m.ingestOK
}

// mockQuestionStore is an in-memory questionStore and answeredLister.
type mockQuestionStore struct {
	questions map[uuid.UUID]*models.Question
	listErr   error
}

func newMockQuestionStore(questions ...*models.Question) *mockQuestionStore {
	m := &mockQuestionStore{questions: make(map[uuid.UUID]*models.Question)}
	for _, q := range questions {
		m.questions[q.ID] = q
	}
	return m
}

func (m *mockQuestionStore) Create(_ context.Context, q *models.Question) error {
	m.questions[q.ID] = q
	return nil
}

func (m *mockQuestionStore) GetByID(_ context.Context, id uuid.UUID) (*models.Question, error) {
	q, ok := m.questions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *q
	return &copied, nil
}

func (m *mockQuestionStore) List(_ context.Context, _, _ uint64) ([]*models.Question, error) {
	out := make([]*models.Question, 0, len(m.questions))
	for _, q := range m.questions {
		out = append(out, q)
	}
	return out, nil
}

func (m *mockQuestionStore) ListAnswered(_ context.Context) ([]*models.Question, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*models.Question, 0, len(m.questions))
	for _, q := range m.questions {
		if q.Status == models.StatusAnswered {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockQuestionStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.QuestionStatus) (int64, error) {
	q, ok := m.questions[id]
	if !ok {
		return 0, nil
	}
	q.Status = status
	return 1, nil
}

// mockAnswerStore is an in-memory answerStore and answerLister.
type mockAnswerStore struct {
	answers map[uuid.UUID][]*models.Answer
	listErr error
}

func newMockAnswerStore() *mockAnswerStore {
	return &mockAnswerStore{answers: make(map[uuid.UUID][]*models.Answer)}
}

func (m *mockAnswerStore) Create(_ context.Context, a *models.Answer) error {
	m.answers[a.QuestionID] = append(m.answers[a.QuestionID], a)
	return nil
}

func (m *mockAnswerStore) ListByQuestion(_ context.Context, questionID uuid.UUID) ([]*models.Answer, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.answers[questionID], nil
}

// mockPublisher records broadcast events.
type mockPublisher struct {
	events []pubsub.Event[any]
}

func (m *mockPublisher) Publish(t pubsub.EventType, payload any) {
	m.events = append(m.events, pubsub.Event[any]{Type: t, Payload: payload})
}

var errBoom = errors.New("boom")
