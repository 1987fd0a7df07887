package subscription

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/newsletter/internal/domain"
)

// mockRepo is an in-memory repository for testing.
type mockRepo struct {
	mu    sync.Mutex
	rows  []domain.Subscription
	calls int
	err   error
}

func (m *mockRepo) Insert(_ context.Context, s domain.NewSubscriber) (*domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, &StorageError{Op: "insert subscriber", Class: "connectivity", Err: m.err}
	}
	row := domain.Subscription{
		ID:           uuid.NewString(),
		Email:        s.Email.String(),
		Name:         s.Name.String(),
		SubscribedAt: time.Now().UTC(),
	}
	m.rows = append(m.rows, row)
	return &row, nil
}

func TestSubscribe_PersistsValidForm(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	sub, err := svc.Subscribe(context.Background(), domain.SubscriptionForm{
		Name:  "le guin",
		Email: "ursula_le_guin@gmail.com",
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("expected 1 insert, got %d", repo.calls)
	}
	if sub.Email != "ursula_le_guin@gmail.com" || sub.Name != "le guin" {
		t.Errorf("unexpected row: %+v", sub)
	}
}

func TestSubscribe_InvalidForm_NoInsert(t *testing.T) {
	forms := []domain.SubscriptionForm{
		{Name: "", Email: "ursula_le_guin@gmail.com"},
		{Name: "le guin", Email: "not-an-email"},
		{Name: "<script>", Email: "ursula_le_guin@gmail.com"},
	}
	for _, form := range forms {
		repo := &mockRepo{}
		_, err := NewService(repo).Subscribe(context.Background(), form)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("form %+v: expected validation error, got %v", form, err)
		}
		if repo.calls != 0 {
			t.Errorf("form %+v: expected no insert, got %d", form, repo.calls)
		}
	}
}

func TestSubscribe_StorageFailure_Propagates(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	repo := &mockRepo{err: cause}

	_, err := NewService(repo).Subscribe(context.Background(), domain.SubscriptionForm{
		Name:  "le guin",
		Email: "ursula_le_guin@gmail.com",
	})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected the driver error to be preserved, got %v", err)
	}
	if repo.calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", repo.calls)
	}
}

func TestSubscribe_DuplicatesAreNotDeduplicated(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)
	form := domain.SubscriptionForm{Name: "le guin", Email: "ursula_le_guin@gmail.com"}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Subscribe(context.Background(), form); err != nil {
				t.Errorf("Subscribe: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(repo.rows) != 10 {
		t.Errorf("expected 10 rows, got %d", len(repo.rows))
	}
	seen := map[string]bool{}
	for _, r := range repo.rows {
		if seen[r.ID] {
			t.Errorf("duplicate id %s", r.ID)
		}
		seen[r.ID] = true
	}
}
