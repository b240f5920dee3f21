package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lionwox/blogging-platform-api/internal/domain"
	"github.com/lionwox/blogging-platform-api/internal/repository"
)

type inMemoryPostRepo struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*domain.Post
}

func newInMemoryPostRepo() *inMemoryPostRepo {
	return &inMemoryPostRepo{nextID: 1, byID: map[uint]*domain.Post{}}
}

func (r *inMemoryPostRepo) Create(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = r.nextID
	r.nextID++
	cp := *post
	r.byID[cp.ID] = &cp
	return nil
}

func (r *inMemoryPostRepo) FindByID(_ context.Context, id uint) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPostRepo) ListWithVotes(_ context.Context) ([]domain.PostWithVotes, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.PostWithVotes, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, domain.PostWithVotes{Post: *p})
	}
	return out, nil
}

func (r *inMemoryPostRepo) Update(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[post.ID]; !ok {
		return repository.ErrPostNotFound
	}
	cp := *post
	r.byID[cp.ID] = &cp
	return nil
}

func (r *inMemoryPostRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(r.byID, id)
	return nil
}

func TestPostOwnershipChecks(t *testing.T) {
	posts := NewPostService(newInMemoryPostRepo())
	ctx := context.Background()

	created, err := posts.Create(ctx, 1, PostInput{Title: "t", Content: "c", Published: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := posts.Update(ctx, 2, created.ID, PostInput{Title: "x", Content: "y", Published: true}); !errors.Is(err, ErrNotPostOwner) {
		t.Fatalf("expected ErrNotPostOwner on update, got %v", err)
	}
	if err := posts.Delete(ctx, 2, created.ID); !errors.Is(err, ErrNotPostOwner) {
		t.Fatalf("expected ErrNotPostOwner on delete, got %v", err)
	}

	if _, err := posts.Update(ctx, 1, created.ID, PostInput{Title: "x", Content: "y", Published: false}); err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if err := posts.Delete(ctx, 1, created.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := posts.Get(ctx, created.ID); !errors.Is(err, repository.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound after delete, got %v", err)
	}
}

func TestContactNormalization(t *testing.T) {
	posts := NewPostService(newInMemoryPostRepo())
	ctx := context.Background()

	contact := "+1 (555) 123-4567"
	created, err := posts.Create(ctx, 1, PostInput{Title: "t", Content: "c", Published: true, Contact: &contact})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Contact == nil || *created.Contact != "15551234567" {
		t.Fatalf("expected digits-only contact, got %v", created.Contact)
	}

	short := "12345"
	if _, err := posts.Create(ctx, 1, PostInput{Title: "t", Content: "c", Published: true, Contact: &short}); !errors.Is(err, ErrInvalidContact) {
		t.Fatalf("expected ErrInvalidContact, got %v", err)
	}

	if created, err = posts.Create(ctx, 1, PostInput{Title: "t", Content: "c", Published: true}); err != nil {
		t.Fatalf("create without contact: %v", err)
	}
	if created.Contact != nil {
		t.Fatalf("nil contact must stay nil, got %v", *created.Contact)
	}
}
