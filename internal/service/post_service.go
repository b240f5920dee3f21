package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/lionwox/blogging-platform-api/internal/domain"
	"github.com/lionwox/blogging-platform-api/internal/repository"
)

var (
	ErrNotPostOwner   = errors.New("not the post owner")
	ErrInvalidContact = errors.New("contact must contain 10 to 15 digits")
)

type PostInput struct {
	Title     string
	Content   string
	Published bool
	Contact   *string
}

type PostService struct {
	posts repository.PostRepository
}

func NewPostService(posts repository.PostRepository) *PostService {
	return &PostService{posts: posts}
}

func (s *PostService) Create(ctx context.Context, ownerID uint, in PostInput) (*domain.Post, error) {
	contact, err := normalizeContact(in.Contact)
	if err != nil {
		return nil, err
	}
	post := &domain.Post{
		Title:     in.Title,
		Content:   in.Content,
		Published: in.Published,
		Contact:   contact,
		OwnerID:   ownerID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id uint) (*domain.Post, error) {
	return s.posts.FindByID(ctx, id)
}

func (s *PostService) List(ctx context.Context) ([]domain.PostWithVotes, error) {
	return s.posts.ListWithVotes(ctx)
}

func (s *PostService) Update(ctx context.Context, callerID, postID uint, in PostInput) (*domain.Post, error) {
	existing, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != callerID {
		return nil, ErrNotPostOwner
	}
	contact, err := normalizeContact(in.Contact)
	if err != nil {
		return nil, err
	}
	existing.Title = in.Title
	existing.Content = in.Content
	existing.Published = in.Published
	existing.Contact = contact
	if err := s.posts.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *PostService) Delete(ctx context.Context, callerID, postID uint) error {
	existing, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if existing.OwnerID != callerID {
		return ErrNotPostOwner
	}
	return s.posts.Delete(ctx, postID)
}

// normalizeContact strips non-digits and enforces a 10-15 digit phone
// number. A nil contact stays nil.
func normalizeContact(contact *string) (*string, error) {
	if contact == nil {
		return nil, nil
	}
	var b strings.Builder
	for _, r := range *contact {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 10 || len(digits) > 15 {
		return nil, ErrInvalidContact
	}
	return &digits, nil
}
