package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"st-blogs/internal/domain"
	"st-blogs/internal/repository"
)

// BlogService aplica validación y ownership antes de tocar el repositorio.
type BlogService struct {
	logger *zap.Logger
	blogs  repository.BlogRepository
}

func NewBlogService(logger *zap.Logger, blogs repository.BlogRepository) *BlogService {
	return &BlogService{
		logger: logger,
		blogs:  blogs,
	}
}

var (
	ErrBlogNotFound = errors.New("blog not found")
	ErrNotBlogOwner = errors.New("not blog owner")
)

// ValidationError nombra el campo que no pasó la validación.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// BlogInput son los campos mutables de un post.
type BlogInput struct {
	Title   string
	Content string
	Author  string
	Image   string
}

func validateBlogInput(in BlogInput) error {
	if utf8.RuneCountInString(strings.TrimSpace(in.Title)) < 3 {
		return &ValidationError{Field: "title", Reason: "must be at least 3 characters"}
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Content)) < 10 {
		return &ValidationError{Field: "content", Reason: "must be at least 10 characters"}
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Author)) < 3 {
		return &ValidationError{Field: "author", Reason: "must be at least 3 characters"}
	}
	return nil
}

// Create valida y persiste un post nuevo asociado a su dueño.
func (s *BlogService) Create(ctx context.Context, ownerID string, in BlogInput) (domain.Blog, error) {
	if err := validateBlogInput(in); err != nil {
		return domain.Blog{}, err
	}

	blog := domain.Blog{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Content:   in.Content,
		Author:    in.Author,
		Image:     in.Image,
		UserID:    ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.blogs.Create(ctx, blog); err != nil {
		return domain.Blog{}, err
	}
	return blog, nil
}

// Update sobreescribe los campos mutables; sólo el dueño puede hacerlo.
func (s *BlogService) Update(ctx context.Context, id, ownerID string, in BlogInput) (domain.Blog, error) {
	blog, err := s.get(ctx, id)
	if err != nil {
		return domain.Blog{}, err
	}
	if blog.UserID != ownerID {
		return domain.Blog{}, ErrNotBlogOwner
	}
	if err := validateBlogInput(in); err != nil {
		return domain.Blog{}, err
	}

	blog.Title = in.Title
	blog.Content = in.Content
	blog.Author = in.Author
	if in.Image != "" {
		blog.Image = in.Image
	}
	if err := s.blogs.Update(ctx, blog); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Blog{}, ErrBlogNotFound
		}
		return domain.Blog{}, err
	}
	return blog, nil
}

// Delete borra un post tras el mismo chequeo de ownership que Update.
func (s *BlogService) Delete(ctx context.Context, id, ownerID string) error {
	blog, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if blog.UserID != ownerID {
		return ErrNotBlogOwner
	}
	if err := s.blogs.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBlogNotFound
		}
		return err
	}
	return nil
}

// Get devuelve un post por id.
func (s *BlogService) Get(ctx context.Context, id string) (domain.Blog, error) {
	return s.get(ctx, id)
}

// ListByOwner devuelve los posts de un dueño, más nuevos primero.
func (s *BlogService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Blog, error) {
	return s.blogs.ListByOwner(ctx, ownerID)
}

// ListAll devuelve el feed público completo.
func (s *BlogService) ListAll(ctx context.Context) ([]domain.Blog, error) {
	return s.blogs.ListAll(ctx)
}

func (s *BlogService) get(ctx context.Context, id string) (domain.Blog, error) {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Blog{}, ErrBlogNotFound
		}
		return domain.Blog{}, err
	}
	return blog, nil
}
