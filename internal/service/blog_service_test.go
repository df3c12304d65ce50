package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"st-blogs/internal/domain"
)

type mockBlogRepo struct {
	blogs map[string]domain.Blog
}

func newMockBlogRepo() *mockBlogRepo {
	return &mockBlogRepo{blogs: make(map[string]domain.Blog)}
}

func (m *mockBlogRepo) Create(_ context.Context, blog domain.Blog) error {
	m.blogs[blog.ID] = blog
	return nil
}

func (m *mockBlogRepo) GetByID(_ context.Context, id string) (domain.Blog, error) {
	blog, ok := m.blogs[id]
	if !ok {
		return domain.Blog{}, pgx.ErrNoRows
	}
	return blog, nil
}

func (m *mockBlogRepo) ListByOwner(_ context.Context, userID string) ([]domain.Blog, error) {
	out := make([]domain.Blog, 0)
	for _, blog := range m.blogs {
		if blog.UserID == userID {
			out = append(out, blog)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *mockBlogRepo) ListAll(_ context.Context) ([]domain.Blog, error) {
	out := make([]domain.Blog, 0, len(m.blogs))
	for _, blog := range m.blogs {
		out = append(out, blog)
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *mockBlogRepo) Update(_ context.Context, blog domain.Blog) error {
	if _, ok := m.blogs[blog.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.blogs[blog.ID] = blog
	return nil
}

func (m *mockBlogRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.blogs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.blogs, id)
	return nil
}

func sortNewestFirst(blogs []domain.Blog) {
	sort.Slice(blogs, func(i, j int) bool {
		return blogs[i].CreatedAt.After(blogs[j].CreatedAt)
	})
}

func validInput() BlogInput {
	return BlogInput{
		Title:   "My first post",
		Content: "Some content long enough to pass",
		Author:  "Ana",
	}
}

func TestBlogServiceCreate_Validation(t *testing.T) {
	svc := NewBlogService(zap.NewNop(), newMockBlogRepo())

	cases := []struct {
		name  string
		in    BlogInput
		field string
	}{
		{"short title", BlogInput{Title: "ab", Content: "content long enough", Author: "Ana"}, "title"},
		{"short content", BlogInput{Title: "Title", Content: "short", Author: "Ana"}, "content"},
		{"short author", BlogInput{Title: "Title", Content: "content long enough", Author: "ab"}, "author"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "u1", tc.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}
}

func TestBlogServiceCreate_ListAllRoundTrip(t *testing.T) {
	repo := newMockBlogRepo()
	svc := NewBlogService(zap.NewNop(), repo)

	created, err := svc.Create(context.Background(), "u1", validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.UserID != "u1" {
		t.Fatalf("expected owner attached, got %q", created.UserID)
	}

	all, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 blog, got %d", len(all))
	}
	got := all[0]
	want := validInput()
	if got.Title != want.Title || got.Content != want.Content || got.Author != want.Author {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestBlogServiceListByOwner_NewestFirst(t *testing.T) {
	repo := newMockBlogRepo()
	svc := NewBlogService(zap.NewNop(), repo)

	old := domain.Blog{ID: "b1", Title: "Old post", Content: "content long enough", Author: "Ana", UserID: "u1", CreatedAt: time.Now().UTC().Add(-time.Hour)}
	recent := domain.Blog{ID: "b2", Title: "New post", Content: "content long enough", Author: "Ana", UserID: "u1", CreatedAt: time.Now().UTC()}
	other := domain.Blog{ID: "b3", Title: "Other post", Content: "content long enough", Author: "Bob", UserID: "u2", CreatedAt: time.Now().UTC()}
	for _, b := range []domain.Blog{old, recent, other} {
		if err := repo.Create(context.Background(), b); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	blogs, err := svc.ListByOwner(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(blogs) != 2 {
		t.Fatalf("expected 2 blogs, got %d", len(blogs))
	}
	if blogs[0].ID != "b2" || blogs[1].ID != "b1" {
		t.Fatalf("expected newest first, got %s then %s", blogs[0].ID, blogs[1].ID)
	}
}

func TestBlogServiceUpdate_OwnershipEnforced(t *testing.T) {
	repo := newMockBlogRepo()
	svc := NewBlogService(zap.NewNop(), repo)

	created, err := svc.Create(context.Background(), "u1", validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	in := validInput()
	in.Title = "Edited title"

	_, err = svc.Update(context.Background(), created.ID, "u2", in)
	if !errors.Is(err, ErrNotBlogOwner) {
		t.Fatalf("expected ErrNotBlogOwner, got %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, "u1", in)
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Title != "Edited title" {
		t.Fatalf("expected title updated, got %q", updated.Title)
	}
}

func TestBlogServiceDelete_OwnershipEnforced(t *testing.T) {
	repo := newMockBlogRepo()
	svc := NewBlogService(zap.NewNop(), repo)

	created, err := svc.Create(context.Background(), "u1", validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, "u2"); !errors.Is(err, ErrNotBlogOwner) {
		t.Fatalf("expected ErrNotBlogOwner, got %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, "u1"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, "u1"); !errors.Is(err, ErrBlogNotFound) {
		t.Fatalf("expected ErrBlogNotFound after delete, got %v", err)
	}
}
