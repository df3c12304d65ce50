package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"st-blogs/internal/domain"
)

// BlogRepository define el contrato de persistencia para posts.
type BlogRepository interface {
	Create(ctx context.Context, blog domain.Blog) error
	GetByID(ctx context.Context, id string) (domain.Blog, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Blog, error)
	ListAll(ctx context.Context) ([]domain.Blog, error)
	Update(ctx context.Context, blog domain.Blog) error
	Delete(ctx context.Context, id string) error
}

// PgBlogRepository implementa BlogRepository usando pgxpool.
type PgBlogRepository struct {
	pool *pgxpool.Pool
}

func NewPgBlogRepository(pool *pgxpool.Pool) *PgBlogRepository {
	return &PgBlogRepository{pool: pool}
}

const blogColumns = `id, title, content, author, image, user_id, created_at`

func (r *PgBlogRepository) Create(ctx context.Context, blog domain.Blog) error {
	const query = `
		INSERT INTO blogs (` + blogColumns + `)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	`
	_, err := r.pool.Exec(ctx, query,
		blog.ID,
		blog.Title,
		blog.Content,
		blog.Author,
		blog.Image,
		blog.UserID,
		blog.CreatedAt,
	)
	return err
}

func (r *PgBlogRepository) GetByID(ctx context.Context, id string) (domain.Blog, error) {
	const query = `SELECT ` + blogColumns + ` FROM blogs WHERE id = $1`
	return scanBlog(r.pool.QueryRow(ctx, query, id))
}

func (r *PgBlogRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Blog, error) {
	const query = `
		SELECT ` + blogColumns + `
		FROM blogs
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBlogs(rows)
}

func (r *PgBlogRepository) ListAll(ctx context.Context) ([]domain.Blog, error) {
	const query = `SELECT ` + blogColumns + ` FROM blogs ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBlogs(rows)
}

func (r *PgBlogRepository) Update(ctx context.Context, blog domain.Blog) error {
	const query = `
		UPDATE blogs
		SET title = $2, content = $3, author = $4, image = $5
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		blog.ID,
		blog.Title,
		blog.Content,
		blog.Author,
		blog.Image,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgBlogRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM blogs WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanBlog(row pgx.Row) (domain.Blog, error) {
	var b domain.Blog
	var userID *string
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Content,
		&b.Author,
		&b.Image,
		&userID,
		&b.CreatedAt,
	)
	if err != nil {
		return domain.Blog{}, err
	}
	if userID != nil {
		b.UserID = *userID
	}
	return b, nil
}

func collectBlogs(rows pgx.Rows) ([]domain.Blog, error) {
	blogs := make([]domain.Blog, 0)
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}
	return blogs, rows.Err()
}
