package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/vsip/core/content"
)

type contentRepository struct {
	db *sqlx.DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *sqlx.DB) *contentRepository {
	return &contentRepository{db: db}
}

type contentRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Subject     string         `db:"subject"`
	LevelTag    string         `db:"level_tag"`
	Locale      string         `db:"locale"`
	BodyMd      string         `db:"body_md"`
	Attachments pq.StringArray `db:"attachments"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (repo contentRepository) entity(row contentRow) content.Item {
	return content.Item{
		ID:          row.ID,
		Title:       row.Title,
		Subject:     row.Subject,
		LevelTag:    row.LevelTag,
		Locale:      row.Locale,
		BodyMd:      row.BodyMd,
		Attachments: row.Attachments,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (repo contentRepository) entitySlice(rows []contentRow) []content.Item {
	items := make([]content.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, repo.entity(row))
	}
	return items
}

func (repo contentRepository) CreateItem(ctx context.Context, item *content.Item) error {
	item.ID = uuid.New().String()
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO content (id, title, subject, level_tag, locale, body_md, attachments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.Title, item.Subject, item.LevelTag, item.Locale, item.BodyMd,
		pq.Array(item.Attachments), item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "creating content item")
	}
	return nil
}

func (repo contentRepository) QueryAllItems(ctx context.Context) ([]content.Item, error) {
	var rows []contentRow
	query := `SELECT * FROM content ORDER BY subject, level_tag, locale`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying content items")
	}
	return repo.entitySlice(rows), nil
}

func (repo contentRepository) FilterItems(ctx context.Context, filter content.QueryFilter) ([]content.Item, error) {
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Subject != "" {
		conds = append(conds, "subject = "+arg(filter.Subject))
	}
	if filter.LevelTag != "" {
		conds = append(conds, "level_tag = "+arg(filter.LevelTag))
	}
	if filter.Locale != "" {
		conds = append(conds, "locale = "+arg(filter.Locale))
	}

	query := `SELECT * FROM content`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY subject, level_tag, locale`

	var rows []contentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering content items")
	}
	return repo.entitySlice(rows), nil
}

func (repo contentRepository) GetItemByID(ctx context.Context, id string) (content.Item, error) {
	var row contentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM content WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return content.Item{}, content.ErrNotFound
		}
		return content.Item{}, errors.Wrap(err, "getting content item")
	}
	return repo.entity(row), nil
}

func (repo contentRepository) UpdateItem(ctx context.Context, item content.Item) error {
	item.UpdatedAt = time.Now().UTC()
	res, err := repo.db.ExecContext(ctx, `
		UPDATE content
		SET title = $1, subject = $2, level_tag = $3, locale = $4, body_md = $5, attachments = $6, updated_at = $7
		WHERE id = $8`,
		item.Title, item.Subject, item.LevelTag, item.Locale, item.BodyMd,
		pq.Array(item.Attachments), item.UpdatedAt, item.ID,
	)
	if err != nil {
		return errors.Wrap(err, "updating content item")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (repo contentRepository) DeleteItemsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM content WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting content items")
	}
	return nil
}
