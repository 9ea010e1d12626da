package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/vsip/core/content"
)

type contentRepository struct {
	db *contentTable
}

var _ content.Repository = (*contentRepository)(nil)

func NewContentRepository(db *DB) *contentRepository {
	return &contentRepository{db: db.content}
}

func (repo *contentRepository) query(filter content.QueryFilter) []content.Item {
	items := make([]content.Item, 0, len(repo.db.table))
	for _, item := range repo.db.table {
		if filter.Subject != "" && item.Subject != filter.Subject {
			continue
		}
		if filter.LevelTag != "" && item.LevelTag != filter.LevelTag {
			continue
		}
		if filter.Locale != "" && item.Locale != filter.Locale {
			continue
		}
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Subject != items[j].Subject {
			return items[i].Subject < items[j].Subject
		}
		if items[i].LevelTag != items[j].LevelTag {
			return items[i].LevelTag < items[j].LevelTag
		}
		return items[i].Locale < items[j].Locale
	})
	return items
}

func (repo *contentRepository) CreateItem(ctx context.Context, item *content.Item) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	item.ID = uuid.New().String()
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	saved := *item
	repo.db.table[item.ID] = &saved
	return nil
}

func (repo *contentRepository) QueryAllItems(ctx context.Context) ([]content.Item, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(content.QueryFilter{}), nil
}

func (repo *contentRepository) FilterItems(ctx context.Context, filter content.QueryFilter) ([]content.Item, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(filter), nil
}

func (repo *contentRepository) GetItemByID(ctx context.Context, id string) (content.Item, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if item, ok := repo.db.table[id]; ok {
		return *item, nil
	}
	return content.Item{}, content.ErrNotFound
}

func (repo *contentRepository) UpdateItem(ctx context.Context, item content.Item) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[item.ID]; !ok {
		return content.ErrNotFound
	}
	item.UpdatedAt = time.Now().UTC()
	repo.db.table[item.ID] = &item
	return nil
}

func (repo *contentRepository) DeleteItemsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
