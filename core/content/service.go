package content

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("content not found")

type (
	// QueryFilter narrows library listings. Empty fields match everything.
	QueryFilter struct {
		Subject  string `query:"subject"`
		LevelTag string `query:"level"`
		Locale   string `query:"locale"`
	}

	Repository interface {
		CreateItem(ctx context.Context, item *Item) error
		QueryAllItems(ctx context.Context) ([]Item, error)
		FilterItems(ctx context.Context, filter QueryFilter) ([]Item, error)
		GetItemByID(ctx context.Context, id string) (Item, error)
		UpdateItem(ctx context.Context, item Item) error
		DeleteItemsByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ni NewItem) (Item, error) {
	item := Item{
		Title:       ni.Title,
		Subject:     ni.Subject,
		LevelTag:    ni.LevelTag,
		Locale:      ni.Locale,
		BodyMd:      ni.BodyMd,
		Attachments: ni.Attachments,
	}
	if err := svc.repo.CreateItem(ctx, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Item, error) {
	if (filter == QueryFilter{}) {
		return svc.repo.QueryAllItems(ctx)
	}
	return svc.repo.FilterItems(ctx, filter)
}

func (svc *Service) Get(ctx context.Context, id string) (Item, error) {
	return svc.repo.GetItemByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ui UpdateItem) (Item, error) {
	item, err := svc.repo.GetItemByID(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if ui.Title != "" {
		item.Title = ui.Title
	}
	if ui.Subject != "" {
		item.Subject = ui.Subject
	}
	if ui.LevelTag != "" {
		item.LevelTag = ui.LevelTag
	}
	if ui.Locale != "" {
		item.Locale = ui.Locale
	}
	if ui.BodyMd != "" {
		item.BodyMd = ui.BodyMd
	}
	if ui.Attachments != nil {
		item.Attachments = ui.Attachments
	}
	if err = svc.repo.UpdateItem(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteItemsByID(ctx, ids...)
}
