package content_test

import (
	"context"
	"testing"

	"github.com/trezcool/vsip/core/content"
	"github.com/trezcool/vsip/core/school"
	inmemdb "github.com/trezcool/vsip/storage/database/inmem"
)

func setup(t *testing.T) *content.Service {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	return content.NewService(inmemdb.NewContentRepository(db))
}

func createItem(t *testing.T, svc *content.Service, title, subject, levelTag, locale string) content.Item {
	t.Helper()

	item, err := svc.Create(context.Background(), content.NewItem{
		Title:    title,
		Subject:  subject,
		LevelTag: levelTag,
		Locale:   locale,
		BodyMd:   "# " + title,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return item
}

func TestService_Create(t *testing.T) {
	svc := setup(t)

	item := createItem(t, svc, "Barakhadi Drill", content.SubjectReading, string(school.BandR1), "hi")
	if item.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestService_Query(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	readingHi := createItem(t, svc, "Barakhadi Drill", content.SubjectReading, string(school.BandR1), "hi")
	readingOr := createItem(t, svc, "Matra Cards", content.SubjectReading, string(school.BandR1), "or")
	math := createItem(t, svc, "Division Ladder", content.SubjectMath, string(school.BandA2), "en")

	tests := []struct {
		name   string
		filter content.QueryFilter
		want   []string // item IDs, any order not guaranteed so compare as sets
	}{
		{name: "all", filter: content.QueryFilter{}, want: []string{readingHi.ID, readingOr.ID, math.ID}},
		{name: "by subject", filter: content.QueryFilter{Subject: content.SubjectReading}, want: []string{readingHi.ID, readingOr.ID}},
		{name: "by level", filter: content.QueryFilter{LevelTag: string(school.BandA2)}, want: []string{math.ID}},
		{name: "by locale", filter: content.QueryFilter{Locale: "or"}, want: []string{readingOr.ID}},
		{name: "combined", filter: content.QueryFilter{Subject: content.SubjectReading, Locale: "hi"}, want: []string{readingHi.ID}},
		{name: "no match", filter: content.QueryFilter{Subject: content.SubjectMath, Locale: "or"}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := svc.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query() failed: %v", err)
			}
			if len(items) != len(tt.want) {
				t.Fatalf("Query() returned %d items, want %d", len(items), len(tt.want))
			}
			got := make(map[string]bool, len(items))
			for _, item := range items {
				got[item.ID] = true
			}
			for _, id := range tt.want {
				if !got[id] {
					t.Errorf("Query() missing item %s", id)
				}
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	item := createItem(t, svc, "Barakhadi Drill", content.SubjectReading, string(school.BandR1), "hi")

	updated, err := svc.Update(ctx, item.ID, content.UpdateItem{Title: "Barakhadi Drill v2", Locale: "or"})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Title != "Barakhadi Drill v2" || updated.Locale != "or" {
		t.Errorf("Update() = %+v, want patched title and locale", updated)
	}
	if updated.Subject != item.Subject || updated.LevelTag != item.LevelTag || updated.BodyMd != item.BodyMd {
		t.Errorf("Update() changed untouched fields: %+v", updated)
	}

	if _, err = svc.Update(ctx, "nope", content.UpdateItem{Title: "x"}); err != content.ErrNotFound {
		t.Errorf("Update(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	item := createItem(t, svc, "Barakhadi Drill", content.SubjectReading, string(school.BandR1), "hi")

	if err := svc.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := svc.Get(ctx, item.ID); err != content.ErrNotFound {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}
}
