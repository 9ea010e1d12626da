package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/vsip/core/veqi"
)

type veqiRepository struct {
	db *veqiTable
}

var _ veqi.Repository = (*veqiRepository)(nil)

func NewVEQIRepository(db *DB) *veqiRepository {
	return &veqiRepository{db: db.veqi}
}

func (repo *veqiRepository) key(schoolID, quarter string) string {
	return schoolID + "/" + quarter
}

func (repo *veqiRepository) UpsertRecord(ctx context.Context, rec veqi.Record) (veqi.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := repo.key(rec.SchoolID, rec.Quarter)
	if orig, ok := repo.db.table[key]; ok {
		// keep the stored identity and creation timestamp
		rec.ID = orig.ID
		rec.CreatedAt = orig.CreatedAt
	} else {
		rec.ID = uuid.New().String()
	}
	repo.db.table[key] = &rec
	return rec, nil
}

func (repo *veqiRepository) GetRecord(ctx context.Context, schoolID, quarter string) (veqi.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[repo.key(schoolID, quarter)]; ok {
		return *rec, nil
	}
	return veqi.Record{}, veqi.ErrRecordNotFound
}

func (repo *veqiRepository) QueryRecordsBySchool(ctx context.Context, schoolID string) ([]veqi.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]veqi.Record, 0)
	for _, rec := range repo.db.table {
		if rec.SchoolID == schoolID {
			records = append(records, *rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Quarter > records[j].Quarter })
	return records, nil
}
