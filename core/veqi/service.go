package veqi

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/vsip/core"
	"github.com/trezcool/vsip/core/school"
)

// ErrRecordNotFound is returned when no record exists for a (school, quarter)
// key.
var ErrRecordNotFound = errors.New("VEQI record not found")

type (
	// SnapshotLoader supplies the read-only aggregate graph of one school.
	// school.Service satisfies it; tests may plug a fake.
	SnapshotLoader interface {
		LoadSnapshot(ctx context.Context, schoolID string) (school.Snapshot, error)
	}

	Repository interface {
		// UpsertRecord atomically creates or replaces the record keyed by
		// (SchoolID, Quarter). On replace, the stored identity and creation
		// timestamp are preserved; only scores, total and plan change.
		// Atomicity is the storage layer's responsibility so that concurrent
		// recomputes of the same quarter cannot lose updates.
		UpsertRecord(ctx context.Context, rec Record) (Record, error)
		GetRecord(ctx context.Context, schoolID, quarter string) (Record, error)
		QueryRecordsBySchool(ctx context.Context, schoolID string) ([]Record, error) // most recent quarter first
	}

	Service struct {
		loader   SnapshotLoader
		repo     Repository
		refGrade int
	}
)

func NewService(loader SnapshotLoader, repo Repository, conf *core.Config) *Service {
	refGrade := conf.VEQI.ReferenceGrade
	if refGrade <= 0 {
		refGrade = 3
	}
	return &Service{loader: loader, repo: repo, refGrade: refGrade}
}

// Calculate recomputes the index for (schoolID, quarter) and upserts the
// record. An empty quarter defaults to the current one. The two fatal
// conditions, an unknown school and a malformed quarter token, abort before
// any scorer runs; every other anomaly (empty cohort, no sessions, no
// compliance records) is absorbed as a 0 score.
func (svc *Service) Calculate(ctx context.Context, schoolID, quarter string) (Record, error) {
	if quarter == "" {
		quarter = CurrentQuarter()
	}
	win, err := ResolveQuarter(quarter)
	if err != nil {
		return Record{}, err
	}
	snap, err := svc.loader.LoadSnapshot(ctx, schoolID)
	if err != nil {
		return Record{}, err
	}

	comps := ComputeComponents(snap, win, svc.refGrade)
	now := time.Now().UTC()
	rec := Record{
		SchoolID:        schoolID,
		Quarter:         quarter,
		ComponentScores: comps,
		TotalScore:      comps.Total(),
		PlanActions:     BuildPlan(comps),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return svc.repo.UpsertRecord(ctx, rec)
}

// Get returns the stored record for (schoolID, quarter), computing and
// persisting it on the fly when absent.
func (svc *Service) Get(ctx context.Context, schoolID, quarter string) (Record, error) {
	rec, err := svc.repo.GetRecord(ctx, schoolID, quarter)
	if err != nil {
		if err == ErrRecordNotFound {
			return svc.Calculate(ctx, schoolID, quarter)
		}
		return Record{}, err
	}
	return rec, nil
}

// GetAll returns all records of a school, most recent quarter first.
func (svc *Service) GetAll(ctx context.Context, schoolID string) ([]Record, error) {
	return svc.repo.QueryRecordsBySchool(ctx, schoolID)
}
