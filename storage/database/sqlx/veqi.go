package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/vsip/core/veqi"
)

type veqiRepository struct {
	db *sqlx.DB
}

var _ veqi.Repository = (*veqiRepository)(nil) // interface compliance check

func NewVEQIRepository(db *sqlx.DB) *veqiRepository {
	return &veqiRepository{db: db}
}

type veqiRow struct {
	ID                 string    `db:"id"`
	SchoolID           string    `db:"school_id"`
	Quarter            string    `db:"quarter"`
	Foundational       float64   `db:"foundational"`
	TimeOnTask         float64   `db:"time_on_task"`
	DigitalPractice    float64   `db:"digital_practice"`
	TransitionExposure float64   `db:"transition_exposure"`
	EnvironmentHealth  float64   `db:"environment_health"`
	TotalScore         float64   `db:"total_score"`
	PlanActions        []byte    `db:"plan_actions"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (repo veqiRepository) row(rec veqi.Record) (veqiRow, error) {
	plan := rec.PlanActions
	if plan == nil {
		plan = make([]veqi.Action, 0)
	}
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return veqiRow{}, errors.Wrap(err, "marshaling plan actions")
	}
	return veqiRow{
		ID:                 rec.ID,
		SchoolID:           rec.SchoolID,
		Quarter:            rec.Quarter,
		Foundational:       rec.ComponentScores.Foundational,
		TimeOnTask:         rec.ComponentScores.TimeOnTask,
		DigitalPractice:    rec.ComponentScores.DigitalPractice,
		TransitionExposure: rec.ComponentScores.TransitionExposure,
		EnvironmentHealth:  rec.ComponentScores.EnvironmentHealth,
		TotalScore:         rec.TotalScore,
		PlanActions:        planJSON,
		CreatedAt:          rec.CreatedAt.UTC(),
		UpdatedAt:          rec.UpdatedAt.UTC(),
	}, nil
}

func (repo veqiRepository) entity(row veqiRow) (veqi.Record, error) {
	plan := make([]veqi.Action, 0)
	if len(row.PlanActions) > 0 {
		if err := json.Unmarshal(row.PlanActions, &plan); err != nil {
			return veqi.Record{}, errors.Wrap(err, "unmarshaling plan actions")
		}
	}
	return veqi.Record{
		ID:       row.ID,
		SchoolID: row.SchoolID,
		Quarter:  row.Quarter,
		ComponentScores: veqi.ComponentScores{
			Foundational:       row.Foundational,
			TimeOnTask:         row.TimeOnTask,
			DigitalPractice:    row.DigitalPractice,
			TransitionExposure: row.TransitionExposure,
			EnvironmentHealth:  row.EnvironmentHealth,
		},
		TotalScore:  row.TotalScore,
		PlanActions: plan,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

// UpsertRecord relies on the (school_id, quarter) unique constraint: a
// conflicting insert turns into an update that keeps the stored id and
// created_at.
func (repo veqiRepository) UpsertRecord(ctx context.Context, rec veqi.Record) (veqi.Record, error) {
	rec.ID = uuid.New().String()
	row, err := repo.row(rec)
	if err != nil {
		return veqi.Record{}, err
	}

	var saved veqiRow
	query := `
		INSERT INTO veqi_records (id, school_id, quarter, foundational, time_on_task, digital_practice,
		                          transition_exposure, environment_health, total_score, plan_actions,
		                          created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (school_id, quarter) DO UPDATE
		SET foundational        = EXCLUDED.foundational,
		    time_on_task        = EXCLUDED.time_on_task,
		    digital_practice    = EXCLUDED.digital_practice,
		    transition_exposure = EXCLUDED.transition_exposure,
		    environment_health  = EXCLUDED.environment_health,
		    total_score         = EXCLUDED.total_score,
		    plan_actions        = EXCLUDED.plan_actions,
		    updated_at          = EXCLUDED.updated_at
		RETURNING *`
	err = repo.db.GetContext(ctx, &saved, query,
		row.ID, row.SchoolID, row.Quarter, row.Foundational, row.TimeOnTask, row.DigitalPractice,
		row.TransitionExposure, row.EnvironmentHealth, row.TotalScore, row.PlanActions,
		row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return veqi.Record{}, errors.Wrap(err, "upserting record")
	}
	return repo.entity(saved)
}

func (repo veqiRepository) GetRecord(ctx context.Context, schoolID, quarter string) (veqi.Record, error) {
	var row veqiRow
	query := `SELECT * FROM veqi_records WHERE school_id = $1 AND quarter = $2`
	if err := repo.db.GetContext(ctx, &row, query, schoolID, quarter); err != nil {
		if err == sql.ErrNoRows {
			return veqi.Record{}, veqi.ErrRecordNotFound
		}
		return veqi.Record{}, errors.Wrap(err, "getting record")
	}
	return repo.entity(row)
}

func (repo veqiRepository) QueryRecordsBySchool(ctx context.Context, schoolID string) ([]veqi.Record, error) {
	var rows []veqiRow
	query := `SELECT * FROM veqi_records WHERE school_id = $1 ORDER BY quarter DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, schoolID); err != nil {
		return nil, errors.Wrap(err, "querying records")
	}
	records := make([]veqi.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := repo.entity(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
