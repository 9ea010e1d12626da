package school

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/vsip/core"
)

var errEmptyImport = errors.New("no students found in file")

// ImportStudents bulk-creates students of a class from CSV content with
// "roll,name" columns. A header row is skipped when present. All students are
// created active with no bands; bands are set by their first assessments.
func (svc *Service) ImportStudents(ctx context.Context, classID string, r io.Reader) ([]Student, error) {
	cls, err := svc.repo.GetClassByID(ctx, classID)
	if err != nil {
		return nil, err
	}

	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = 2
	rdr.TrimLeadingSpace = true

	now := time.Now().UTC()
	stds := make([]Student, 0)
	for i := 0; ; i++ {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading row %d", i+1)
		}
		if i == 0 && strings.EqualFold(rec[0], "roll") {
			continue // header
		}

		roll, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, core.NewValidationError(
				errors.Wrapf(err, "row %d", i+1),
				core.FieldError{Field: "roll", Error: "roll must be a number"},
			)
		}
		name := core.CleanString(rec[1])
		if name == "" {
			return nil, core.NewValidationError(
				errors.Errorf("row %d", i+1),
				core.FieldError{Field: "name", Error: "this field is required"},
			)
		}

		stds = append(stds, Student{
			SchoolID:  cls.SchoolID,
			ClassID:   cls.ID,
			Roll:      roll,
			Name:      name,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if len(stds) == 0 {
		return nil, core.NewValidationError(errEmptyImport)
	}
	return svc.repo.CreateStudents(ctx, stds)
}
