package school

import "context"

type (
	// GroupedStudent is a student reference within a band group.
	GroupedStudent struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Roll int    `json:"roll"`
		Band Band   `json:"band"`
	}

	// Grouping buckets a class's active students by their current reading and
	// math bands, for TaRL-style (teach at the right level) regrouping.
	Grouping struct {
		ClassID       string                    `json:"class_id"`
		ReadingGroups map[Band][]GroupedStudent `json:"reading_groups"`
		MathGroups    map[Band][]GroupedStudent `json:"math_groups"`
	}
)

// GroupStudentsByBand groups a class's active students by current band.
// Students without an assessed band land in the lowest band of each
// vocabulary.
func (svc *Service) GroupStudentsByBand(ctx context.Context, classID string) (Grouping, error) {
	if _, err := svc.repo.GetClassByID(ctx, classID); err != nil {
		return Grouping{}, err
	}
	stds, err := svc.repo.QueryStudents(ctx, classID)
	if err != nil {
		return Grouping{}, err
	}

	grp := Grouping{
		ClassID:       classID,
		ReadingGroups: make(map[Band][]GroupedStudent),
		MathGroups:    make(map[Band][]GroupedStudent),
	}
	for _, std := range stds {
		if !std.Active {
			continue
		}
		rb := std.ReadingBand
		if rb == "" {
			rb = BandR0
		}
		mb := std.MathBand
		if mb == "" {
			mb = BandA0
		}
		grp.ReadingGroups[rb] = append(grp.ReadingGroups[rb], GroupedStudent{
			ID: std.ID, Name: std.Name, Roll: std.Roll, Band: rb,
		})
		grp.MathGroups[mb] = append(grp.MathGroups[mb], GroupedStudent{
			ID: std.ID, Name: std.Name, Roll: std.Roll, Band: mb,
		})
	}
	return grp, nil
}
