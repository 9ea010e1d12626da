package school

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vsip/core"
)

var (
	bandTag  = "band"
	bandText = "invalid band"

	assessmentTypeTag  = "assessment_type"
	assessmentTypeText = "type must be READING or MATH"

	complianceTypeTag  = "compliance_type"
	complianceTypeText = "invalid compliance type"

	complianceStatusTag  = "compliance_status"
	complianceStatusText = "status must be pass, fail or partial"
)

// InitValidators registers the school domain's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(bandTag, bandValidation)
	core.RegisterCustomTranslation(validate, translator, bandTag, bandText)

	_ = validate.RegisterValidation(assessmentTypeTag, assessmentTypeValidation)
	core.RegisterCustomTranslation(validate, translator, assessmentTypeTag, assessmentTypeText)

	_ = validate.RegisterValidation(complianceTypeTag, complianceTypeValidation)
	core.RegisterCustomTranslation(validate, translator, complianceTypeTag, complianceTypeText)

	_ = validate.RegisterValidation(complianceStatusTag, complianceStatusValidation)
	core.RegisterCustomTranslation(validate, translator, complianceStatusTag, complianceStatusText)
}

func bandValidation(fl validator.FieldLevel) bool {
	return Band(fl.Field().String()).IsValid()
}

func assessmentTypeValidation(fl validator.FieldLevel) bool {
	t := fl.Field().String()
	return t == AssessmentReading || t == AssessmentMath
}

func complianceTypeValidation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case CompliancePoshan, ComplianceSanitation, ComplianceMHM, ComplianceInspection:
		return true
	}
	return false
}

func complianceStatusValidation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case StatusPass, StatusFail, StatusPartial:
		return true
	}
	return false
}

// NewSchool contains information needed to create a new School.
type NewSchool struct {
	Name            string          `json:"name" validate:"required"`
	Code            string          `json:"code" validate:"omitempty,alphanum"`
	Mediums         []string        `json:"mediums" validate:"omitempty,dive,required"`
	Grades          []int           `json:"grades" validate:"omitempty,dive,min=1,max=12"`
	FacilitiesFlags map[string]bool `json:"facilities_flags"`
}

func (ns *NewSchool) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code, true /* lower */)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(ctx, ns.Code)
}

// UpdateSchool defines what information may be provided to modify an existing School.
type UpdateSchool struct {
	Name            string          `json:"name"`
	Code            string          `json:"code" validate:"omitempty,alphanum"`
	Mediums         []string        `json:"mediums" validate:"omitempty,dive,required"`
	Grades          []int           `json:"grades" validate:"omitempty,dive,min=1,max=12"`
	FacilitiesFlags map[string]bool `json:"facilities_flags"`
}

func (us *UpdateSchool) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Code = core.CleanString(us.Code, true /* lower */)
	return validate.Struct(us)
}

type NewClass struct {
	SchoolID  string `json:"school_id" validate:"required"`
	Grade     int    `json:"grade" validate:"required,min=1,max=12"`
	Section   string `json:"section" validate:"required,alphanum"`
	TeacherID string `json:"teacher_id"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Section = core.CleanString(nc.Section, true /* lower */)
	return validate.Struct(nc)
}

type UpdateClass struct {
	Section   string `json:"section" validate:"omitempty,alphanum"`
	TeacherID string `json:"teacher_id"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	uc.Section = core.CleanString(uc.Section, true /* lower */)
	return validate.Struct(uc)
}

type NewStudent struct {
	ClassID string `json:"class_id" validate:"required"`
	Roll    int    `json:"roll" validate:"required,min=1"`
	Name    string `json:"name" validate:"required"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

type UpdateStudent struct {
	Name        string `json:"name"`
	ReadingBand Band   `json:"reading_band" validate:"omitempty,band"`
	MathBand    Band   `json:"math_band" validate:"omitempty,band"`
	Active      *bool  `json:"active"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	return validate.Struct(us)
}

type NewSession struct {
	ClassID       string    `json:"class_id" validate:"required"`
	Date          time.Time `json:"date"`
	ActivityIDs   []string  `json:"activity_ids" validate:"omitempty,dive,required"`
	ActiveMinutes int       `json:"active_minutes" validate:"min=0"`
	Notes         string    `json:"notes"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Notes = core.CleanString(ns.Notes)
	return validate.Struct(ns)
}

type UpdateSession struct {
	ActivityIDs   []string `json:"activity_ids" validate:"omitempty,dive,required"`
	ActiveMinutes *int     `json:"active_minutes" validate:"omitempty,min=0"`
	Notes         string   `json:"notes"`
}

func (us *UpdateSession) Validate(validate *validator.Validate) error {
	us.Notes = core.CleanString(us.Notes)
	return validate.Struct(us)
}

type NewAssessment struct {
	StudentID  string    `json:"student_id" validate:"required"`
	ClassID    string    `json:"class_id" validate:"required"`
	Type       string    `json:"type" validate:"required,assessment_type"`
	Date       time.Time `json:"date"`
	ResultBand Band      `json:"result_band" validate:"required,band"`
	WpmOrScore *float64  `json:"wpm_or_score" validate:"omitempty,min=0"`
}

func (na *NewAssessment) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}

type NewUsageLog struct {
	ClassID string    `json:"class_id" validate:"required"`
	Date    time.Time `json:"date"`
	Minutes int       `json:"minutes" validate:"min=0"`
}

func (nu *NewUsageLog) Validate(validate *validator.Validate) error {
	return validate.Struct(nu)
}

type NewComplianceRecord struct {
	SchoolID string    `json:"school_id" validate:"required"`
	Type     string    `json:"type" validate:"required,compliance_type"`
	Date     time.Time `json:"date"`
	Status   string    `json:"status" validate:"required,compliance_status"`
	Remarks  string    `json:"remarks"`
}

func (nc *NewComplianceRecord) Validate(validate *validator.Validate) error {
	nc.Remarks = core.CleanString(nc.Remarks)
	return validate.Struct(nc)
}
