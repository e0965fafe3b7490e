package user

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the academic background and targets that parameterize discovery.
type Profile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	FirstName      string `gorm:"column:first_name" json:"first_name"`
	LastName       string `gorm:"column:last_name" json:"last_name"`
	MobileNumber   string `gorm:"column:mobile_number" json:"mobile_number"`
	EducationLevel string `gorm:"column:education_level" json:"education_level"`
	Major          string `gorm:"column:major" json:"major"`
	GraduationYear int    `gorm:"column:graduation_year" json:"graduation_year"`

	GPA   *float64 `gorm:"column:gpa" json:"gpa,omitempty"`
	IELTS *float64 `gorm:"column:ielts" json:"ielts,omitempty"`
	TOEFL *int     `gorm:"column:toefl" json:"toefl,omitempty"`
	GRE   *int     `gorm:"column:gre" json:"gre,omitempty"`
	GMAT  *int     `gorm:"column:gmat" json:"gmat,omitempty"`

	SOPStatus string `gorm:"column:sop_status" json:"sop_status"`
	LORStatus string `gorm:"column:lor_status" json:"lor_status"`

	TargetDegree  string `gorm:"column:target_degree" json:"target_degree"`
	TargetField   string `gorm:"column:target_field" json:"target_field"`
	TargetCountry string `gorm:"column:target_country" json:"target_country"`
	TargetIntake  string `gorm:"column:target_intake" json:"target_intake"`
	BudgetRange   string `gorm:"column:budget_range" json:"budget_range"`
	FundingPlan   string `gorm:"column:funding_plan" json:"funding_plan"`

	IsComplete bool      `gorm:"not null;default:false;column:is_complete" json:"is_complete"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "profile" }
