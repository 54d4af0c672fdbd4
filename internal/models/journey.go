package models

import (
	"time"
)

// Stage is one step of the fixed visa journey.
type Stage struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// JourneyStages is the fixed visa-journey catalog, in order.
var JourneyStages = []Stage{
	{Slug: "i20-issued", Title: "I-20 Issued", Description: "University has issued the Form I-20.", Order: 1},
	{Slug: "sevis-fee", Title: "SEVIS Fee Paid", Description: "I-901 SEVIS fee paid and receipt saved.", Order: 2},
	{Slug: "ds160", Title: "DS-160 Submitted", Description: "DS-160 application completed and confirmation saved.", Order: 3},
	{Slug: "interview-scheduled", Title: "Interview Scheduled", Description: "Visa interview appointment booked.", Order: 4},
	{Slug: "visa-approved", Title: "Visa Approved", Description: "F1 visa approved and stamped.", Order: 5},
	{Slug: "arrival", Title: "Arrival", Description: "Arrived in the US and checked in with the DSO.", Order: 6},
}

// StageBySlug looks up a catalog stage.
func StageBySlug(slug string) (Stage, bool) {
	for _, s := range JourneyStages {
		if s.Slug == slug {
			return s, true
		}
	}
	return Stage{}, false
}

// StageProgress records a user's completion of one journey stage.
type StageProgress struct {
	UserID      string    `gorm:"primaryKey;type:text" json:"user_id"`
	StageSlug   string    `gorm:"primaryKey;type:text" json:"stage_slug"`
	CompletedAt time.Time `json:"completed_at"`
}
