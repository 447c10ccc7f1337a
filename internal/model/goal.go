package model

import (
	"time"
)

const (
	ReminderDaily   ReminderFrequency = "daily"
	ReminderWeekly  ReminderFrequency = "weekly"
	ReminderMonthly ReminderFrequency = "monthly"
	ReminderNone    ReminderFrequency = "none"
)

// ReminderFrequency is informational only; nothing in this module schedules reminders.
type ReminderFrequency string

func (f ReminderFrequency) Valid() bool {
	switch f {
	case ReminderDaily, ReminderWeekly, ReminderMonthly, ReminderNone:
		return true
	}
	return false
}

type Goal struct {
	ID                string            `json:"id"`
	UserID            string            `json:"-"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Category          Category          `json:"category"`
	Target            time.Time         `json:"target"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	CompletedAt       *time.Time        `json:"completedAt,omitempty"`
	Progress          int               `json:"progress"`
	Milestones        []Milestone       `json:"milestones"`
	ReminderFrequency ReminderFrequency `json:"reminderFrequency"`
	Notes             string            `json:"notes,omitempty"`
	ImageURL          string            `json:"imageUrl,omitempty"`
}

// Color is derived from the category and never stored.
func (g *Goal) Color() string {
	return g.Category.Color()
}

// Milestone returns the index of the milestone with the given id, or -1.
func (g *Goal) Milestone(id string) int {
	for i := range g.Milestones {
		if g.Milestones[i].ID == id {
			return i
		}
	}
	return -1
}

// CompletedMilestones counts milestones marked completed.
func (g *Goal) CompletedMilestones() int {
	n := 0
	for _, m := range g.Milestones {
		if m.Completed {
			n++
		}
	}
	return n
}

// Clone returns a deep copy that shares no slices or pointers with g.
func (g *Goal) Clone() *Goal {
	c := *g
	if g.CompletedAt != nil {
		t := *g.CompletedAt
		c.CompletedAt = &t
	}
	c.Milestones = make([]Milestone, len(g.Milestones))
	for i, m := range g.Milestones {
		c.Milestones[i] = m.Clone()
	}
	return &c
}

// GoalPatch carries the user-editable goal fields. Nil fields are left untouched.
type GoalPatch struct {
	Title             *string            `json:"title,omitempty"`
	Description       *string            `json:"description,omitempty"`
	Category          *Category          `json:"category,omitempty"`
	Target            *time.Time         `json:"target,omitempty"`
	ReminderFrequency *ReminderFrequency `json:"reminderFrequency,omitempty"`
	Notes             *string            `json:"notes,omitempty"`
	ImageURL          *string            `json:"imageUrl,omitempty"`
}

func (p GoalPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil && p.Target == nil &&
		p.ReminderFrequency == nil && p.Notes == nil && p.ImageURL == nil
}

// Apply writes the patch onto g.
func (p GoalPatch) Apply(g *Goal) {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.Category != nil {
		g.Category = *p.Category
	}
	if p.Target != nil {
		g.Target = *p.Target
	}
	if p.ReminderFrequency != nil {
		g.ReminderFrequency = *p.ReminderFrequency
	}
	if p.Notes != nil {
		g.Notes = *p.Notes
	}
	if p.ImageURL != nil {
		g.ImageURL = *p.ImageURL
	}
}
