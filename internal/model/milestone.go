package model

import (
	"time"
)

type Milestone struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Clone returns a copy that does not share the due date pointer.
func (m Milestone) Clone() Milestone {
	if m.DueDate != nil {
		d := *m.DueDate
		m.DueDate = &d
	}
	return m
}

type MilestonePatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

func (p MilestonePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil && p.DueDate == nil
}

func (p MilestonePatch) Apply(m *Milestone) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Completed != nil {
		m.Completed = *p.Completed
	}
	if p.DueDate != nil {
		d := *p.DueDate
		m.DueDate = &d
	}
}
