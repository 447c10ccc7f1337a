package validation

import (
	"net/url"
	"strconv"

	"github.com/templui/goaltracker/internal/model"
)

// ValidateGoal checks a goal about to be created, including its embedded milestones.
func ValidateGoal(g *model.Goal) error {
	var fe fieldErrors
	fe.required("title", g.Title, MaxTitleLength)
	fe.required("description", g.Description, MaxDescriptionLength)
	fe.maxLength("notes", g.Notes, MaxNotesLength)

	if !g.Category.Valid() {
		fe.add("category", "is not a known category")
	}
	if g.Target.IsZero() {
		fe.add("target", "is required")
	}
	if g.ReminderFrequency != "" && !g.ReminderFrequency.Valid() {
		fe.add("reminderFrequency", "must be daily, weekly, monthly or none")
	}
	if g.ImageURL != "" && !validURL(g.ImageURL) {
		fe.add("imageUrl", "must be an absolute URL")
	}

	seen := make(map[string]bool, len(g.Milestones))
	for i := range g.Milestones {
		m := &g.Milestones[i]
		prefix := milestoneField(i)
		fe.required(prefix+".title", m.Title, MaxTitleLength)
		fe.maxLength(prefix+".description", m.Description, MaxDescriptionLength)
		if m.ID == "" {
			continue
		}
		if seen[m.ID] {
			fe.add(prefix+".id", "is duplicated")
		}
		seen[m.ID] = true
	}

	return fe.err()
}

// ValidateGoalPatch checks only the fields present in the patch.
func ValidateGoalPatch(p model.GoalPatch) error {
	var fe fieldErrors
	if p.Empty() {
		fe.add("patch", "has no fields")
		return fe.err()
	}
	if p.Title != nil {
		fe.required("title", *p.Title, MaxTitleLength)
	}
	if p.Description != nil {
		fe.required("description", *p.Description, MaxDescriptionLength)
	}
	if p.Notes != nil {
		fe.maxLength("notes", *p.Notes, MaxNotesLength)
	}
	if p.Category != nil && !p.Category.Valid() {
		fe.add("category", "is not a known category")
	}
	if p.Target != nil && p.Target.IsZero() {
		fe.add("target", "is required")
	}
	if p.ReminderFrequency != nil && !p.ReminderFrequency.Valid() {
		fe.add("reminderFrequency", "must be daily, weekly, monthly or none")
	}
	if p.ImageURL != nil && *p.ImageURL != "" && !validURL(*p.ImageURL) {
		fe.add("imageUrl", "must be an absolute URL")
	}
	return fe.err()
}

func ValidateMilestone(m *model.Milestone) error {
	var fe fieldErrors
	fe.required("title", m.Title, MaxTitleLength)
	fe.maxLength("description", m.Description, MaxDescriptionLength)
	return fe.err()
}

func ValidateMilestonePatch(p model.MilestonePatch) error {
	var fe fieldErrors
	if p.Empty() {
		fe.add("patch", "has no fields")
		return fe.err()
	}
	if p.Title != nil {
		fe.required("title", *p.Title, MaxTitleLength)
	}
	if p.Description != nil {
		fe.maxLength("description", *p.Description, MaxDescriptionLength)
	}
	if p.DueDate != nil && p.DueDate.IsZero() {
		fe.add("dueDate", "must be an ISO-8601 date")
	}
	return fe.err()
}

func milestoneField(i int) string {
	return "milestones[" + strconv.Itoa(i) + "]"
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}
