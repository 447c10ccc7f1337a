package handler

import (
	"strconv"

	"github.com/templui/goaltracker/internal/model"
)

// Request bodies carry dates as ISO-8601 strings so malformed values surface
// as field errors instead of decoder failures.

type milestoneRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	DueDate     string `json:"dueDate"`
}

func (req milestoneRequest) toModel(field string) (*model.Milestone, error) {
	m := &model.Milestone{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}
	if req.DueDate != "" {
		due, err := model.ParseTime(field+"dueDate", req.DueDate)
		if err != nil {
			return nil, err
		}
		m.DueDate = &due
	}
	return m, nil
}

type goalRequest struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Category          model.Category     `json:"category"`
	Target            string             `json:"target"`
	CreatedAt         string             `json:"createdAt"`
	ReminderFrequency string             `json:"reminderFrequency"`
	Notes             string             `json:"notes"`
	ImageURL          string             `json:"imageUrl"`
	Milestones        []milestoneRequest `json:"milestones"`
}

func (req goalRequest) toModel() (*model.Goal, error) {
	g := &model.Goal{
		ID:                req.ID,
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		ReminderFrequency: model.ReminderFrequency(req.ReminderFrequency),
		Notes:             req.Notes,
		ImageURL:          req.ImageURL,
		Milestones:        make([]model.Milestone, 0, len(req.Milestones)),
	}

	var err error
	g.Target, err = model.ParseTime("target", req.Target)
	if err != nil {
		return nil, err
	}
	if req.CreatedAt != "" {
		g.CreatedAt, err = model.ParseTime("createdAt", req.CreatedAt)
		if err != nil {
			return nil, err
		}
	}

	for i, mr := range req.Milestones {
		m, err := mr.toModel("milestones[" + strconv.Itoa(i) + "].")
		if err != nil {
			return nil, err
		}
		g.Milestones = append(g.Milestones, *m)
	}
	return g, nil
}

type goalPatchRequest struct {
	Title             *string         `json:"title"`
	Description       *string         `json:"description"`
	Category          *model.Category `json:"category"`
	Target            *string         `json:"target"`
	ReminderFrequency *string         `json:"reminderFrequency"`
	Notes             *string         `json:"notes"`
	ImageURL          *string         `json:"imageUrl"`
}

func (req goalPatchRequest) toPatch() (model.GoalPatch, error) {
	p := model.GoalPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Notes:       req.Notes,
		ImageURL:    req.ImageURL,
	}
	if req.ReminderFrequency != nil {
		f := model.ReminderFrequency(*req.ReminderFrequency)
		p.ReminderFrequency = &f
	}
	if req.Target != nil {
		t, err := model.ParseTime("target", *req.Target)
		if err != nil {
			return model.GoalPatch{}, err
		}
		p.Target = &t
	}
	return p, nil
}

type milestonePatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	DueDate     *string `json:"dueDate"`
}

func (req milestonePatchRequest) toPatch() (model.MilestonePatch, error) {
	p := model.MilestonePatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}
	if req.DueDate != nil {
		t, err := model.ParseTime("dueDate", *req.DueDate)
		if err != nil {
			return model.MilestonePatch{}, err
		}
		p.DueDate = &t
	}
	return p, nil
}

// goalResponse adds the display fields derived at read time.
type goalResponse struct {
	*model.Goal
	Color         string `json:"color"`
	Icon          string `json:"icon"`
	DaysRemaining *int   `json:"daysRemaining,omitempty"`
}
