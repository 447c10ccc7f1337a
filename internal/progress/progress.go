// Package progress derives display statistics from goal snapshots.
// Every function is pure and safe to call on copies handed out by the store.
package progress

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/templui/goaltracker/internal/model"
)

const (
	SortByTarget   = "target"
	SortByProgress = "progress"
)

const day = 24 * time.Hour

// FromMilestones is the single progress formula: round(100*completed/total),
// or 0 when there are no milestones.
func FromMilestones(milestones []model.Milestone) int {
	total := len(milestones)
	if total == 0 {
		return 0
	}
	completed := 0
	for _, m := range milestones {
		if m.Completed {
			completed++
		}
	}
	return roundPercent(completed, total)
}

// GoalProgress recomputes progress from the goal's milestones, ignoring the stored field.
func GoalProgress(g *model.Goal) int {
	if g == nil {
		return 0
	}
	return FromMilestones(g.Milestones)
}

// Overall is the rounded mean of each goal's stored progress.
func Overall(goals []*model.Goal) int {
	if len(goals) == 0 {
		return 0
	}
	sum := 0
	for _, g := range goals {
		sum += g.Progress
	}
	return roundDiv(sum, len(goals))
}

// DaysRemaining returns ceil((target-now)/24h). Overdue goals yield a negative
// count. ok is false when the goal has no valid target.
func DaysRemaining(g *model.Goal, now time.Time) (days int, ok bool) {
	if g == nil || g.Target.IsZero() {
		return 0, false
	}
	diff := g.Target.Sub(now)
	return int(math.Ceil(float64(diff) / float64(day))), true
}

type Status string

const (
	StatusCompleted  Status = "completed"
	StatusInProgress Status = "inProgress"
	StatusNotStarted Status = "notStarted"
)

func StatusOf(g *model.Goal) Status {
	switch {
	case g.Progress >= 100:
		return StatusCompleted
	case g.Progress > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// Buckets partitions goals by status. Every goal lands in exactly one bucket.
type Buckets struct {
	Completed  []*model.Goal `json:"completed"`
	InProgress []*model.Goal `json:"inProgress"`
	NotStarted []*model.Goal `json:"notStarted"`
}

func Bucket(goals []*model.Goal) Buckets {
	b := Buckets{
		Completed:  []*model.Goal{},
		InProgress: []*model.Goal{},
		NotStarted: []*model.Goal{},
	}
	for _, g := range goals {
		switch StatusOf(g) {
		case StatusCompleted:
			b.Completed = append(b.Completed, g)
		case StatusInProgress:
			b.InProgress = append(b.InProgress, g)
		default:
			b.NotStarted = append(b.NotStarted, g)
		}
	}
	return b
}

type CategoryStat struct {
	Category        model.Category `json:"category"`
	Label           string         `json:"label"`
	Color           string         `json:"color"`
	Count           int            `json:"count"`
	AverageProgress int            `json:"averageProgress"`
}

// CategoryBreakdown groups goals by category, sorted by average progress
// descending. Ties keep first-seen order.
func CategoryBreakdown(goals []*model.Goal) []CategoryStat {
	type acc struct {
		count int
		total int
	}
	var order []model.Category
	groups := make(map[model.Category]*acc)
	for _, g := range goals {
		a, ok := groups[g.Category]
		if !ok {
			a = &acc{}
			groups[g.Category] = a
			order = append(order, g.Category)
		}
		a.count++
		a.total += g.Progress
	}

	stats := make([]CategoryStat, 0, len(order))
	for _, c := range order {
		a := groups[c]
		stats = append(stats, CategoryStat{
			Category:        c,
			Label:           c.Label(),
			Color:           c.Color(),
			Count:           a.count,
			AverageProgress: roundDiv(a.total, a.count),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].AverageProgress > stats[j].AverageProgress
	})
	return stats
}

// NextDeadline returns the open goal with the earliest target, or nil.
func NextDeadline(goals []*model.Goal) *model.Goal {
	var next *model.Goal
	for _, g := range goals {
		if g.CompletedAt != nil || g.Target.IsZero() {
			continue
		}
		if next == nil || g.Target.Before(next.Target) {
			next = g
		}
	}
	return next
}

// Filter keeps goals whose title or description contains query
// (case-insensitive) and, when category is non-empty, whose category matches.
func Filter(goals []*model.Goal, query string, category model.Category) []*model.Goal {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]*model.Goal, 0, len(goals))
	for _, g := range goals {
		if category != "" && g.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(g.Title), q) &&
			!strings.Contains(strings.ToLower(g.Description), q) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Sort orders goals in place: SortByTarget ascending, SortByProgress descending.
// Unknown keys leave the order untouched.
func Sort(goals []*model.Goal, by string) {
	switch by {
	case SortByTarget:
		sort.SliceStable(goals, func(i, j int) bool {
			return goals[i].Target.Before(goals[j].Target)
		})
	case SortByProgress:
		sort.SliceStable(goals, func(i, j int) bool {
			return goals[i].Progress > goals[j].Progress
		})
	}
}

type Summary struct {
	Total           int            `json:"total"`
	OverallProgress int            `json:"overallProgress"`
	Completed       int            `json:"completed"`
	InProgress      int            `json:"inProgress"`
	NotStarted      int            `json:"notStarted"`
	Categories      []CategoryStat `json:"categories"`
	NextDeadline    *Deadline      `json:"nextDeadline,omitempty"`
}

type Deadline struct {
	GoalID        string    `json:"goalId"`
	Title         string    `json:"title"`
	Target        time.Time `json:"target"`
	DaysRemaining int       `json:"daysRemaining"`
}

func Summarize(goals []*model.Goal, now time.Time) Summary {
	b := Bucket(goals)
	s := Summary{
		Total:           len(goals),
		OverallProgress: Overall(goals),
		Completed:       len(b.Completed),
		InProgress:      len(b.InProgress),
		NotStarted:      len(b.NotStarted),
		Categories:      CategoryBreakdown(goals),
	}
	if next := NextDeadline(goals); next != nil {
		days, _ := DaysRemaining(next, now)
		s.NextDeadline = &Deadline{
			GoalID:        next.ID,
			Title:         next.Title,
			Target:        next.Target,
			DaysRemaining: days,
		}
	}
	return s
}

func roundPercent(part, total int) int {
	return int(math.Round(100 * float64(part) / float64(total)))
}

func roundDiv(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}
