package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/templui/goaltracker/internal/config"
	"github.com/templui/goaltracker/internal/db"
	"github.com/templui/goaltracker/internal/model"
	"github.com/templui/goaltracker/internal/repository"
	"github.com/templui/goaltracker/internal/service"
)

type importFile struct {
	Goals []importGoal `yaml:"goals"`
}

type importGoal struct {
	ID                string            `yaml:"id"`
	Title             string            `yaml:"title"`
	Description       string            `yaml:"description"`
	Category          string            `yaml:"category"`
	Target            string            `yaml:"target"`
	ReminderFrequency string            `yaml:"reminderFrequency"`
	Notes             string            `yaml:"notes"`
	ImageURL          string            `yaml:"imageUrl"`
	Milestones        []importMilestone `yaml:"milestones"`
}

type importMilestone struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Completed   bool   `yaml:"completed"`
	DueDate     string `yaml:"dueDate"`
}

// parseImport decodes a YAML goal list. Dates use the same ISO-8601 forms
// the HTTP API accepts.
func parseImport(r io.Reader) ([]*model.Goal, error) {
	var f importFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&f)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}

	goals := make([]*model.Goal, 0, len(f.Goals))
	for i, ig := range f.Goals {
		prefix := "goals[" + strconv.Itoa(i) + "]."

		target, err := model.ParseTime(prefix+"target", ig.Target)
		if err != nil {
			return nil, err
		}

		g := &model.Goal{
			ID:                ig.ID,
			Title:             ig.Title,
			Description:       ig.Description,
			Category:          model.Category(ig.Category),
			Target:            target,
			ReminderFrequency: model.ReminderFrequency(ig.ReminderFrequency),
			Notes:             ig.Notes,
			ImageURL:          ig.ImageURL,
			Milestones:        make([]model.Milestone, 0, len(ig.Milestones)),
		}

		for j, im := range ig.Milestones {
			m := model.Milestone{
				Title:       im.Title,
				Description: im.Description,
				Completed:   im.Completed,
			}
			if im.DueDate != "" {
				due, err := model.ParseTime(prefix+"milestones["+strconv.Itoa(j)+"].dueDate", im.DueDate)
				if err != nil {
					return nil, err
				}
				m.DueDate = &due
			}
			g.Milestones = append(g.Milestones, m)
		}
		goals = append(goals, g)
	}
	return goals, nil
}

// importGoals adds each goal through the store so progress and validation
// follow the same rules as the API. It stops at the first failure.
func importGoals(ctx context.Context, store *service.GoalStore, goals []*model.Goal) (int, error) {
	for i, g := range goals {
		_, err := store.AddGoal(ctx, g)
		if err != nil {
			return i, fmt.Errorf("goal %d (%q): %w", i, g.Title, err)
		}
	}
	return len(goals), nil
}

func ImportCmd() *cobra.Command {
	var userID, file string

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import goals for a user from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			goals, err := parseImport(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg := config.Load()
			database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(database) }()

			store := service.NewGoalStore(userID,
				repository.NewGoalRepository(database),
				repository.NewMilestoneRepository(database),
			)
			defer store.Close()

			store.Refresh(ctx)
			if err := store.Err(); err != nil {
				return err
			}

			n, err := importGoals(ctx, store, goals)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d goals\n", n, len(goals))
			return err
		},
	}

	importCmd.Flags().StringVar(&userID, "user", "", "owner of the imported goals")
	importCmd.Flags().StringVar(&file, "file", "goals.yaml", "YAML file to import")

	return importCmd
}
