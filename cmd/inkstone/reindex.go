package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"inkstone/internal/config"
	"inkstone/internal/models"
	"inkstone/internal/space"
)

const taskPollInterval = 100 * time.Millisecond

func newReindexCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex <space>",
		Short: "Rebuild the search index for a space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(m *space.Manager) error {
				id, err := m.SubmitReindex(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return waitForTask(m, id, *jsonOutput)
			})
		},
	}
}

func newAnalyzeCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <space> <path>",
		Short: "Run page-layout analysis and fill the layout cache",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(m *space.Manager) error {
				id, err := m.SubmitAnalyze(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return waitForTask(m, id, *jsonOutput)
			})
		},
	}
}

// waitForTask polls a task until it reaches a terminal status and
// reports the outcome.
func waitForTask(m *space.Manager, id string, jsonOutput bool) error {
	var task models.Task
	for {
		var err error
		task, err = m.Task(id)
		if err != nil {
			return err
		}
		if task.Status.Terminal() {
			break
		}
		time.Sleep(taskPollInterval)
	}

	if jsonOutput {
		if err := writeJSON(task); err != nil {
			return err
		}
	} else {
		if err := writePlain("task %s: %s (%d%%)\n", task.ID, task.Status, task.Progress); err != nil {
			return err
		}
	}
	if task.Status == models.TaskFailed {
		return fmt.Errorf("task failed: %s", task.ErrorMessage)
	}
	return nil
}
