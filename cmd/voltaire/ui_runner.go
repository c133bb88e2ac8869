package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"voltaire/internal/driver"
	"voltaire/internal/ui"
)

type batchOutcome struct {
	results []driver.FileResult
	err     error
}

// runBatchWithUI checks files while a Bubble Tea program renders progress on stdout.
func runBatchWithUI(ctx context.Context, title string, files []string, checker *driver.Checker, jobs int) ([]driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		res, err := checker.CheckFiles(ctx, files, jobs, driver.ChannelSink{Ch: events})
		outcomeCh <- batchOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// UI могла закрыться раньше (Ctrl+C): дочитываем события, чтобы воркеры не встали
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil && ctx.Err() == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
