// Package importer seeds an account with tasks, notes and events described
// in a YAML document.
package importer

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/ports"
)

// YAMLTask is a task in the YAML input
type YAMLTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Status      string `yaml:"status,omitempty"`
	Priority    string `yaml:"priority,omitempty"`
	DueDate     string `yaml:"due_date,omitempty"`
}

// YAMLNote is a note in the YAML input
type YAMLNote struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content,omitempty"`
	Color   string `yaml:"color,omitempty"`
	Pinned  bool   `yaml:"pinned,omitempty"`
}

// YAMLEvent is a calendar event in the YAML input
type YAMLEvent struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	Color       string `yaml:"color,omitempty"`
	AllDay      bool   `yaml:"all_day,omitempty"`
}

// YAMLInput is the root of the YAML input
type YAMLInput struct {
	Tasks  []YAMLTask  `yaml:"tasks"`
	Notes  []YAMLNote  `yaml:"notes"`
	Events []YAMLEvent `yaml:"events"`
}

// Target receives the imported entities
type Target interface {
	CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error)
	CreateNote(ctx context.Context, req ports.CreateNoteRequest) (*entities.Note, error)
	TogglePin(ctx context.Context, id int64) (bool, error)
	CreateEvent(ctx context.Context, req ports.CreateEventRequest) (*entities.CalendarEvent, error)
}

// Result counts what was created
type Result struct {
	Tasks  int
	Notes  int
	Events int
}

func (r Result) Total() int { return r.Tasks + r.Notes + r.Events }

// Parse decodes and checks a YAML document without creating anything
func Parse(data []byte) (*YAMLInput, error) {
	var input YAMLInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if len(input.Tasks)+len(input.Notes)+len(input.Events) == 0 {
		return nil, fmt.Errorf("no tasks, notes or events found in YAML")
	}

	for i, yt := range input.Tasks {
		if _, err := taskRequest(yt); err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
	}
	for i, yn := range input.Notes {
		if yn.Title == "" {
			return nil, fmt.Errorf("notes[%d]: note title is required", i)
		}
	}
	for i, ye := range input.Events {
		if _, err := eventRequest(ye); err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
	}

	return &input, nil
}

// Import parses data and creates its entities on target, tasks first, then
// notes, then events. It stops at the first failure; the result counts what
// was created up to that point.
func Import(ctx context.Context, target Target, data []byte) (Result, error) {
	var res Result

	input, err := Parse(data)
	if err != nil {
		return res, err
	}

	for _, yt := range input.Tasks {
		req, _ := taskRequest(yt)
		if _, err := target.CreateTask(ctx, req); err != nil {
			return res, fmt.Errorf("add task %q: %w", yt.Title, err)
		}
		res.Tasks++
	}

	for _, yn := range input.Notes {
		note, err := target.CreateNote(ctx, ports.CreateNoteRequest{Title: yn.Title, Content: yn.Content, Color: yn.Color})
		if err != nil {
			return res, fmt.Errorf("add note %q: %w", yn.Title, err)
		}
		res.Notes++
		if yn.Pinned {
			if _, err := target.TogglePin(ctx, note.ID); err != nil {
				return res, fmt.Errorf("pin note %q: %w", yn.Title, err)
			}
		}
	}

	for _, ye := range input.Events {
		req, _ := eventRequest(ye)
		if _, err := target.CreateEvent(ctx, req); err != nil {
			return res, fmt.Errorf("add event %q: %w", ye.Title, err)
		}
		res.Events++
	}

	return res, nil
}

func taskRequest(yt YAMLTask) (ports.CreateTaskRequest, error) {
	req := ports.CreateTaskRequest{
		Title:    yt.Title,
		Status:   entities.TaskStatus(yt.Status),
		Priority: entities.Priority(yt.Priority),
	}
	if yt.Title == "" {
		return req, fmt.Errorf("task title is required")
	}
	if yt.Status != "" && !req.Status.IsValid() {
		return req, fmt.Errorf("task %q: invalid status %q", yt.Title, yt.Status)
	}
	if yt.Priority != "" && !req.Priority.IsValid() {
		return req, fmt.Errorf("task %q: invalid priority %q", yt.Title, yt.Priority)
	}
	if yt.Description != "" {
		desc := yt.Description
		req.Description = &desc
	}
	if yt.DueDate != "" {
		due, err := ports.ParseFlexTime(yt.DueDate)
		if err != nil {
			return req, fmt.Errorf("task %q: %w", yt.Title, err)
		}
		req.DueDate = &due
	}
	return req, nil
}

func eventRequest(ye YAMLEvent) (ports.CreateEventRequest, error) {
	req := ports.CreateEventRequest{Title: ye.Title, Color: ye.Color, AllDay: ye.AllDay}
	if ye.Title == "" {
		return req, fmt.Errorf("event title is required")
	}
	if ye.Description != "" {
		desc := ye.Description
		req.Description = &desc
	}

	start, err := ports.ParseFlexTime(ye.Start)
	if err != nil {
		return req, fmt.Errorf("event %q start: %w", ye.Title, err)
	}
	end, err := ports.ParseFlexTime(ye.End)
	if err != nil {
		return req, fmt.Errorf("event %q end: %w", ye.Title, err)
	}
	if end.Before(start.Time) {
		return req, fmt.Errorf("event %q: %w", ye.Title, entities.ErrEventTimesInverted)
	}
	req.StartTime, req.EndTime = &start, &end
	return req, nil
}
