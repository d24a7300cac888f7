// Package mcp provides an MCP (Model Context Protocol) server that exposes the
// focusboard task list, focus timer and statistics as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/focusboard/internal/core"
	"github.com/valter-silva-au/focusboard/internal/observability"
	"github.com/valter-silva-au/focusboard/pkg/models"
)

// Server wraps a dashboard and exposes its operations as MCP tools.
type Server struct {
	server      *gomcp.Server
	board       *core.Dashboard
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server over board. metricsCalc and alertEngine
// may be nil if observability is disabled.
func NewServer(board *core.Dashboard, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		board:       board,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "focusboard", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves MCP over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type createTaskInput struct {
	Title       string `json:"title" jsonschema:"the task title; must not be blank"`
	Description string `json:"description,omitempty" jsonschema:"optional longer description"`
	Priority    string `json:"priority,omitempty" jsonschema:"high, medium or low (default medium)"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"optional due date as YYYY-MM-DD"`
}

type taskOutput struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date,omitempty"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

type taskIDInput struct {
	ID int64 `json:"id" jsonschema:"the numeric task id"`
}

type completeTaskOutput struct {
	Completed bool   `json:"completed"`
	Message   string `json:"message"`
}

type deleteTaskOutput struct {
	Message string `json:"message"`
}

type listTasksInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"all, pending or completed (default all)"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type getTimerInput struct{}

type timerOutput struct {
	Mode             string  `json:"mode"`
	RemainingSeconds int     `json:"remaining_seconds"`
	Running          bool    `json:"running"`
	Display          string  `json:"display"`
	Progress         float64 `json:"progress"`
}

type controlTimerInput struct {
	Action string `json:"action" jsonschema:"start, pause, reset or switch_mode"`
	Mode   string `json:"mode,omitempty" jsonschema:"work or break; required for switch_mode"`
}

type getStatisticsInput struct{}

type statisticsOutput struct {
	CompletedSessions int    `json:"completed_sessions"`
	FocusedMinutes    int    `json:"focused_minutes"`
	FocusedDisplay    string `json:"focused_display"`
	TasksTotal        int    `json:"tasks_total"`
	TasksPending      int    `json:"tasks_pending"`
	TasksCompleted    int    `json:"tasks_completed"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated    int            `json:"tasks_created"`
	TasksCompleted  int            `json:"tasks_completed"`
	TasksDeleted    int            `json:"tasks_deleted"`
	TasksByPriority map[string]int `json:"tasks_by_priority"`
	TimerStarts     int            `json:"timer_starts"`
	WorkSessions    int            `json:"work_sessions"`
	BreaksTaken     int            `json:"breaks_taken"`
	FocusMinutes    int            `json:"focus_minutes"`
	EventCount      int            `json:"event_count"`
	OldestEvent     string         `json:"oldest_event,omitempty"`
	NewestEvent     string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "create_task",
		Description: "Create a pending task. Returns the created task with its id.",
	}, s.handleCreateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_task",
		Description: "Mark a pending task as completed. Completing an unknown or already completed task reports completed=false.",
	}, s.handleCompleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task by id. Deleting an unknown id succeeds without changes.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks in creation order with an optional filter (all, pending, completed).",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_timer",
		Description: "Get the focus timer: mode, remaining seconds, running flag and MM:SS display.",
	}, s.handleGetTimer)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "control_timer",
		Description: "Start, pause or reset the focus timer, or switch it to work or break mode.",
	}, s.handleControlTimer)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_statistics",
		Description: "Get lifetime focus statistics and task counts.",
	}, s.handleGetStatistics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log: tasks created, completed and deleted, work sessions, breaks and focus minutes.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (overdue tasks, tasks due soon, too many pending tasks).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleCreateTask(_ context.Context, _ *gomcp.CallToolRequest, input createTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	priority, err := models.ParsePriority(input.Priority)
	if err != nil {
		return errorResult(err.Error()), taskOutput{}, nil
	}

	task, err := s.board.Tasks.Create(models.TaskInput{
		Title:       input.Title,
		Description: input.Description,
		Priority:    priority,
		DueDate:     input.DueDate,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("creating task: %s", err)), taskOutput{}, nil
	}

	return nil, taskToOutput(*task), nil
}

func (s *Server) handleCompleteTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, completeTaskOutput, error) {
	ok, err := s.board.Tasks.Complete(input.ID)
	if err != nil {
		return errorResult(fmt.Sprintf("completing task %d: %s", input.ID, err)), completeTaskOutput{}, nil
	}

	out := completeTaskOutput{Completed: ok}
	if ok {
		out.Message = fmt.Sprintf("task %d completed", input.ID)
	} else {
		out.Message = fmt.Sprintf("task %d not found or already completed", input.ID)
	}
	return nil, out, nil
}

func (s *Server) handleDeleteTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, deleteTaskOutput, error) {
	if err := s.board.Tasks.Delete(input.ID); err != nil {
		return errorResult(fmt.Sprintf("deleting task %d: %s", input.ID, err)), deleteTaskOutput{}, nil
	}
	return nil, deleteTaskOutput{Message: fmt.Sprintf("task %d deleted", input.ID)}, nil
}

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	filter, err := models.ParseTaskFilter(input.Filter)
	if err != nil {
		return errorResult(err.Error()), listTasksOutput{}, nil
	}

	tasks := s.board.Tasks.List(filter)
	out := listTasksOutput{
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(t)
	}
	return nil, out, nil
}

func (s *Server) handleGetTimer(_ context.Context, _ *gomcp.CallToolRequest, _ getTimerInput) (*gomcp.CallToolResult, timerOutput, error) {
	return nil, timerToOutput(s.board.Timer.State()), nil
}

func (s *Server) handleControlTimer(_ context.Context, _ *gomcp.CallToolRequest, input controlTimerInput) (*gomcp.CallToolResult, timerOutput, error) {
	timer := s.board.Timer
	switch strings.ToLower(strings.TrimSpace(input.Action)) {
	case "start":
		timer.Start()
	case "pause":
		timer.Pause()
	case "reset":
		timer.Reset()
	case "switch_mode":
		mode, err := models.ParseTimerMode(input.Mode)
		if err != nil {
			return errorResult(err.Error()), timerOutput{}, nil
		}
		if err := timer.SwitchMode(mode); err != nil {
			return errorResult(err.Error()), timerOutput{}, nil
		}
	default:
		return errorResult(fmt.Sprintf("invalid action %q: must be one of start, pause, reset, switch_mode", input.Action)), timerOutput{}, nil
	}
	return nil, timerToOutput(timer.State()), nil
}

func (s *Server) handleGetStatistics(_ context.Context, _ *gomcp.CallToolRequest, _ getStatisticsInput) (*gomcp.CallToolResult, statisticsOutput, error) {
	stats := s.board.Timer.Statistics()
	counts := s.board.Tasks.Counts()
	return nil, statisticsOutput{
		CompletedSessions: stats.CompletedSessions,
		FocusedMinutes:    stats.FocusedMinutes,
		FocusedDisplay:    stats.FocusedDisplay(),
		TasksTotal:        counts.Total,
		TasksPending:      counts.Pending,
		TasksCompleted:    counts.Completed,
	}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}
	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksCreated:    metrics.TasksCreated,
		TasksCompleted:  metrics.TasksCompleted,
		TasksDeleted:    metrics.TasksDeleted,
		TasksByPriority: metrics.TasksByPriority,
		TimerStarts:     metrics.TimerStarts,
		WorkSessions:    metrics.WorkSessions,
		BreaksTaken:     metrics.BreaksTaken,
		FocusMinutes:    metrics.FocusMinutes,
		EventCount:      metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}
	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}
	return nil, out, nil
}

// --- Helpers ---

func taskToOutput(t models.Task) taskOutput {
	out := taskOutput{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.CompletedAt != nil {
		out.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	return out
}

func timerToOutput(s models.TimerState) timerOutput {
	return timerOutput{
		Mode:             string(s.Mode),
		RemainingSeconds: s.RemainingSeconds,
		Running:          s.Running,
		Display:          s.Display(),
		Progress:         s.Progress(),
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{TasksByPriority: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	num, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch s[len(s)-1] {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", s[len(s)-1:])
	}
}
