package generation

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// defaultPromptTemplate asks for a single JSON object matching ReminderContent.
const defaultPromptTemplate = `You are a task-management assistant. Write a reminder for the task below.

Task title: {{.Title}}
Description: {{.Description}}
Priority: {{.Priority}}
Status: {{.Status}}
Due: {{.Due}}
Estimated effort: {{.Estimate}}
Urgency: {{.Urgency}}

Style:
- tone: {{.Tone}}
- timing: {{.Timing}}
{{- if .IncludeSuggestions}}
- include one concrete next action in "suggested_action"
{{- end}}
{{- if .IncludeMotivation}}
- include a short encouraging line in "motivation_quote"
{{- end}}

Reply with a single JSON object and nothing else:
{"title": "...", "message": "...", "urgency_level": "low|medium|high|urgent"{{if .IncludeSuggestions}}, "suggested_action": "..."{{end}}{{if .IncludeMotivation}}, "motivation_quote": "..."{{end}}}
`

// promptData is the view of a task and style handed to the template.
type promptData struct {
	Title              string
	Description        string
	Priority           domain.TaskPriority
	Status             domain.TaskStatus
	Due                string
	Estimate           string
	Urgency            domain.UrgencyLevel
	Tone               domain.Tone
	Timing             domain.Timing
	IncludeMotivation  bool
	IncludeSuggestions bool
}

// PromptBuilder renders prompts from a parsed template. It is safe for
// concurrent use.
type PromptBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder parses the built-in template.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		tmpl: template.Must(template.New("reminder").Parse(defaultPromptTemplate)),
	}
}

// LoadPromptBuilder parses the template at path, falling back to the built-in
// template when path is empty.
func LoadPromptBuilder(path string) (*PromptBuilder, error) {
	if path == "" {
		return NewPromptBuilder(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v", ErrInvalidConfig, path, err)
	}

	tmpl, err := template.New("reminder").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// Build renders the prompt for task and style. The output depends only on its
// arguments.
func (b *PromptBuilder) Build(task *domain.Task, style domain.ContentStyle, now time.Time) (string, error) {
	if task == nil || strings.TrimSpace(task.Title) == "" {
		return "", fmt.Errorf("%w: task title is required", ErrInvalidTask)
	}

	data := promptData{
		Title:              task.Title,
		Description:        orDefault(task.Description, "none"),
		Priority:           task.Priority,
		Status:             task.Status,
		Due:                "not set",
		Estimate:           "not estimated",
		Urgency:            domain.UrgencyFor(task, now),
		Tone:               style.Tone,
		Timing:             style.Timing,
		IncludeMotivation:  style.IncludeMotivation,
		IncludeSuggestions: style.IncludeSuggestions,
	}
	if task.DueDate != nil {
		data.Due = task.DueDate.UTC().Format("2006-01-02 15:04 MST")
	}
	if task.EstimatedMinutes != nil {
		data.Estimate = fmt.Sprintf("%d minutes", *task.EstimatedMinutes)
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
