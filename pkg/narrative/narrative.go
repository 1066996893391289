// Package narrative turns an insight report into a short plain-language analysis
// produced by a chat-completions model.
package narrative

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"findash-api/pkg/catalog"
	"findash-api/pkg/insight"
	"findash-api/pkg/llm"
)

//go:embed prompt.tmpl
var defaultPrompt string

const (
	// MissingKeyMessage is returned when no chat client could be configured.
	MissingKeyMessage = "Error: the narrative API key was not found."
	// NoAlertPhrase stands in for an absent alert in the prompt.
	NoAlertPhrase = "No significant alert."

	failurePrefix = "Error generating AI analysis: "
)

// ErrNoClient reports a Generator built without a chat client.
var ErrNoClient = errors.New("narrative: no chat client configured")

// PromptData is the value the prompt template is executed with.
type PromptData struct {
	Kind        string
	Symbol      string
	LatestPrice string
	Change24h   string
	Change7d    string
	Change30d   string
	Alert       string
}

// Generator renders the prompt and asks the model for an analysis.
type Generator struct {
	client llm.LLMClient
	prompt *llm.PromptTemplate
	model  string
	logger llm.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithPromptTemplate replaces the built-in prompt.
func WithPromptTemplate(t *llm.PromptTemplate) Option {
	return func(g *Generator) {
		if t != nil {
			g.prompt = t
		}
	}
}

// WithModel selects a model alias from the llm config instead of its default.
func WithModel(alias string) Option {
	return func(g *Generator) { g.model = strings.TrimSpace(alias) }
}

// WithLogger injects the logger used for generation failures.
func WithLogger(l llm.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// DefaultTemplate parses the embedded prompt.
func DefaultTemplate() (*llm.PromptTemplate, error) {
	return llm.ParsePromptTemplate("narrative", defaultPrompt, nil)
}

// NewGenerator builds a Generator. client may be nil, in which case every call
// returns MissingKeyMessage.
func NewGenerator(client llm.LLMClient, opts ...Option) (*Generator, error) {
	g := &Generator{client: client, logger: llm.NewLogger("")}
	for _, opt := range opts {
		opt(g)
	}
	if g.prompt == nil {
		tmpl, err := DefaultTemplate()
		if err != nil {
			return nil, err
		}
		g.prompt = tmpl
	}
	return g, nil
}

// Enabled reports whether a chat client is configured.
func (g *Generator) Enabled() bool { return g != nil && g.client != nil }

// Err returns ErrNoClient when the generator cannot produce analyses.
func (g *Generator) Err() error {
	if !g.Enabled() {
		return ErrNoClient
	}
	return nil
}

// Model returns the model id narratives are requested with, or "" when disabled.
func (g *Generator) Model() string {
	if !g.Enabled() {
		return ""
	}
	cfg := g.client.GetConfig()
	if cfg == nil {
		return g.model
	}
	id, _, _ := cfg.ResolveModel(g.model)
	return id
}

// Close releases the chat client.
func (g *Generator) Close() error {
	if !g.Enabled() {
		return nil
	}
	return g.client.Close()
}

// BuildPrompt renders the prompt for the given asset and report.
func (g *Generator) BuildPrompt(label string, report insight.Report, kind catalog.Kind) (string, error) {
	alert := report.Alert
	if alert == "" {
		alert = NoAlertPhrase
	}
	return g.prompt.Render(PromptData{
		Kind:        kind.Label(),
		Symbol:      strings.ToUpper(strings.TrimSpace(label)),
		LatestPrice: report.LatestPrice,
		Change24h:   report.Change24h,
		Change7d:    report.Change7d,
		Change30d:   report.Change30d,
		Alert:       alert,
	})
}

// Generate returns the model's analysis verbatim. Any failure is reported as a
// user-facing message in place of the analysis; Generate never returns an error.
func (g *Generator) Generate(ctx context.Context, label string, report insight.Report, kind catalog.Kind) string {
	if !g.Enabled() {
		return MissingKeyMessage
	}

	prompt, err := g.BuildPrompt(label, report, kind)
	if err != nil {
		return g.fail(ctx, label, err)
	}

	resp, err := g.client.Chat(ctx, &llm.ChatRequest{
		Model:    g.model,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompt}},
	})
	if err != nil {
		return g.fail(ctx, label, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return g.fail(ctx, label, errors.New("the model returned no choices"))
	}
	return resp.Text()
}

func (g *Generator) fail(ctx context.Context, label string, err error) string {
	g.logger.Error(ctx, err, llm.Fields{"symbol": label, "stage": "narrative"})
	return failurePrefix + err.Error()
}
