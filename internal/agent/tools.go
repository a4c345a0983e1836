package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Tool is one capability the reasoning protocol can invoke mid-iteration.
// Args is the raw JSON object emitted by the model's Action line. Tools
// return a textual observation; the results here are mock responses, per the
// product's current scope.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// ToolRegistry holds the fixed tool set offered to the reasoning prompt.
type ToolRegistry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

// NewToolRegistry returns an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// DefaultToolRegistry returns the standard Brahma tool set: web search,
// weather, time, and math evaluation.
func DefaultToolRegistry() *ToolRegistry {
	r := NewToolRegistry()
	r.Register(&WebSearchTool{})
	r.Register(&WeatherTool{})
	r.Register(&TimeTool{})
	r.Register(&MathTool{})
	return r
}

// Register adds a tool to the registry, replacing any tool of the same name.
func (r *ToolRegistry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get returns the named tool.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Execute runs the named tool with JSON-encoded arguments and returns its
// observation text.
func (r *ToolRegistry) Execute(ctx context.Context, name string, rawArgs string) (string, error) {
	tool, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("tool %q not found", name)
	}

	args := map[string]interface{}{}
	if strings.TrimSpace(rawArgs) != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return "", fmt.Errorf("tool %q: invalid arguments: %w", name, err)
		}
	}

	return tool.Execute(ctx, args)
}

// Catalog renders a stable "name: description" line per tool for prompt
// injection.
func (r *ToolRegistry) Catalog() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", name, r.tools[name].Description())
	}
	return b.String()
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

// WebSearchTool returns a canned search-result summary. There is no real
// search backend in scope.
type WebSearchTool struct{}

func (t *WebSearchTool) Name() string { return "webSearch" }

func (t *WebSearchTool) Description() string {
	return "Searches the web for up-to-date information on a given topic. Use this for current events, facts, or any information not found in the provided context."
}

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	query := stringArg(args, "query")
	if query == "" {
		return "", fmt.Errorf("query is required")
	}
	return fmt.Sprintf("Mock Web Search Result for %q: Recent reports indicate significant advancements in this area, "+
		"with multiple sources confirming the trend. Key figures include a 25%% increase in market adoption over the last quarter.", query), nil
}

// WeatherTool returns a canned weather report for a location.
type WeatherTool struct{}

func (t *WeatherTool) Name() string { return "getWeather" }

func (t *WeatherTool) Description() string {
	return "Gets the current weather for a specified location."
}

func (t *WeatherTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	location := stringArg(args, "location")
	if location == "" {
		return "", fmt.Errorf("location is required")
	}
	return fmt.Sprintf("The weather in %s is mock-currently 72°F and sunny.", location), nil
}

// TimeTool reports the current server time. The timezone argument is
// accepted but not resolved; a real implementation would map it through the
// tz database.
type TimeTool struct {
	// Now allows tests to pin the clock. Defaults to time.Now.
	Now func() time.Time
}

func (t *TimeTool) Name() string { return "getTime" }

func (t *TimeTool) Description() string {
	return "Gets the current time for a specified timezone or location."
}

func (t *TimeTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	return fmt.Sprintf("The mock current time is %s.", now().Format("3:04:05 PM")), nil
}

// MathTool evaluates a mathematical expression. This is a safe mock: it
// handles the worked example from the reasoning protocol and acknowledges
// everything else without evaluating it.
type MathTool struct{}

func (t *MathTool) Name() string { return "runMath" }

func (t *MathTool) Description() string {
	return "Calculates a mathematical expression."
}

func (t *MathTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	expression := stringArg(args, "expression")
	if expression == "" {
		return "", fmt.Errorf("expression is required")
	}
	if expression == "120 * 0.15" {
		return "The result of 120 * 0.15 is 18.", nil
	}
	return fmt.Sprintf("The result of the expression '%s' would be calculated here. (Mock response)", expression), nil
}
