package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/scrypster/brahma/pkg/types"
)

// Classification is the typed result of the intent/emotion prompt.
type Classification struct {
	Intent  string `json:"intent"`
	Emotion string `json:"emotion"`
}

// ReasoningResult is the typed result of the reasoning prompt.
type ReasoningResult struct {
	ReasoningTrace  string  `json:"reasoningTrace"`
	FinalResponse   string  `json:"finalResponse"`
	ConfidenceScore float64 `json:"confidenceScore"`
	SynthesisLog    string  `json:"synthesisLog"`
}

// extractJSON extracts the first complete JSON object from a string that may
// contain extra text. LLMs add explanations and markdown fences despite
// instructions; this walks braces outside string literals to find the object
// boundaries.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return text // no JSON found, let the parser fail with context
	}

	braceCount := 0
	inString := false
	escape := false

	for i := start; i < len(text); i++ {
		char := text[i]

		if escape {
			escape = false
			continue
		}
		if char == '\\' {
			escape = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			switch char {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return text[start:]
}

// ParseClassification parses the intent/emotion classification response. An
// empty intent is treated as a parse failure: classification is fatal to the
// turn and must not silently degrade.
func ParseClassification(raw string) (*Classification, error) {
	var c Classification
	if err := json.Unmarshal([]byte(extractJSON(raw)), &c); err != nil {
		return nil, fmt.Errorf("failed to parse classification response: %w", err)
	}
	if c.Intent == "" {
		return nil, fmt.Errorf("classification response missing intent")
	}
	if c.Emotion == "" {
		c.Emotion = "neutral"
	}
	return &c, nil
}

// actionPattern matches a protocol tool invocation of the form
// `Action: toolName({...})`. The argument object may be empty.
var actionPattern = regexp.MustCompile(`(?m)^\s*Action:\s*(\w+)\s*\((.*)\)\s*$`)

// ParseAction extracts a tool invocation from a reasoning iteration, if
// present. It returns the tool name and the raw JSON argument string.
func ParseAction(raw string) (name string, args string, ok bool) {
	m := actionPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// ParseReasoning parses the final reasoning output. It returns nil (no error)
// when the response holds no usable output; the caller converts that into the
// canned degraded response rather than an error. The confidence score is
// clamped to [0,1].
func ParseReasoning(raw string) *ReasoningResult {
	var r ReasoningResult
	if err := json.Unmarshal([]byte(extractJSON(raw)), &r); err != nil {
		return nil
	}
	if r.FinalResponse == "" {
		return nil
	}
	if r.ConfidenceScore < 0 {
		r.ConfidenceScore = 0
	}
	if r.ConfidenceScore > 1 {
		r.ConfidenceScore = 1
	}
	return &r
}

// ParseGraph parses an ontology-building response into a KnowledgeGraph. It
// returns nil for empty or schema-incompatible output; callers must treat nil
// gracefully, not as an error. Nodes with unknown types and edges with
// unknown relationships or dangling endpoints are dropped rather than
// rejecting the whole graph.
func ParseGraph(raw string) *types.KnowledgeGraph {
	var g types.KnowledgeGraph
	if err := json.Unmarshal([]byte(extractJSON(raw)), &g); err != nil {
		return nil
	}

	var nodes []types.GraphNode
	for _, n := range g.Nodes {
		if n.ID == "" || !types.ValidNodeType(n.Type) {
			continue
		}
		nodes = append(nodes, n)
	}
	g.Nodes = nodes

	if len(g.Nodes) == 0 {
		return nil
	}

	var edges []types.GraphEdge
	for _, e := range g.Edges {
		if !types.ValidRelationType(e.Relationship) {
			continue
		}
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			continue
		}
		if e.Weight != nil {
			w := *e.Weight
			if w < 0 || w > 1 {
				e.Weight = nil
			}
		}
		edges = append(edges, e)
	}
	g.Edges = edges

	return &g
}
