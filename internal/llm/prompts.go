// Package llm provides LLM integration for the Brahma pipeline: intent and
// emotion classification, protocol-driven reasoning, and ontology (knowledge
// graph) generation. It includes strict JSON-only prompt templates and
// response parsers that work with Ollama and OpenAI models.
package llm

import (
	"fmt"
	"strings"

	"github.com/scrypster/brahma/pkg/types"
)

// ClassificationPrompt generates a strict JSON-only prompt classifying a
// query's intent and emotional tone. Both labels are free-form strings chosen
// by the model; the examples are suggestions, not an enum.
func ClassificationPrompt(userQuery string) string {
	return fmt.Sprintf(`TASK: Classify the intent and emotional tone of a user query.
OUTPUT: ONLY valid JSON. NO markdown. NO code blocks. NO backticks.

REQUIRED JSON STRUCTURE:
{
  "intent": "the user's primary goal (e.g. 'ask_question', 'request_action', 'provide_feedback', 'casual_conversation')",
  "emotion": "the dominant emotional tone (e.g. 'curious', 'frustrated', 'excited', 'neutral', 'confused')"
}

User Query: %q`, userQuery)
}

// ReasoningPromptInput carries everything the reasoning prompt needs: the
// classified query, the preferred context (graph summary over legacy document
// text), conversation history, the tool catalog, and any tool observations
// accumulated by previous protocol iterations.
type ReasoningPromptInput struct {
	UserQuery       string
	Intent          string
	Emotion         string
	GraphSummary    string // preferred context source
	DocumentContext string // legacy fallback when no graph exists
	History         []types.ChatHistoryEntry
	ToolCatalog     string   // one "name: description" line per tool
	Observations    []string // "toolName -> result" lines from earlier iterations
}

// reasoningProtocol is the fixed internal protocol the reasoning prompt
// enforces. It is a prompting convention: the contract downstream code relies
// on is the shape of the JSON output, not the monologue content.
const reasoningProtocol = `You are Brahma, a brain-replica AI that learns how to learn. Your identity as Brahma is core to your function. When asked who you are, respond from this perspective. Never state that you are a large language model.

PROTOCOL: PERCEIVE -> THINK -> ACT -> REFLECT -> RESPOND

1. PERCEIVE: You have the user's query, their detected intent and emotion, and (when available) a knowledge graph summary. The knowledge graph is your primary source of truth.
2. THINK: Internal monologue. Start with "Thought:". Decide whether the context answers the query or a tool is needed.
3. ACT: To use a tool, respond with ONLY a single line of the form:
   Action: toolName({"arg": "value"})
   The system will run the tool and re-invoke you with an Observation. Use at most one tool per iteration.
4. REFLECT: Before answering, start a "Reflection:" section. Check the response is helpful, harmless, unbiased and respectful; match the user's tone and emotional state; assign a confidence score; note whether the reasoning strategy suited this intent.
5. RESPOND: Produce ONE JSON object, nothing else:
{
  "reasoningTrace": "the full Thought/Action/Observation/Reflection chain",
  "finalResponse": "the final, user-facing response, warm and adapted to the user's emotion",
  "confidenceScore": 0.0,
  "synthesisLog": "a brief justification of why the response is good"
}`

// ReasoningPrompt renders the full reasoning prompt for one protocol
// iteration.
func ReasoningPrompt(in ReasoningPromptInput) string {
	var b strings.Builder

	b.WriteString(reasoningProtocol)
	b.WriteString("\n\nAVAILABLE TOOLS:\n")
	b.WriteString(in.ToolCatalog)

	fmt.Fprintf(&b, "\n\nThe user's query is: %q\n", in.UserQuery)
	fmt.Fprintf(&b, "- Detected Intent: %s\n", in.Intent)
	fmt.Fprintf(&b, "- Detected Emotion: %s\n", in.Emotion)

	switch {
	case in.GraphSummary != "":
		fmt.Fprintf(&b, "- Knowledge Graph Context (Primary Memory Source): %s\n", in.GraphSummary)
	case in.DocumentContext != "":
		fmt.Fprintf(&b, "- Document Context (Legacy): %s\n", in.DocumentContext)
	}

	if len(in.History) > 0 {
		b.WriteString("Chat History:\n")
		for _, h := range in.History {
			fmt.Fprintf(&b, "  %s: %s\n", h.Sender, h.Text)
		}
	}

	for _, obs := range in.Observations {
		fmt.Fprintf(&b, "Observation: %s\n", obs)
	}

	b.WriteString("\nBegin your thought process now. Either call a tool with an Action line, or output the final JSON object.")
	return b.String()
}

// OntologyPrompt generates the knowledge-graph extraction prompt. The output
// schema matches types.KnowledgeGraph: a one-paragraph summary, typed nodes
// with machine-readable IDs, and typed edges between them.
func OntologyPrompt(text string) string {
	return fmt.Sprintf(`You are an advanced AI assistant acting as an Ontology Builder. Analyze the following text and construct a knowledge graph from it.

Text to Analyze:
'''
%s
'''

Based ONLY on the provided text:
1. Summary: write a concise, one-paragraph summary of the text.
2. Nodes: identify the key concepts, entities, topics, emotions and actions. Use clear machine-readable ids (e.g. 'concept_distributed_ledger') and one of the types: Concept, Entity, Emotion, Topic, Action. Emotion nodes may carry {"intensity": 0.0-1.0} in their metadata.
3. Edges: infer 2-5 meaningful relationships between the nodes, using only these relationship types: is-a, part-of, causes, enables, related-to, antonym-of, seen-in, feels-like, explains, used-for.

OUTPUT: ONLY valid JSON matching this structure. NO markdown. NO code blocks.
{
  "summary": "...",
  "nodes": [{"id": "...", "label": "...", "type": "Concept", "description": "...", "metadata": {}}],
  "edges": [{"source": "...", "target": "...", "relationship": "related-to", "description": "...", "weight": 0.5}]
}

If the text is unsupported or too short to analyze, return empty arrays for nodes and edges.`, text)
}
