package types

// NodeType classifies a knowledge-graph node.
type NodeType string

const (
	NodeConcept NodeType = "Concept"
	NodeEntity  NodeType = "Entity"
	NodeEmotion NodeType = "Emotion"
	NodeTopic   NodeType = "Topic"
	NodeAction  NodeType = "Action"
)

// ValidNodeType reports whether t is one of the five known node types.
func ValidNodeType(t NodeType) bool {
	switch t {
	case NodeConcept, NodeEntity, NodeEmotion, NodeTopic, NodeAction:
		return true
	}
	return false
}

// RelationType is the closed set of edge relationship kinds.
type RelationType string

const (
	RelIsA       RelationType = "is-a"
	RelPartOf    RelationType = "part-of"
	RelCauses    RelationType = "causes"
	RelEnables   RelationType = "enables"
	RelRelatedTo RelationType = "related-to"
	RelAntonymOf RelationType = "antonym-of"
	RelSeenIn    RelationType = "seen-in"
	RelFeelsLike RelationType = "feels-like"
	RelExplains  RelationType = "explains"
	RelUsedFor   RelationType = "used-for"
)

// ValidRelationType reports whether r is one of the ten known relation kinds.
func ValidRelationType(r RelationType) bool {
	switch r {
	case RelIsA, RelPartOf, RelCauses, RelEnables, RelRelatedTo,
		RelAntonymOf, RelSeenIn, RelFeelsLike, RelExplains, RelUsedFor:
		return true
	}
	return false
}

// GraphNode is a typed node in a knowledge graph. IDs are caller-assigned,
// stable, machine-readable strings (e.g. "concept_blockchain").
type GraphNode struct {
	ID          string                 `json:"id"`
	Label       string                 `json:"label"`
	Type        NodeType               `json:"type"`
	Description string                 `json:"description,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// EmotionIntensity returns the intensity recorded in an Emotion node's
// metadata, or 0 when absent or malformed.
func (n *GraphNode) EmotionIntensity() float64 {
	if n.Metadata == nil {
		return 0
	}
	switch v := n.Metadata["intensity"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// GraphEdge is a typed relationship between two nodes of the same graph.
// Edges must reference node IDs present in the graph; the graph store is
// expected to silently no-op an edge whose endpoints are missing.
type GraphEdge struct {
	Source       string       `json:"source"`
	Target       string       `json:"target"`
	Relationship RelationType `json:"relationship"`
	Description  string       `json:"description,omitempty"`
	Weight       *float64     `json:"weight,omitempty"` // connection strength in [0,1]
}

// KnowledgeGraph is a summary plus typed nodes and relationships extracted
// from source text, used as retrieval context.
type KnowledgeGraph struct {
	Summary string      `json:"summary"`
	Nodes   []GraphNode `json:"nodes"`
	Edges   []GraphEdge `json:"edges"`
}

// HasNode reports whether the graph contains a node with the given ID.
func (g *KnowledgeGraph) HasNode(id string) bool {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return true
		}
	}
	return false
}

// EmotionNodes returns the graph's Emotion-typed nodes.
func (g *KnowledgeGraph) EmotionNodes() []GraphNode {
	var out []GraphNode
	for _, n := range g.Nodes {
		if n.Type == NodeEmotion {
			out = append(out, n)
		}
	}
	return out
}
