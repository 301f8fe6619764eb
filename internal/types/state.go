package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Route identifies which answering path a user turn is dispatched to.
type Route string

const (
	RouteGeneral    Route = "general-query"
	RouteAdditional Route = "additional-query"
	RouteKB         Route = "kb-query"
	RouteGraphRAG   Route = "graphrag-query"
	RouteImage      Route = "image-query"
	RouteFile       Route = "file-query"
	RouteText2SQL   Route = "text2sql-query"
)

// String returns the string representation of the Route
func (r Route) String() string {
	return string(r)
}

// IsValid checks if the route is a valid value
func (r Route) IsValid() bool {
	switch r {
	case RouteGeneral, RouteAdditional, RouteKB, RouteGraphRAG,
		RouteImage, RouteFile, RouteText2SQL:
		return true
	default:
		return false
	}
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Route) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	route := Route(str)
	if !route.IsValid() {
		return fmt.Errorf("invalid route: %s", str)
	}
	*r = route
	return nil
}

// AnswerType classifies the final answer of a turn. Only knowledge and chat
// answers are eligible for the semantic cache.
type AnswerType string

const (
	AnswerKnowledge AnswerType = "knowledge"
	AnswerChat      AnswerType = "chat"
	AnswerReject    AnswerType = "reject"
	AnswerError     AnswerType = "error"
	// AnswerCache marks answers replayed from the semantic cache. Never
	// written back to it.
	AnswerCache AnswerType = "cache"
)

// Cacheable reports whether answers of this type may be written to the
// semantic cache.
func (a AnswerType) Cacheable() bool {
	return a == AnswerKnowledge || a == AnswerChat
}

// RouteDecision is the router's verdict for a turn.
type RouteDecision struct {
	Route      Route   `json:"route"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
	// Heuristic is true when the decision came from the rule-based
	// fallback instead of the LLM.
	Heuristic bool `json:"heuristic,omitempty"`
}

// SubTask is one unit of a planner decomposition. A turn carries at most
// five of them.
type SubTask struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// ToolName identifies a retrieval tool the selector can dispatch to.
type ToolName string

const (
	ToolCypherQuery      ToolName = "cypher_query"
	ToolPredefinedCypher ToolName = "predefined_cypher"
	ToolGraphRAGQuery    ToolName = "graphrag_query"
	ToolText2SQLQuery    ToolName = "text2sql_query"
)

// ToolResult holds the outcome of one tool invocation for one sub-task.
type ToolResult struct {
	Tool    ToolName         `json:"tool"`
	SubTask string           `json:"sub_task"`
	Records []map[string]any `json:"records,omitempty"`
	Text    string           `json:"text,omitempty"`
	Err     string           `json:"error,omitempty"`
}

// ChatTurn is one prior exchange entry in a session's history window.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	// At is when the turn was recorded.
	At       time.Time      `json:"ts"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TurnState is the mutable state threaded through the per-turn workflow
// graph. Nodes read and update it; finalize renders it into a ChatResponse.
type TurnState struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
	Question  string `json:"question"`

	History []ChatTurn `json:"history,omitempty"`

	Decision RouteDecision `json:"decision"`
	Plan     []SubTask     `json:"plan,omitempty"`
	Results  []ToolResult  `json:"results,omitempty"`

	Answer     string     `json:"answer"`
	AnswerType AnswerType `json:"answer_type"`
	Cached     bool       `json:"cached"`

	// Steps records the node names visited, in order.
	Steps []string `json:"steps,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
	Errors   []string       `json:"errors,omitempty"`
}

// NewTurnState creates a turn state for a question within a session.
func NewTurnState(sessionID, userID, question string) *TurnState {
	return &TurnState{
		SessionID: sessionID,
		UserID:    userID,
		Question:  question,
		Metadata:  map[string]any{},
	}
}

// CacheScope returns the key scope for semantic cache entries: the user ID
// when known, otherwise the session ID.
func (s *TurnState) CacheScope() string {
	if s.UserID != "" {
		return s.UserID
	}
	return s.SessionID
}

// SetMeta sets a metadata key, allocating the map if needed.
func (s *TurnState) SetMeta(key string, value any) {
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	s.Metadata[key] = value
}

// SetMetaDefault sets a metadata key only when it is not already present.
func (s *TurnState) SetMetaDefault(key string, value any) {
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	if _, ok := s.Metadata[key]; !ok {
		s.Metadata[key] = value
	}
}

// AddStep appends a visited node name to the step trace.
func (s *TurnState) AddStep(name string) {
	s.Steps = append(s.Steps, name)
}

// AddError records a node error without aborting the turn.
func (s *TurnState) AddError(err error) {
	if err == nil {
		return
	}
	s.Errors = append(s.Errors, err.Error())
}

// ChatResponse is the finalized answer returned to callers.
type ChatResponse struct {
	SessionID string         `json:"session_id"`
	Answer    string         `json:"answer"`
	Type      AnswerType     `json:"type"`
	Cached    bool           `json:"cached"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
