package quiz

// Question types supported by the grading engine.
const (
	TypeMultipleSelect = "multiple-select"
	TypeDragOrder      = "drag-order"
)

// DefaultPassScore applies when a definition does not set passScore.
const DefaultPassScore = 80

// Option is one selectable choice of a multiple-select question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Item is one orderable entry of a drag-order question.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is a single quiz question. Options is populated for
// multiple-select questions, Items and CorrectOrder for drag-order ones.
type Question struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Prompt       string   `json:"question"`
	Explanation  string   `json:"explanation,omitempty"`
	Options      []Option `json:"options,omitempty"`
	Items        []Item   `json:"items,omitempty"`
	CorrectOrder []string `json:"correctOrder,omitempty"`
}

// Definition is an immutable quiz loaded for one unit.
type Definition struct {
	Questions []Question `json:"questions"`
	PassScore int        `json:"passScore,omitempty"`
}
