package quiz

import (
	"math/rand/v2"
	"slices"
)

// QuestionResult is the graded outcome of one question. PerItem carries
// position-by-position feedback for drag-order questions; it is nil for
// multiple-select. The pass/fail determination is always all-or-nothing.
type QuestionResult struct {
	Correct bool
	PerItem []bool
}

// Summary is the overall quiz outcome.
type Summary struct {
	Correct int
	Total   int
	Percent int
	Passed  bool
}

// Engine grades one rendering session of a quiz for one unit. A question's
// result, once set, is immutable until Retry; answers to graded questions
// are ignored. Grading is order-independent: drag-order answers are judged
// against the canonical correctOrder, never the shuffled display order.
type Engine struct {
	def  *Definition
	unit int
	rng  *rand.Rand

	answers map[string][]string
	results map[string]QuestionResult
	display map[string][]string

	onPassed func(unit, percent int)
	emitted  bool
}

// NewEngine creates a grading session for the given definition and unit.
func NewEngine(def *Definition, unit int) *Engine {
	return newEngine(def, unit, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

func newEngine(def *Definition, unit int, rng *rand.Rand) *Engine {
	e := &Engine{def: def, unit: unit, rng: rng}
	e.reset()
	return e
}

// OnPassed registers the completion callback fired once per session when the
// computed result meets the pass score. It carries the unit index and the
// score percentage, feeding the progression state machine.
func (e *Engine) OnPassed(fn func(unit, percent int)) {
	e.onPassed = fn
}

// Questions returns the definition's questions in canonical order.
func (e *Engine) Questions() []Question {
	return e.def.Questions
}

// PassScore returns the percentage threshold for passing.
func (e *Engine) PassScore() int {
	return e.def.PassScore
}

// DisplayOrder returns the shuffled item ids to present for a drag-order
// question. The order is stable within a session and reshuffled on Retry.
func (e *Engine) DisplayOrder(questionID string) []string {
	return slices.Clone(e.display[questionID])
}

// ToggleOption flips the selection of one option of a multiple-select
// question. Ignored once the question has been graded.
func (e *Engine) ToggleOption(questionID, optionID string) {
	if _, graded := e.results[questionID]; graded {
		return
	}
	sel := e.answers[questionID]
	if i := slices.Index(sel, optionID); i >= 0 {
		e.answers[questionID] = slices.Delete(sel, i, i+1)
		return
	}
	e.answers[questionID] = append(sel, optionID)
}

// SetOrder records the learner's current item ordering for a drag-order
// question. Ignored once the question has been graded.
func (e *Engine) SetOrder(questionID string, order []string) {
	if _, graded := e.results[questionID]; graded {
		return
	}
	e.answers[questionID] = slices.Clone(order)
	e.display[questionID] = slices.Clone(order)
}

// Answer returns the learner's current answer for a question.
func (e *Engine) Answer(questionID string) []string {
	return slices.Clone(e.answers[questionID])
}

// CheckAnswer grades a question against its canonical answer. It is
// idempotent: grading an already-graded question returns the existing result
// and reports graded=false.
func (e *Engine) CheckAnswer(questionID string) (result QuestionResult, graded bool) {
	if r, ok := e.results[questionID]; ok {
		return r, false
	}

	q := e.question(questionID)
	if q == nil {
		return QuestionResult{}, false
	}

	switch q.Type {
	case TypeMultipleSelect:
		result = gradeMultipleSelect(q, e.answers[questionID])
	case TypeDragOrder:
		// With no interaction the answer is the displayed order.
		order := e.answers[questionID]
		if len(order) == 0 {
			order = e.display[questionID]
		}
		result = gradeDragOrder(q, order)
	}

	e.results[questionID] = result
	return result, true
}

// AllGraded reports whether every question has been checked.
func (e *Engine) AllGraded() bool {
	return len(e.results) == len(e.def.Questions)
}

// Result computes the overall score over all questions and fires the
// completion callback the first time a passing result is computed.
func (e *Engine) Result() Summary {
	correct := 0
	for _, r := range e.results {
		if r.Correct {
			correct++
		}
	}
	s := summarize(correct, len(e.def.Questions), e.def.PassScore)
	if s.Passed && !e.emitted && e.onPassed != nil {
		e.emitted = true
		e.onPassed(e.unit, s.Percent)
	}
	return s
}

// RunningScore summarizes only the questions graded so far, for display
// while the quiz is in progress.
func (e *Engine) RunningScore() Summary {
	correct := 0
	for _, r := range e.results {
		if r.Correct {
			correct++
		}
	}
	return summarize(correct, len(e.results), e.def.PassScore)
}

// Retry clears all answers and results and reshuffles the drag-order
// presentation, starting a fresh rendering session.
func (e *Engine) Retry() {
	e.reset()
	e.emitted = false
}

func (e *Engine) reset() {
	e.answers = make(map[string][]string)
	e.results = make(map[string]QuestionResult)
	e.display = make(map[string][]string)
	for i := range e.def.Questions {
		q := &e.def.Questions[i]
		if q.Type != TypeDragOrder {
			continue
		}
		order := make([]string, len(q.Items))
		for j, it := range q.Items {
			order[j] = it.ID
		}
		e.rng.Shuffle(len(order), func(a, b int) {
			order[a], order[b] = order[b], order[a]
		})
		e.display[q.ID] = order
	}
}

func (e *Engine) question(id string) *Question {
	for i := range e.def.Questions {
		if e.def.Questions[i].ID == id {
			return &e.def.Questions[i]
		}
	}
	return nil
}

// gradeMultipleSelect is correct iff the selected set equals the set of
// options flagged correct, regardless of selection order.
func gradeMultipleSelect(q *Question, selected []string) QuestionResult {
	want := make(map[string]bool)
	for _, o := range q.Options {
		if o.Correct {
			want[o.ID] = true
		}
	}

	sel := make(map[string]bool, len(selected))
	for _, id := range selected {
		sel[id] = true
	}
	if len(sel) != len(want) {
		return QuestionResult{}
	}
	for id := range want {
		if !sel[id] {
			return QuestionResult{}
		}
	}
	return QuestionResult{Correct: true}
}

// gradeDragOrder is correct iff the submitted sequence matches correctOrder
// element for element. PerItem reports each position for feedback display.
func gradeDragOrder(q *Question, order []string) QuestionResult {
	perItem := make([]bool, len(q.CorrectOrder))
	correct := len(order) == len(q.CorrectOrder)
	for i := range q.CorrectOrder {
		if i < len(order) && order[i] == q.CorrectOrder[i] {
			perItem[i] = true
		} else {
			correct = false
		}
	}
	return QuestionResult{Correct: correct, PerItem: perItem}
}

func summarize(correct, total, passScore int) Summary {
	percent := 0
	if total > 0 {
		percent = int(float64(correct)/float64(total)*100 + 0.5)
	}
	return Summary{
		Correct: correct,
		Total:   total,
		Percent: percent,
		Passed:  total > 0 && percent >= passScore,
	}
}
