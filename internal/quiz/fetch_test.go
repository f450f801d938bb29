package quiz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validQuizJSON = `{
	"questions": [
		{
			"id": "q1",
			"type": "multiple-select",
			"question": "Which are even?",
			"options": [
				{"id": "a", "text": "2", "correct": true},
				{"id": "b", "text": "3"}
			]
		},
		{
			"id": "q2",
			"type": "drag-order",
			"question": "Order the steps",
			"items": [
				{"id": "x", "text": "first"},
				{"id": "y", "text": "second"}
			],
			"correctOrder": ["x", "y"]
		}
	]
}`

func TestParseValidDefinition(t *testing.T) {
	def, err := Parse([]byte(validQuizJSON))
	require.NoError(t, err)

	require.Len(t, def.Questions, 2)
	assert.Equal(t, TypeMultipleSelect, def.Questions[0].Type)
	assert.Equal(t, TypeDragOrder, def.Questions[1].Type)
	assert.Equal(t, []string{"x", "y"}, def.Questions[1].CorrectOrder)
	assert.Equal(t, DefaultPassScore, def.PassScore, "missing passScore should default")
}

func TestParseExplicitPassScore(t *testing.T) {
	raw := strings.Replace(validQuizJSON, `"questions"`, `"passScore": 60, "questions"`, 1)
	def, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 60, def.PassScore)
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `{"questions": [`},
		{"no questions", `{"questions": []}`},
		{"missing question id", `{"questions": [{"type": "multiple-select", "question": "x"}]}`},
		{"unknown question type", `{"questions": [{"id": "q1", "type": "essay", "question": "x"}]}`},
		{
			"multiple-select without options",
			`{"questions": [{"id": "q1", "type": "multiple-select", "question": "x"}]}`,
		},
		{
			"correctOrder length mismatch",
			`{"questions": [{"id": "q1", "type": "drag-order", "question": "x",
				"items": [{"id": "a", "text": "a"}, {"id": "b", "text": "b"}],
				"correctOrder": ["a"]}]}`,
		},
		{
			"correctOrder references unknown item",
			`{"questions": [{"id": "q1", "type": "drag-order", "question": "x",
				"items": [{"id": "a", "text": "a"}, {"id": "b", "text": "b"}],
				"correctOrder": ["a", "c"]}]}`,
		},
		{
			"duplicate question ids",
			`{"questions": [
				{"id": "q1", "type": "multiple-select", "question": "x",
					"options": [{"id": "a", "text": "a", "correct": true}]},
				{"id": "q1", "type": "multiple-select", "question": "y",
					"options": [{"id": "a", "text": "a", "correct": true}]}]}`,
		},
		{"passScore out of range", `{"passScore": 150, "questions": [
			{"id": "q1", "type": "multiple-select", "question": "x",
				"options": [{"id": "a", "text": "a", "correct": true}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/module-03/quiz.json":
			w.Write([]byte(validQuizJSON))
		case "/module-04/quiz.json":
			w.Write([]byte(`{"questions": [{`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, zap.NewNop())

	t.Run("success", func(t *testing.T) {
		def, err := f.Fetch(context.Background(), 3)
		require.NoError(t, err)
		assert.Len(t, def.Questions, 2)
	})

	t.Run("missing definition is a load error", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), 7)
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, 7, loadErr.Unit)
	})

	t.Run("malformed body is a load error", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), 4)
		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, 4, loadErr.Unit)
	})
}
