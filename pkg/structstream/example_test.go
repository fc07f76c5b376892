package structstream_test

import (
	"context"
	"fmt"

	"github.com/deepankarm/structstream/pkg/llm/llmtest"
	"github.com/deepankarm/structstream/pkg/structstream"
	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

// ExampleStreamParser_Feed demonstrates parsing incomplete JSON as it
// streams from LLM APIs, showing how to track completion state and
// which fields are still incomplete.
func ExampleStreamParser_Feed() {
	task := shape.Object(
		shape.Field("title", shape.String()),
		shape.Field("done", shape.Boolean()),
	)
	parser := structstream.NewStreamParser(task, nil)

	// Simulate LLM streaming chunks
	chunks := []string{
		`{"title": "Lear`,
		`n Go", "do`,
		`ne": tr`,
		`ue}`,
	}

	var result *structstream.Value
	var state *structstream.PartialState

	for _, chunk := range chunks {
		result, state = parser.Feed([]byte(chunk))
		if !state.IsComplete {
			waiting := state.WaitingFor()
			if len(waiting) > 0 {
				fmt.Printf("Waiting for: %v\n", waiting)
			}
		}
	}

	fmt.Printf("Complete: %v, Title: %s\n", state.IsComplete, result.Field("title").Str())
	// Output:
	// Waiting for: [title]
	// Waiting for: [done]
	// Complete: true, Title: Learn Go
}

// ExampleNewStreamParser shows the callback receiving only values that
// changed.
func ExampleNewStreamParser() {
	person := shape.Object(
		shape.Field("name", shape.String()),
		shape.Field("bio", shape.String()),
	)
	parser := structstream.NewStreamParser(person, func(v *structstream.Value) {
		fmt.Println(v)
	})

	for _, delta := range []string{`{"na`, `me":"Ann","bio":"A te`, `st."}`} {
		parser.Feed([]byte(delta))
	}

	value, errs := parser.Finish()
	fmt.Println(value.Field("bio").Str(), len(errs))
	// Output:
	// {}
	// {"name":"Ann","bio":"A te"}
	// {"name":"Ann","bio":"A test."}
	// A test. 0
}

func ExampleValidate() {
	s := shape.Object(
		shape.Field("name", shape.String()),
		shape.Field("age", shape.Number(), shape.Optional()),
	)

	_, errs := structstream.Validate(s, []byte(`{"name": 1, "age": "old"}`))
	fmt.Println(errs.Report())
	// Output:
	// - name: expected string, got number
	// - age: expected number, got string
}

func ExampleGetList() {
	type Character struct {
		Name string `json:"name"`
		Rank string `json:"rank,omitempty"`
	}
	character := shape.Object(
		shape.Field("name", shape.String(), shape.Instruction("Just the first name.")),
		shape.Field("rank", shape.String(), shape.Optional(), shape.Instruction("If applicable, the military rank.")),
	)

	// A scripted provider stands in for a model here.
	provider := llmtest.New(llmtest.Text(`{"list": [{"name": "Jack", "rank": "Colonel"}, {"name": "Samanta", "rank": "Major"}, {"name": "Teal'c"}]}`, 8))
	extractor, err := structstream.New(provider)
	if err != nil {
		panic(err)
	}

	characters, _, err := structstream.GetList[Character](context.Background(), extractor, character,
		"Colonel Jack O'Neil walks into a bar and meets Major Samanta Carter. They call Teal'c to join them.", nil)
	if err != nil {
		panic(err)
	}
	for _, c := range characters {
		fmt.Printf("%s %s\n", c.Name, c.Rank)
	}
	// Output:
	// Jack Colonel
	// Samanta Major
	// Teal'c
}
