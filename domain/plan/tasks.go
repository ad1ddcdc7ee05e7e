package plan

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidTasks indicates the model response did not contain a usable
// task array.
var ErrInvalidTasks = errors.New("model response did not contain a valid tasks array")

// ExtractTasks pulls the task array out of a raw chat model response.
//
// The response must be valid JSON: either an object with a "tasks" field or
// the task array itself (some models return the array without the wrapper
// object). Anything that is not an array after extraction is rejected, as is
// an empty array — an empty plan is a generation failure, not a result.
func ExtractTasks(raw []byte) (json.RawMessage, error) {
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTasks, err)
	}

	tasks := root
	if obj, ok := root.(map[string]any); ok {
		inner, present := obj["tasks"]
		if !present {
			return nil, fmt.Errorf("%w: object has no tasks field", ErrInvalidTasks)
		}
		tasks = inner
	}

	arr, ok := tasks.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: tasks is not an array", ErrInvalidTasks)
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("%w: tasks array is empty", ErrInvalidTasks)
	}

	encoded, err := json.Marshal(arr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTasks, err)
	}
	return encoded, nil
}
