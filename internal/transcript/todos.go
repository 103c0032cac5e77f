package transcript

import "encoding/json"

// Todo is one item of the assistant's todo list.
type Todo struct {
	Content    string `json:"content"`
	Status     string `json:"status"`
	ActiveForm string `json:"activeForm"`
}

// Todo statuses.
const (
	TodoCompleted  = "completed"
	TodoInProgress = "in_progress"
	TodoPending    = "pending"
)

// LatestTodos returns the most recent newTodos list recorded on a user
// entry's toolUseResult, or nil.
func LatestTodos(entries []Entry) []Todo {
	var latest []Todo
	for _, e := range entries {
		if e.Type != RoleUser || len(e.ToolUseResult) == 0 {
			continue
		}
		var result struct {
			NewTodos *[]Todo `json:"newTodos"`
		}
		// toolUseResult is sometimes a plain string; those never carry todos.
		if json.Unmarshal(e.ToolUseResult, &result) != nil || result.NewTodos == nil {
			continue
		}
		latest = *result.NewTodos
	}
	return latest
}
