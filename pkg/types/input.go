package types

// InputType tells the agent how to treat an Input.
type InputType string

const (
	// InputTypeCancel stops the turn in progress.
	InputTypeCancel InputType = "cancel"
	// InputTypeUserInput carries a task for the agent to run.
	InputTypeUserInput InputType = "user_input"
)

// Input is sent to an agent on its Input channel.
type Input struct {
	Type    InputType
	Content string
}

// NewCancelInput asks the agent to abandon the current task.
func NewCancelInput() *Input {
	return &Input{Type: InputTypeCancel}
}

// NewUserInput wraps a task.
func NewUserInput(task string) *Input {
	return &Input{Type: InputTypeUserInput, Content: task}
}

func (i *Input) IsCancel() bool    { return i.Type == InputTypeCancel }
func (i *Input) IsUserInput() bool { return i.Type == InputTypeUserInput }
