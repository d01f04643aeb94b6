package llms

// Role describes who a turn is attributed to.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is a single message in the conversation. Turns are never mutated
// once recorded.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

func NewUserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

func NewModelTurn(text string) Turn {
	return Turn{Role: RoleModel, Text: text}
}
