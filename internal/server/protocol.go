package server

// Session commands a browser sends over the websocket.
const (
	OpStart  = "start"
	OpPlay   = "play"
	OpSubmit = "submit"
	OpSkip   = "skip"
	OpEnd    = "end"
)

// Reply types the server sends back next to render commands.
const (
	ReplyState = "state"
	ReplyError = "error"
)

// Request is a session command.
type Request struct {
	Type         string         `json:"type"`
	ExperienceID string         `json:"experienceId,omitempty"`
	SceneID      string         `json:"sceneId,omitempty"`
	Input        map[string]any `json:"input,omitempty"`
}

// Reply reports the outcome of a Request.
type Reply struct {
	Type      string `json:"type"`
	Operation string `json:"operation,omitempty"`
	Session   string `json:"session,omitempty"`
	State     string `json:"state,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Message   string `json:"message,omitempty"`
}
