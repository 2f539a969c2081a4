package llm

// StatusMessage is the fixed liveness message returned from the service root.
const StatusMessage = "MCP is running. Use /chat to interact with Open WebUI."

// StatusResponse is the liveness body.
type StatusResponse struct {
	Message string `json:"message"`
}
