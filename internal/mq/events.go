package mq

// Routing keys published on the events exchange.
const (
	RoutingKeyProjectCompleted = "project.completed"
)

// ProjectCompletedPayload announces a finished project. The worker
// recomputes the owner's tag rates from it.
type ProjectCompletedPayload struct {
	ProjectID int `json:"project_id"`
	UserID    int `json:"user_id"`
	Coin      int `json:"coin"`
}
