package notify

type EventType string

const (
	TypeNewRequest    EventType = "new_request"
	TypeNewSolution   EventType = "new_solution"
	TypeDeleteRequest EventType = "delete_request"
)

func (et EventType) String() string {
	return string(et)
}

// Event is one board mutation fanned out to subscribers. Payload shapes:
// new_request carries the full request record, new_solution carries
// {request_id, solution}, delete_request carries {request_id}.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}
