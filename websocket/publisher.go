// file: websocket/publisher.go
package websocket

// Publisher is the runnable the control loop posts after every new command.
type Publisher struct {
	hub *Hub
}

// NewPublisher publishes through hub.
func NewPublisher(hub *Hub) *Publisher {
	return &Publisher{hub: hub}
}

// Run broadcasts the slot contents. Network loop only.
func (p *Publisher) Run() {
	p.hub.PublishData()
}
