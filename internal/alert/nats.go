package alert

import (
	"log"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes EVE records to a NATS subject.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
}

// NewNATSPublisher connects to the NATS server.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", url)
	return &NATSPublisher{nc: nc, subject: subject}, nil
}

// Publish sends one EVE record to the configured subject.
func (p *NATSPublisher) Publish(data []byte) error {
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
