package broker

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/tycoonhq/tycoon-services/internal/comm"
)

// Topic carries post-commit game updates from gamesvc to socketsvc.
const Topic = "game.service"

// Broker publishes game update events for the socket service to fan
// out. Publishing happens after the database commit; a lost event only
// delays a client refetch.
type Broker struct {
	Conn *nats.Conn
}

func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc}
}

// PublishGameUpdate notifies every client subscribed to the game code.
func (b *Broker) PublishGameUpdate(code, event string) error {
	update := comm.GameUpdate{
		Code:      code,
		Event:     event,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}

	msg := &comm.WSMessage{
		Type: "game-update",
		Data: data,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.Publish(Topic, payload)
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}
	return nil
}
