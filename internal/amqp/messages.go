package amqp

import (
	"encoding/json"
	"time"
)

// TransactionEventMessage is the lightweight event published after a
// transaction is recorded or revised. It carries only the id and version; the
// worker fetches the full row from storage.
type TransactionEventMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEventMessage(id, version int64) *TransactionEventMessage {
	return &TransactionEventMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
