package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Sync operations carried on the queue.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// EntrySyncMessage asks the worker to mirror one ledger entry to the
// spreadsheet. Upserts carry only the ID; the worker fetches the current
// row from the database. Deletes also carry the remote row reference,
// since the local row is already gone by the time the worker runs.
type EntrySyncMessage struct {
	ID        int64     `json:"id"`
	Op        string    `json:"op"`
	SheetRef  string    `json:"sheet_ref,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewUpsertMessage(id int64) *EntrySyncMessage {
	return &EntrySyncMessage{ID: id, Op: OpUpsert, Timestamp: time.Now()}
}

func NewDeleteMessage(id int64, sheetRef string) *EntrySyncMessage {
	return &EntrySyncMessage{ID: id, Op: OpDelete, SheetRef: sheetRef, Timestamp: time.Now()}
}

func (m *EntrySyncMessage) Validate() error {
	switch m.Op {
	case OpUpsert:
	case OpDelete:
	default:
		return fmt.Errorf("unknown sync op %q", m.Op)
	}
	if m.ID <= 0 && m.SheetRef == "" {
		return fmt.Errorf("sync message carries neither id nor sheet ref")
	}
	return nil
}

func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
