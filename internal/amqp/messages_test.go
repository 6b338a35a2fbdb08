package amqp

import "testing"

func TestEntrySyncMessageRoundtrip(t *testing.T) {
	msg := NewUpsertMessage(42)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := EntrySyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 42 || got.Op != OpUpsert {
		t.Fatalf("roundtrip = %+v", got)
	}
}

func TestEntrySyncMessageValidate(t *testing.T) {
	if _, err := EntrySyncMessageFromJSON([]byte(`{"id":1,"op":"truncate"}`)); err == nil {
		t.Error("unknown op must be rejected")
	}
	if _, err := EntrySyncMessageFromJSON([]byte(`{"op":"upsert"}`)); err == nil {
		t.Error("upsert without id must be rejected")
	}
	if _, err := EntrySyncMessageFromJSON([]byte(`not json`)); err == nil {
		t.Error("garbage body must be rejected")
	}

	del := NewDeleteMessage(7, "row:9")
	if err := del.Validate(); err != nil {
		t.Errorf("delete message: %v", err)
	}
	if del.SheetRef != "row:9" {
		t.Errorf("sheet ref = %q", del.SheetRef)
	}
}
