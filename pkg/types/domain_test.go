package types

import (
	"encoding/json"
	"testing"
)

func TestItemIDDecodesNumbersAndStrings(t *testing.T) {
	var items []TrainingItem
	body := `[{"id":1,"name":"Ridge Loop","completion_time":87.4},{"id":"abc","name":"Lake","completion_time":30}]`
	if err := json.Unmarshal([]byte(body), &items); err != nil { t.Fatalf("unmarshal: %v", err) }
	if len(items) != 2 { t.Fatalf("len=%d", len(items)) }
	if items[0].ID != "1" || items[1].ID != "abc" {
		t.Fatalf("ids=%q,%q", items[0].ID, items[1].ID)
	}
	if items[0].CompletionTime != 87.4 { t.Fatalf("completion=%v", items[0].CompletionTime) }
}

func TestItemIDNullIsEmpty(t *testing.T) {
	var it TrainingItem
	if err := json.Unmarshal([]byte(`{"id":null,"name":"x"}`), &it); err != nil { t.Fatalf("unmarshal: %v", err) }
	if it.ID != "" { t.Fatalf("id=%q", it.ID) }
}

func TestItemIDRejectsObjects(t *testing.T) {
	var it TrainingItem
	if err := json.Unmarshal([]byte(`{"id":{"a":1}}`), &it); err == nil {
		t.Fatalf("expected error for object id")
	}
}

func TestItemIDMarshalKeepsNumbers(t *testing.T) {
	b, err := json.Marshal(TrainingItem{ID: "7", Name: "a"})
	if err != nil { t.Fatalf("marshal: %v", err) }
	if got := string(b); got != `{"id":7,"name":"a","completion_time":0}` { t.Fatalf("json=%s", got) }
	b, _ = json.Marshal(ItemID("x-1"))
	if string(b) != `"x-1"` { t.Fatalf("json=%s", b) }
}

func TestItemIDMarshalKeepsNonCanonicalStrings(t *testing.T) {
	var items []TrainingItem
	if err := json.Unmarshal([]byte(`[{"id":"007","name":"a"},{"id":"+5","name":"b"},{"id":"-3","name":"c"}]`), &items); err != nil { t.Fatalf("unmarshal: %v", err) }
	b, err := json.Marshal(items)
	if err != nil { t.Fatalf("marshal: %v", err) }
	want := `[{"id":"007","name":"a","completion_time":0},{"id":"+5","name":"b","completion_time":0},{"id":-3,"name":"c","completion_time":0}]`
	if string(b) != want { t.Fatalf("json=%s", b) }
	if !json.Valid(b) { t.Fatalf("invalid json: %s", b) }
}
