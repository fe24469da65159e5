package observ

import (
	"encoding/json"
	"fmt"
	"time"
)

// Log emits a single JSON line for the given event with the supplied fields.
// Timestamps are UTC RFC3339Nano so lines sort lexically.
func Log(event string, kv map[string]any) {
	if kv == nil {
		kv = map[string]any{}
	}
	kv["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	kv["event"] = event
	b, _ := json.Marshal(kv)
	fmt.Println(string(b))
}
