package projects

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// legacyCounterNames maps the fixed counter fields of the first session
// format to counter names.
var legacyCounterNames = []struct{ field, name string }{
	{"rows", "Rows"},
	{"increase", "Increase"},
	{"decrease", "Decrease"},
}

// MigrateV0 upgrades a project list written before schema versioning:
//   - session counters stored as flat {rows, increase, decrease, seconds}
//     become a named counter set, with seconds moved onto the session;
//   - projects without a timeline get one built from their sessions and photos.
func MigrateV0(data json.RawMessage) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var projects []map[string]any
	if err := dec.Decode(&projects); err != nil {
		return nil, fmt.Errorf("decode legacy projects: %w", err)
	}

	for _, p := range projects {
		sessions, _ := p["sessions"].([]any)
		for _, raw := range sessions {
			if sess, ok := raw.(map[string]any); ok {
				migrateSessionCounters(sess)
			}
		}
		if _, ok := p["timeline"]; !ok {
			p["timeline"] = buildTimeline(p)
		}
	}

	out, err := json.Marshal(projects)
	if err != nil {
		return nil, fmt.Errorf("encode migrated projects: %w", err)
	}
	return out, nil
}

func migrateSessionCounters(sess map[string]any) {
	counters, ok := sess["counters"].(map[string]any)
	if !ok {
		sess["counters"] = map[string]any{"values": map[string]any{}}
		return
	}
	if _, ok := counters["values"]; ok {
		return
	}

	values := map[string]any{}
	for _, c := range legacyCounterNames {
		if v, ok := counters[c.field]; ok {
			values[c.name] = v
		}
	}
	if secs, ok := counters["seconds"]; ok {
		if _, has := sess["seconds"]; !has {
			sess["seconds"] = secs
		}
	}
	sess["counters"] = map[string]any{"values": values}
}

func buildTimeline(p map[string]any) []any {
	var items []any
	if sessions, ok := p["sessions"].([]any); ok {
		for _, raw := range sessions {
			if s, ok := raw.(map[string]any); ok {
				items = append(items, map[string]any{
					"id":        uuid.NewString(),
					"type":      "session",
					"sessionId": s["id"],
					"createdAt": s["createdAt"],
				})
			}
		}
	}
	if photos, ok := p["photos"].([]any); ok {
		for _, raw := range photos {
			if ph, ok := raw.(map[string]any); ok {
				items = append(items, map[string]any{
					"id":        uuid.NewString(),
					"type":      "photo",
					"photoId":   ph["id"],
					"createdAt": ph["createdAt"],
				})
			}
		}
	}
	if items == nil {
		items = []any{}
	}
	return items
}
