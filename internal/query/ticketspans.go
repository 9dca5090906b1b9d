package query

import (
	"bytes"
	"encoding/json"

	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/engine"
)

// AllTicketSpans computes every ticket file's object spans across the
// whole snapshot, in the shape References expects.
func AllTicketSpans(snap *engine.Snapshot) map[string][]TicketSpan {
	out := map[string][]TicketSpan{}
	for uri, raw := range snap.TicketRaw {
		out[uri] = TicketSpans(uri, raw)
	}
	return out
}

// TicketSpans scans one .tickets.json file's raw bytes and returns the
// byte span of every ticket object it contains, by walking the JSON
// token stream rather than re-parsing through internal/tickets (spec.md
// §8 S5). An array element that is valid JSON but not a ticket-shaped
// object is skipped and scanning continues; a JSON syntax error inside
// the array ends the scan, returning the spans found before it.
func TicketSpans(uri string, data []byte) []TicketSpan {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, _ := keyTok.(string)
		if key != "tickets" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil
			}
			continue
		}

		arrTok, err := dec.Token()
		if err != nil {
			return nil
		}
		if d, ok := arrTok.(json.Delim); !ok || d != '[' {
			return nil
		}

		var out []TicketSpan
		for dec.More() {
			start := int(dec.InputOffset())
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return out
			}
			end := int(dec.InputOffset())

			objStart := start
			if idx := bytes.IndexByte(data[start:end], '{'); idx >= 0 {
				objStart = start + idx
			}

			var t struct {
				ID  string `json:"id"`
				Ref string `json:"ref"`
			}
			if err := json.Unmarshal(raw, &t); err != nil {
				continue
			}
			out = append(out, TicketSpan{
				TicketID: t.ID,
				Ref:      t.Ref,
				Location: byteRangeToLocation(uri, data, objStart, end),
			})
		}
		return out
	}
	return nil
}

// byteRangeToLocation converts a [start,end) byte range within data into
// a core.Location, computing line/col by counting newlines up to each
// offset.
func byteRangeToLocation(uri string, data []byte, start, end int) core.Location {
	return core.Location{
		File:      uri,
		Start:     positionAt(data, start),
		End:       positionAt(data, end),
		StartByte: start,
		EndByte:   end,
	}
}

func positionAt(data []byte, offset int) core.Position {
	if offset > len(data) {
		offset = len(data)
	}
	line, lastNL := 0, -1
	for i := 0; i < offset; i++ {
		if data[i] == '\n' {
			line++
			lastNL = i
		}
	}
	return core.Position{Line: line, Col: offset - lastNL - 1}
}
