// Package tickets parses and validates .tickets.json files (spec.md
// §4.6): structural/semantic validation with dotted JSON-path error
// locations, and the workspace-relative path resolution rule tying a
// .bp file to its ticket file.
package tickets

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/oxhq/blueprint-ls/core"
)

// Implementation is the optional implementation-evidence block.
type Implementation struct {
	Files []string `json:"files,omitempty"`
	Tests []string `json:"tests,omitempty"`
}

// Ticket is one entry in a ticket file's tickets array.
type Ticket struct {
	ID                   string          `json:"id"`
	Ref                  string          `json:"ref"`
	Description          string          `json:"description"`
	Status               core.TicketStatus `json:"status"`
	ConstraintsSatisfied []string        `json:"constraints_satisfied"`
	Implementation       *Implementation `json:"implementation,omitempty"`
}

// File is one parsed .tickets.json document.
type File struct {
	Version string   `json:"version"`
	Source  string   `json:"source"`
	Tickets []Ticket `json:"tickets"`
}

// ValidationError is a single structural or semantic problem found while
// ingesting a ticket file, located by a dotted JSON path.
type ValidationError struct {
	Path     string // e.g. "tickets[3].status"
	Message  string
	Severity core.Severity
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// rawTicket lets Parse distinguish "field missing" from "field present
// but wrong type" during structural validation, which a direct
// json.Unmarshal into Ticket would blur (missing and zero-value collapse
// together).
type rawTicket map[string]json.RawMessage

type rawFile struct {
	Version json.RawMessage `json:"version"`
	Source  json.RawMessage `json:"source"`
	Tickets json.RawMessage `json:"tickets"`
}

// Parse validates and decodes a ticket file's raw bytes. Parse failures
// (malformed JSON) yield an empty ticket list plus a single file-level
// error; anything past that point is reported as (possibly multiple)
// ValidationErrors while still returning every ticket entry that is a
// JSON object, including entries with field-level errors. Only
// non-object entries are left out.
func Parse(data []byte) (*File, []ValidationError) {
	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return &File{}, []ValidationError{{
			Path:     "$",
			Message:  fmt.Sprintf("invalid JSON: %v", err),
			Severity: core.SeverityError,
		}}
	}

	f := &File{}
	var errs []ValidationError

	if len(raw.Version) > 0 {
		_ = json.Unmarshal(raw.Version, &f.Version)
	}
	if f.Version != "" && f.Version != "1.0" {
		errs = append(errs, ValidationError{
			Path:     "$.version",
			Message:  fmt.Sprintf("unknown version %q", f.Version),
			Severity: core.SeverityWarning,
		})
	}

	if len(raw.Source) > 0 {
		_ = json.Unmarshal(raw.Source, &f.Source)
	}

	var rawTickets []json.RawMessage
	if len(raw.Tickets) > 0 {
		if err := json.Unmarshal(raw.Tickets, &rawTickets); err != nil {
			errs = append(errs, ValidationError{
				Path:     "$.tickets",
				Message:  "tickets must be an array",
				Severity: core.SeverityError,
			})
		}
	}

	seenIDs := map[string]bool{}
	for i, rt := range rawTickets {
		jsonPath := fmt.Sprintf("tickets[%d]", i)
		t, tErrs := parseTicket(jsonPath, rt)
		errs = append(errs, tErrs...)
		if t == nil {
			continue
		}
		if t.ID != "" && seenIDs[t.ID] {
			errs = append(errs, ValidationError{
				Path:     jsonPath + ".id",
				Message:  fmt.Sprintf("duplicate ticket id %q", t.ID),
				Severity: core.SeverityError,
			})
		}
		seenIDs[t.ID] = true
		f.Tickets = append(f.Tickets, *t)
	}

	return f, errs
}

func parseTicket(jsonPath string, data json.RawMessage) (*Ticket, []ValidationError) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, []ValidationError{{
			Path:     jsonPath,
			Message:  "ticket must be an object",
			Severity: core.SeverityError,
		}}
	}

	var errs []ValidationError
	t := &Ticket{}

	requireString(obj, jsonPath, "id", &t.ID, &errs)
	requireString(obj, jsonPath, "ref", &t.Ref, &errs)
	requireString(obj, jsonPath, "description", &t.Description, &errs)

	if raw, ok := obj["status"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			errs = append(errs, ValidationError{Path: jsonPath + ".status", Message: "status must be a string", Severity: core.SeverityError})
		} else {
			t.Status = core.TicketStatus(s)
			if !t.Status.Valid() {
				errs = append(errs, ValidationError{Path: jsonPath + ".status", Message: fmt.Sprintf("unknown status %q", s), Severity: core.SeverityError})
			}
		}
	} else {
		errs = append(errs, ValidationError{Path: jsonPath + ".status", Message: "missing required field", Severity: core.SeverityError})
	}

	if raw, ok := obj["constraints_satisfied"]; ok {
		if err := json.Unmarshal(raw, &t.ConstraintsSatisfied); err != nil {
			errs = append(errs, ValidationError{Path: jsonPath + ".constraints_satisfied", Message: "must be an array of strings", Severity: core.SeverityError})
		}
	}

	if raw, ok := obj["implementation"]; ok {
		var impl Implementation
		if err := json.Unmarshal(raw, &impl); err != nil {
			errs = append(errs, ValidationError{Path: jsonPath + ".implementation", Message: "must be an object", Severity: core.SeverityError})
		} else {
			t.Implementation = &impl
		}
	}

	return t, errs
}

func requireString(obj map[string]json.RawMessage, jsonPath, field string, dst *string, errs *[]ValidationError) {
	raw, ok := obj[field]
	if !ok {
		*errs = append(*errs, ValidationError{Path: jsonPath + "." + field, Message: "missing required field", Severity: core.SeverityError})
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		*errs = append(*errs, ValidationError{Path: jsonPath + "." + field, Message: field + " must be a string", Severity: core.SeverityError})
	}
}

// DefaultTicketsPath is used when config doesn't override it (§6).
const DefaultTicketsPath = ".blueprint/tickets"

// ResolvePath computes the workspace-relative ticket file path for a
// given .bp file's workspace-relative path, per spec.md §4.6: only the
// basename is used, joined under ticketsPath.
func ResolvePath(ticketsPath, bpRelPath string) string {
	if ticketsPath == "" {
		ticketsPath = DefaultTicketsPath
	}
	base := strings.TrimSuffix(path.Base(bpRelPath), ".bp")
	return path.Join(ticketsPath, base+".tickets.json")
}
