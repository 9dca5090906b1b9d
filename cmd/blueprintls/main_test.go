package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/blueprint-ls/internal/engine"
)

func debugLogNoop(string, ...any) {}

func TestRun_EOFReturnsNil(t *testing.T) {
	eng := engine.New(engine.WithDebounce(0))
	var out bytes.Buffer
	err := run(eng, nil, strings.NewReader(""), &out, debugLogNoop)
	require.NoError(t, err)
}

func TestRun_InvalidEventEmitsError(t *testing.T) {
	eng := engine.New(engine.WithDebounce(0))
	var out bytes.Buffer
	err := run(eng, nil, strings.NewReader(`not json`+"\n"), &out, debugLogNoop)
	require.NoError(t, err)
	require.Contains(t, out.String(), "invalid event")
}

func TestRun_OpenThenDiagnosticsQuery(t *testing.T) {
	eng := engine.New(engine.WithDebounce(0))
	input := `{"type":"open","uri":"a.bp","text":"@module a\n  @depends-on missing\n"}` + "\n" +
		`{"type":"query","uri":"a.bp","method":"diagnostics"}` + "\n"
	var out bytes.Buffer
	err := run(eng, nil, strings.NewReader(input), &out, debugLogNoop)
	require.NoError(t, err)

	var res result
	require.NoError(t, json.NewDecoder(&out).Decode(&res))
	require.Equal(t, "diagnostics", res.Method)
	require.Empty(t, res.Error)
}

func TestRun_UnknownQueryMethodReportsError(t *testing.T) {
	eng := engine.New(engine.WithDebounce(0))
	input := `{"type":"query","method":"bogus"}` + "\n"
	var out bytes.Buffer
	err := run(eng, nil, strings.NewReader(input), &out, debugLogNoop)
	require.NoError(t, err)

	var res result
	require.NoError(t, json.NewDecoder(&out).Decode(&res))
	require.Contains(t, res.Error, "unknown query method")
}

func TestRun_TicketLifecycle(t *testing.T) {
	eng := engine.New(engine.WithDebounce(0))
	input := `{"type":"open","uri":"a.bp","text":"@module a\n@requirement r\n"}` + "\n" +
		`{"type":"saveTicket","uri":"a.tickets.json","text":"{\"version\":\"1.0\",\"source\":\"a.bp\",\"tickets\":[]}"}` + "\n" +
		`{"type":"closeTicket","uri":"a.tickets.json"}` + "\n" +
		`{"type":"close","uri":"a.bp"}` + "\n"
	var out bytes.Buffer
	err := run(eng, nil, strings.NewReader(input), &out, debugLogNoop)
	require.NoError(t, err)
	require.Equal(t, 0, eng.Snapshot().Stats().Files)
}
