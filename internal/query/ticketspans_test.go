package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTicketSpans_ComputesObjectByteSpans(t *testing.T) {
	data := []byte(`{
  "version": "1.0",
  "source": "auth.bp",
  "tickets": [
    {"id": "TKT-001", "ref": "auth.login.basic", "description": "d", "status": "complete", "constraints_satisfied": []},
    {"id": "TKT-002", "ref": "auth.login.basic", "description": "d2", "status": "pending", "constraints_satisfied": []}
  ]
}`)

	spans := TicketSpans("auth.tickets.json", data)
	require.Len(t, spans, 2)
	require.Equal(t, "TKT-001", spans[0].TicketID)
	require.Equal(t, "auth.login.basic", spans[0].Ref)
	require.Equal(t, byte('{'), data[spans[0].Location.StartByte])
	require.Equal(t, byte('}'), data[spans[0].Location.EndByte-1])
	require.Equal(t, "TKT-002", spans[1].TicketID)
}

func TestTicketSpans_MalformedSiblingDoesNotBlockWellFormedOnes(t *testing.T) {
	data := []byte(`{"tickets": [{"id": "ok", "ref": "a"}, not-json-here]}`)
	spans := TicketSpans("x.tickets.json", data)
	require.Len(t, spans, 1)
	require.Equal(t, "ok", spans[0].TicketID)
}

func TestTicketSpans_NoTicketsKeyReturnsNil(t *testing.T) {
	require.Nil(t, TicketSpans("x.tickets.json", []byte(`{"version":"1.0"}`)))
}
