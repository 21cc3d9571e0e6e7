package rekitdaemon

import (
	"context"
	"testing"

	"github.com/rekit/rekit-lsp/src/rekit-lsp/factory"
	"github.com/stretchr/testify/assert"
	tally "github.com/uber-go/tally/v4"
	"go.lsp.dev/jsonrpc2"
)

func TestHandleReq(t *testing.T) {
	ctx := context.Background()
	testScope := tally.NewTestScope("testing", make(map[string]string, 0))
	m := jsonRPCRouter{stats: testScope}

	request, _ := jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), "textDocument/hover", []string{"val1", "val2"})
	err := m.HandleReq(ctx, newMockReplier(), request)
	assert.ErrorIs(t, err, jsonrpc2.ErrMethodNotFound)
	assert.Equal(t, int64(1), testScope.Snapshot().Counters()["testing.requests+method=textDocument/hover"].Value())
}

func TestUUID(t *testing.T) {
	sampleUUID := factory.UUID()
	m := jsonRPCRouter{uuid: sampleUUID}
	assert.Equal(t, sampleUUID, m.UUID())
}
