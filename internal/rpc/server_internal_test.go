package rpc

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planka-mcp/internal/tools"
)

func TestHandleMessage_UnencodableResultIsInternalError(t *testing.T) {
	s := NewServer(tools.NewRegistry(), nil, nil, Implementation{Name: "planka-mcp", Version: "test"})
	s.methods["inf"] = func(context.Context, json.RawMessage) (any, *Error) {
		return math.Inf(1), nil
	}

	resp := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":5,"method":"inf"}`))
	require.NotNil(t, resp)
	assert.Equal(t, json.RawMessage(`5`), resp.ID)
	assert.Nil(t, resp.Result)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternalError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unsupported value")
}

func TestParseRequest_KeepsNullID(t *testing.T) {
	req, err := parseRequest([]byte(`{"jsonrpc":"2.0","id":null,"method":"ping"}`))
	require.NoError(t, err)
	assert.False(t, req.IsNotification())
	assert.Equal(t, json.RawMessage(`null`), req.ID)

	req, err = parseRequest([]byte(`{"jsonrpc":"2.0","method":"ping"}`))
	require.NoError(t, err)
	assert.True(t, req.IsNotification())
}
