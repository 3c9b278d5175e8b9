package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelloShape(t *testing.T) {
	data, err := Hello(41250 * time.Millisecond).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":10,"d":{"heartbeat_interval":41250},"s":null,"t":null}`, string(data))
}

func TestDispatchShape(t *testing.T) {
	p := Dispatch(7, "MESSAGE_CREATE", json.RawMessage(`{"content":"hi"}`))
	data, err := p.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":0,"d":{"content":"hi"},"s":7,"t":"MESSAGE_CREATE"}`, string(data))
}

func TestDispatchNilDataIsNull(t *testing.T) {
	data, err := Dispatch(1, "RESUMED", nil).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":0,"d":null,"s":1,"t":"RESUMED"}`, string(data))
}

func TestInvalidSessionCarriesBareBool(t *testing.T) {
	data, err := InvalidSession(true).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":9,"d":true,"s":null,"t":null}`, string(data))
}

func TestDecodeIdentify(t *testing.T) {
	raw := []byte(`{"op":2,"d":{"token":"Bot abc","intents":513,"shard":[0,1]},"s":null,"t":null}`)
	p, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, OpIdentify, p.Op)

	var ident IdentifyData
	require.NoError(t, p.DataInto(&ident))
	assert.Equal(t, "Bot abc", ident.Token)
	assert.Equal(t, Intents(513), ident.Intents)
	require.NotNil(t, ident.Shard)
	assert.Equal(t, [2]int{0, 1}, *ident.Shard)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDecodeUnknownOpcode(t *testing.T) {
	_, err := Decode([]byte(`{"op":42,"d":null,"s":null,"t":null}`))
	assert.ErrorIs(t, err, ErrUnknownOpcode)
}

func TestDataIntoMissing(t *testing.T) {
	p, err := Decode([]byte(`{"op":2,"d":null,"s":null,"t":null}`))
	require.NoError(t, err)

	var ident IdentifyData
	assert.ErrorIs(t, p.DataInto(&ident), ErrMissingData)
}

func TestAllowedIntents(t *testing.T) {
	var flags ApplicationFlags
	allowed := flags.AllowedIntents()
	assert.False(t, allowed.Contains(IntentGuildMembers))
	assert.False(t, allowed.Contains(IntentGuildPresences))
	assert.False(t, allowed.Contains(IntentMessageContent))

	flags = FlagGatewayGuildMembers | FlagGatewayMessageContentLimited
	allowed = flags.AllowedIntents()
	assert.True(t, allowed.Contains(IntentGuildMembers))
	assert.True(t, allowed.Contains(IntentMessageContent))
	assert.False(t, allowed.Contains(IntentGuildPresences))
}

func TestCloseCodeString(t *testing.T) {
	assert.Equal(t, "session timed out", CloseSessionTimeout.String())
	assert.Equal(t, "authentication failed", CloseAuthenticationFailed.String())
	assert.Equal(t, "unknown", CloseCode(9999).String())
}
