package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	require.True(t, o.AllowReconnect)
	require.Equal(t, 60, o.MaxReconnectAttempts)
	require.Equal(t, 2*time.Second, o.ReconnectWait)
	require.Equal(t, 2*time.Minute, o.PingInterval)
	require.Equal(t, 2, o.MaxPingsOutstanding)
}

func TestOptionsApplyOverDefaults(t *testing.T) {
	o := defaultOptions()
	for _, opt := range []Option{
		Name("bench"),
		MaxReconnects(5),
		NoReconnect(),
		NoRandomize(),
		RequireHeaders(),
		Pedantic(),
		Verbose(),
		NoEcho(),
		HighWaterMark(1024),
	} {
		opt(&o)
	}
	require.Equal(t, "bench", o.Name)
	require.Equal(t, 5, o.MaxReconnectAttempts)
	require.False(t, o.AllowReconnect)
	require.True(t, o.NoRandomize)
	require.True(t, o.RequireHeaders)
	require.True(t, o.Pedantic)
	require.True(t, o.Verbose)
	require.True(t, o.NoEcho)
	require.Equal(t, 1024, o.HighWaterMark)
}

func TestUserInfoOptionSetsAuthenticator(t *testing.T) {
	o := defaultOptions()
	UserInfo("alice", "s3cret")(&o)
	creds, err := o.Authenticator.Authenticate(nil)
	require.NoError(t, err)
	require.Equal(t, "alice", creds.User)
	require.Equal(t, "s3cret", creds.Pass)
}

func TestTokenOptionSetsAuthenticator(t *testing.T) {
	o := defaultOptions()
	Token("tok-123")(&o)
	creds, err := o.Authenticator.Authenticate(nil)
	require.NoError(t, err)
	require.Equal(t, "tok-123", creds.AuthToken)
}
