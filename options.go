package nats

import (
	"crypto/tls"
	"log/slog"
	"time"
)

// Options holds every connection option recognized in spec.md §6. It is
// built up by applying a slice of Option functions over sane defaults, the
// same functional-options shape the teacher wrapped nats.go's own
// []nats.Option with in patterns/nats/nats.go.
type Options struct {
	Servers               []string
	Name                  string
	Authenticator         Authenticator
	RequireHeaders        bool
	NoRandomize           bool
	AllowReconnect        bool
	MaxReconnectAttempts  int
	PerServerReconnectCap int
	ReconnectWait         time.Duration
	PingInterval          time.Duration
	MaxPingsOutstanding   int
	Timeout               time.Duration
	TLSConfig             *tls.Config
	RequestTLS            bool
	Pedantic              bool
	Verbose               bool
	NoEcho                bool
	Logger                *slog.Logger
	HighWaterMark         int
	ReplayBuffer          int
	ReconnectOnLameDuck   bool

	dialer dialer // overridable for tests and the WebSocket transport
}

func defaultOptions() Options {
	return Options{
		AllowReconnect:       true,
		MaxReconnectAttempts: 60,
		ReconnectWait:        2 * time.Second,
		PingInterval:         2 * time.Minute,
		MaxPingsOutstanding:  2,
		Timeout:              2 * time.Second,
		Logger:               slog.Default(),
		ReconnectOnLameDuck:  true,
	}
}

// Option mutates Options when applied by Connect.
type Option func(*Options)

func Name(name string) Option { return func(o *Options) { o.Name = name } }

func UserInfo(user, pass string) Option {
	return func(o *Options) { o.Authenticator = UserPassAuthenticator{User: user, Pass: pass} }
}

func Token(token string) Option {
	return func(o *Options) {
		o.Authenticator = TokenAuthenticator{Token: func() (string, error) { return token, nil }}
	}
}

func WithAuthenticator(a Authenticator) Option {
	return func(o *Options) { o.Authenticator = a }
}

func RequireHeaders() Option { return func(o *Options) { o.RequireHeaders = true } }

func NoRandomize() Option { return func(o *Options) { o.NoRandomize = true } }

func NoReconnect() Option { return func(o *Options) { o.AllowReconnect = false } }

func MaxReconnects(n int) Option { return func(o *Options) { o.MaxReconnectAttempts = n } }

func PerServerReconnectCap(n int) Option {
	return func(o *Options) { o.PerServerReconnectCap = n }
}

func ReconnectWait(d time.Duration) Option { return func(o *Options) { o.ReconnectWait = d } }

func PingInterval(d time.Duration) Option { return func(o *Options) { o.PingInterval = d } }

func MaxPingsOutstanding(n int) Option { return func(o *Options) { o.MaxPingsOutstanding = n } }

func Timeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }

func Secure(cfg *tls.Config) Option {
	return func(o *Options) { o.RequestTLS = true; o.TLSConfig = cfg }
}

func Pedantic() Option { return func(o *Options) { o.Pedantic = true } }

func Verbose() Option { return func(o *Options) { o.Verbose = true } }

func NoEcho() Option { return func(o *Options) { o.NoEcho = true } }

func Logger(l *slog.Logger) Option { return func(o *Options) { o.Logger = l } }

func HighWaterMark(n int) Option { return func(o *Options) { o.HighWaterMark = n } }

func ReplayBuffer(n int) Option { return func(o *Options) { o.ReplayBuffer = n } }

// UseWebSocket switches the transport to WebSocket framing (ws:// or,
// with secure=true, wss://) instead of raw TCP.
func UseWebSocket(secure bool) Option {
	return func(o *Options) { o.dialer = &wsDialer{secure: secure} }
}

// withDialer is unexported: only tests substitute a fake transport.
func withDialer(d dialer) Option {
	return func(o *Options) { o.dialer = d }
}
