package nats

// Msg is one message delivered to a subscription or received as a reply.
type Msg struct {
	Subject string
	Reply   string
	Header  Header
	Data    []byte

	sub *Subscription
}

// Respond publishes data on m.Reply, the conventional way to answer a
// request received via a subscription.
func (m *Msg) Respond(data []byte) error {
	if m.Reply == "" {
		return newErr(ErrBadSubject, "message has no reply subject to respond to")
	}
	if m.sub == nil || m.sub.conn == nil {
		return newErr(ErrConnectionClosed, "message is not attached to a connection")
	}
	return m.sub.conn.Publish(m.Reply, data)
}
