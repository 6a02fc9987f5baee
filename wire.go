package nats

import (
	"bytes"
	"encoding/json"
	"strconv"
)

var crlf = []byte("\r\n")

// connectInfo is the JSON body of an outgoing CONNECT line.
type connectInfo struct {
	Verbose      bool   `json:"verbose"`
	Pedantic     bool   `json:"pedantic"`
	TLSRequired  bool   `json:"tls_required"`
	Name         string `json:"name,omitempty"`
	Lang         string `json:"lang"`
	Version      string `json:"version"`
	Protocol     int    `json:"protocol"`
	Echo         bool   `json:"echo"`
	Headers      bool   `json:"headers"`
	NoResponders bool   `json:"no_responders"`

	User     string `json:"user,omitempty"`
	Pass     string `json:"pass,omitempty"`
	AuthTok  string `json:"auth_token,omitempty"`
	JWT      string `json:"jwt,omitempty"`
	NKey     string `json:"nkey,omitempty"`
	Sig      string `json:"sig,omitempty"`
}

// serverInfo is the JSON body of an inbound INFO line (spec.md §3).
type serverInfo struct {
	ServerID    string   `json:"server_id"`
	MaxPayload  int64    `json:"max_payload"`
	Headers     bool     `json:"headers"`
	AuthReq     bool     `json:"auth_required"`
	TLSReq      bool     `json:"tls_required"`
	Nonce       string   `json:"nonce"`
	ConnectURLs []string `json:"connect_urls"`
	LameDuck    bool     `json:"ldm"`
}

func decodeServerInfo(raw []byte) (*serverInfo, error) {
	var info serverInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, wrapErr(ErrProtocolError, err, "invalid INFO json")
	}
	return &info, nil
}

func encodeConnect(ci connectInfo) []byte {
	body, err := json.Marshal(ci)
	if err != nil {
		// connectInfo is always marshalable; a failure here is a bug, not a
		// runtime condition callers need to branch on.
		panic("nats: CONNECT json marshal: " + err.Error())
	}
	var buf bytes.Buffer
	buf.WriteString("CONNECT ")
	buf.Write(body)
	buf.Write(crlf)
	return buf.Bytes()
}

func encodePing() []byte { return []byte("PING\r\n") }
func encodePong() []byte { return []byte("PONG\r\n") }

func encodeSub(subject, queue, sid string) []byte {
	var buf bytes.Buffer
	buf.WriteString("SUB ")
	buf.WriteString(subject)
	buf.WriteByte(' ')
	if queue != "" {
		buf.WriteString(queue)
		buf.WriteByte(' ')
	}
	buf.WriteString(sid)
	buf.Write(crlf)
	return buf.Bytes()
}

func encodeUnsub(sid string, max int) []byte {
	var buf bytes.Buffer
	buf.WriteString("UNSUB ")
	buf.WriteString(sid)
	if max > 0 {
		buf.WriteByte(' ')
		buf.WriteString(strconv.Itoa(max))
	}
	buf.Write(crlf)
	return buf.Bytes()
}

// encodePub renders a plain PUB control line. The payload is not included;
// the caller (Conn.publish in nats.go) appends the payload and its CR LF to
// the returned line to form the frame.
func encodePub(subject, reply string, size int) []byte {
	var buf bytes.Buffer
	buf.WriteString("PUB ")
	buf.WriteString(subject)
	buf.WriteByte(' ')
	if reply != "" {
		buf.WriteString(reply)
		buf.WriteByte(' ')
	}
	buf.WriteString(strconv.Itoa(size))
	buf.Write(crlf)
	return buf.Bytes()
}

// encodeHPub renders an HPUB control line; hdrSize is the length of the
// header block only, size is hdrSize+len(payload).
func encodeHPub(subject, reply string, hdrSize, size int) []byte {
	var buf bytes.Buffer
	buf.WriteString("HPUB ")
	buf.WriteString(subject)
	buf.WriteByte(' ')
	if reply != "" {
		buf.WriteString(reply)
		buf.WriteByte(' ')
	}
	buf.WriteString(strconv.Itoa(hdrSize))
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(size))
	buf.Write(crlf)
	return buf.Bytes()
}
