package nats

import (
	"bytes"
	"strconv"
	"strings"
)

// FrameKind identifies which control verb a parsed Frame represents.
type FrameKind int

const (
	FrameInfo FrameKind = iota
	FrameMsg
	FrameHMsg
	FramePing
	FramePong
	FrameOK
	FrameErr
)

// maxControlLine bounds an unterminated control line before the parser
// gives up and reports a protocol error; guards against a misbehaving peer
// streaming bytes that never contain a CR LF.
const maxControlLine = 4096

// Frame is one fully decoded inbound protocol unit. Payload (and for HMSG,
// HeaderRaw) slice a buffer the parser allocates afresh for each MSG/HMSG
// and never reuses, so callers may retain them after Feed returns without
// copying.
type Frame struct {
	Kind      FrameKind
	Subject   string
	Sid       string
	Reply     string
	HeaderRaw []byte
	Payload   []byte
	Info      []byte
	ErrText   string
}

type parserState int

const (
	stateLine parserState = iota
	statePayload
	statePayloadCRLF
)

// parser is a pull state machine that accepts arbitrarily fragmented input
// from the transport (spec.md §4.B): Feed may be called with any number of
// bytes, including a single byte or several frames at once, and emits each
// fully decoded Frame via the emit callback as soon as it is complete.
// Payload bytes are copied into their destination buffer exactly once, as
// they arrive, never staged through an intermediate buffer first.
type parser struct {
	st         parserState
	lineBuf    []byte
	pending    Frame
	hdrSize    int
	needTotal  int
	payload    []byte
	payloadPos int
	crlfSeen   int
}

func newParser() *parser {
	return &parser{}
}

// Feed consumes data, invoking emit once per fully decoded frame. It
// returns a *Error with code PROTOCOL_ERROR if the stream violates the
// wire grammar.
func (p *parser) Feed(data []byte, emit func(Frame) error) error {
	s := p
	for len(data) > 0 {
		switch s.st {
		case stateLine:
			idx := bytes.IndexByte(data, '\n')
			if idx < 0 {
				s.lineBuf = append(s.lineBuf, data...)
				if len(s.lineBuf) > maxControlLine {
					return newErr(ErrProtocolError, "control line exceeds %d bytes", maxControlLine)
				}
				return nil
			}
			line := data[:idx+1]
			data = data[idx+1:]
			var full []byte
			if len(s.lineBuf) > 0 {
				s.lineBuf = append(s.lineBuf, line...)
				full = s.lineBuf
			} else {
				full = line
			}
			trimmed := strings.TrimRight(string(full), "\r\n")
			s.lineBuf = s.lineBuf[:0]
			if err := p.dispatchLine(trimmed, emit); err != nil {
				return err
			}
		case statePayload:
			need := s.needTotal - s.payloadPos
			n := len(data)
			if n > need {
				n = need
			}
			copy(s.payload[s.payloadPos:], data[:n])
			s.payloadPos += n
			data = data[n:]
			if s.payloadPos == s.needTotal {
				s.st = statePayloadCRLF
				s.crlfSeen = 0
			}
		case statePayloadCRLF:
			for s.crlfSeen < 2 && len(data) > 0 {
				b := data[0]
				data = data[1:]
				if (s.crlfSeen == 0 && b != '\r') || (s.crlfSeen == 1 && b != '\n') {
					return newErr(ErrProtocolError, "payload not terminated by CR LF")
				}
				s.crlfSeen++
			}
			if s.crlfSeen == 2 {
				if err := p.finishPayload(emit); err != nil {
					return err
				}
				s.st = stateLine
			}
		}
	}
	return nil
}

func (p *parser) finishPayload(emit func(Frame) error) error {
	s := p
	f := s.pending
	if f.Kind == FrameHMsg {
		if s.hdrSize > len(s.payload) {
			return newErr(ErrProtocolError, "HMSG header size exceeds total size")
		}
		f.HeaderRaw = s.payload[:s.hdrSize]
		f.Payload = s.payload[s.hdrSize:]
	} else {
		f.Payload = s.payload
	}
	s.payload = nil
	s.pending = Frame{}
	return emit(f)
}

func (p *parser) dispatchLine(line string, emit func(Frame) error) error {
	if line == "" {
		return newErr(ErrProtocolError, "empty control line")
	}
	sp := strings.IndexAny(line, " \t")
	var verb, rest string
	if sp < 0 {
		verb = line
	} else {
		verb = line[:sp]
		rest = strings.TrimLeft(line[sp+1:], " \t")
	}
	switch strings.ToUpper(verb) {
	case "INFO":
		return emit(Frame{Kind: FrameInfo, Info: []byte(rest)})
	case "PING":
		return emit(Frame{Kind: FramePing})
	case "PONG":
		return emit(Frame{Kind: FramePong})
	case "+OK":
		return emit(Frame{Kind: FrameOK})
	case "-ERR":
		return emit(Frame{Kind: FrameErr, ErrText: strings.Trim(rest, "'\"")})
	case "MSG":
		return p.startPayload(FrameMsg, rest)
	case "HMSG":
		return p.startPayload(FrameHMsg, rest)
	default:
		return newErr(ErrProtocolError, "unknown operation %q", verb)
	}
}

func (p *parser) startPayload(kind FrameKind, args string) error {
	fields := strings.Fields(args)
	s := p
	var f Frame
	f.Kind = kind
	var sizeField, hdrField string
	switch kind {
	case FrameMsg:
		switch len(fields) {
		case 3:
			f.Subject, f.Sid, sizeField = fields[0], fields[1], fields[2]
		case 4:
			f.Subject, f.Sid, f.Reply, sizeField = fields[0], fields[1], fields[2], fields[3]
		default:
			return newErr(ErrProtocolError, "malformed MSG arguments %q", args)
		}
	case FrameHMsg:
		switch len(fields) {
		case 4:
			f.Subject, f.Sid, hdrField, sizeField = fields[0], fields[1], fields[2], fields[3]
		case 5:
			f.Subject, f.Sid, f.Reply, hdrField, sizeField = fields[0], fields[1], fields[2], fields[3], fields[4]
		default:
			return newErr(ErrProtocolError, "malformed HMSG arguments %q", args)
		}
	}
	total, err := strconv.Atoi(sizeField)
	if err != nil || total < 0 {
		return newErr(ErrProtocolError, "malformed size field %q", sizeField)
	}
	if hdrField != "" {
		hdr, err := strconv.Atoi(hdrField)
		if err != nil || hdr < 0 || hdr > total {
			return newErr(ErrProtocolError, "malformed header size field %q", hdrField)
		}
		s.hdrSize = hdr
	}
	s.pending = f
	s.needTotal = total
	s.payload = make([]byte, total)
	s.payloadPos = 0
	if total == 0 {
		s.st = statePayloadCRLF
		s.crlfSeen = 0
		return nil
	}
	s.st = statePayload
	return nil
}
