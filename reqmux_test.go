package nats

import "testing"

func TestLastSubjectToken(t *testing.T) {
	cases := map[string]string{
		"_INBOX.abc.def": "def",
		"noDot":          "noDot",
	}
	for in, want := range cases {
		if got := lastSubjectToken(in); got != want {
			t.Errorf("lastSubjectToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRequestMuxTranslateNoResponders(t *testing.T) {
	m := newRequestMux(nil)
	h := Header{}
	h.Set("Status", "503")
	res := m.translate(&Msg{Header: h})
	if res.err == nil {
		t.Fatal("expected NO_RESPONDERS error")
	}
	if e, ok := res.err.(*Error); !ok || e.Code != ErrNoResponders {
		t.Errorf("err = %v, want ErrNoResponders", res.err)
	}
}

func TestRequestMuxTranslatePassesThroughOrdinaryReply(t *testing.T) {
	m := newRequestMux(nil)
	msg := &Msg{Subject: "reply", Data: []byte("ok")}
	res := m.translate(msg)
	if res.err != nil || res.msg != msg {
		t.Errorf("translate() = %+v, want pass-through", res)
	}
}

func TestPendingRequestResolveIsIdempotent(t *testing.T) {
	pr := &pendingRequest{token: "t", result: make(chan requestResult, 1)}
	pr.resolve(requestResult{err: newErr(ErrTimeout, "first")})
	pr.resolve(requestResult{err: newErr(ErrTimeout, "second")}) // must not block or panic
	res := <-pr.result
	if res.err.(*Error).Message != "first" {
		t.Errorf("second resolve overwrote the first: got %v", res.err)
	}
}

func TestRequestMuxCloseAllResolvesPending(t *testing.T) {
	m := newRequestMux(nil)
	pr := &pendingRequest{token: "t", result: make(chan requestResult, 1)}
	m.pend["t"] = pr
	m.closeAll(newErr(ErrConnectionClosed, "closed"))
	res := <-pr.result
	if res.err == nil {
		t.Fatal("expected closeAll to resolve pending request with an error")
	}
}

func TestRequestMuxCancelRemovesPending(t *testing.T) {
	m := newRequestMux(nil)
	m.pend["t"] = &pendingRequest{token: "t", result: make(chan requestResult, 1)}
	m.cancel("t")
	if _, ok := m.pend["t"]; ok {
		t.Error("cancel() did not remove the pending entry")
	}
}
