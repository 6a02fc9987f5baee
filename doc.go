// Package nats implements the NATS publish/subscribe wire protocol over a
// reliable byte-duplex transport: a line-based codec, a reconnecting
// connection state machine, a subscription registry, and a request/reply
// multiplexer built on a single wildcard inbox subscription.
//
// A minimal client:
//
//	nc, err := nats.Connect("nats://127.0.0.1:4222")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer nc.Close()
//
//	sub, _ := nc.Subscribe("updates.*", "")
//	for msg := range sub.Messages() {
//		fmt.Println(msg.Subject, string(msg.Data))
//	}
package nats
