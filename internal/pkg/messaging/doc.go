// Package messaging is the queue transport used to hand dispatch envelopes
// from the HTTP process to consumer workers.
//
// Publishers and consumers only see the Messaging interface; NATS, Kafka and
// an in-process memory broker implement it. Handlers are recovered from panics
// and, with WithAutoAck, acknowledged or negatively acknowledged from their
// return value.
package messaging
