// Package transport moves union values between processes.
//
// Values travel as CloudEvents in structured JSON mode: the event type is
// derived from the case name, the id is a fresh UUID and the data is the
// discriminated-union JSON produced by the codec. [Envelope] converts in
// both directions.
//
// Two brokers share the same Publish/Subscribe shape:
//
//   - [Memory] fans out encoded events in-process; it is used by tests and
//     single-process runs.
//   - [RabbitPublisher] and [RabbitSubscriber] use one RabbitMQ queue named
//     after the base type, a prefetch of one and manual acknowledgment.
//
// Messages that cannot be decoded never reach the subscriber channel. They
// are logged with their error kind, reported to the configured hook and,
// on RabbitMQ, rejected without requeue.
package transport
