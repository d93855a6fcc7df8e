// Package bridge relays between the clothesline's MQTT broker and the HTTP
// API the dashboard polls.
//
// The device publishes heartbeats on one topic and listens for commands on
// another. The bridge caches the newest heartbeat, stamping it with its own
// clock, and serves it on GET /heartbeat/. POST /cmd/ publishes a command
// after validation, a rate limit and a circuit breaker around the publish.
package bridge
