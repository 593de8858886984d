// Package natsclient wraps a NATS connection with a circuit breaker, request/reply
// helpers and connection metrics.
//
// The client moves through Disconnected, Connecting, Connected and Reconnecting. After
// a threshold of consecutive connection failures (5 by default) the circuit opens and
// Connect fails fast with errors.ErrCircuitOpen until the backoff has elapsed; the
// backoff doubles up to a maximum on every further round of failures.
//
// # Usage
//
//	client, err := natsclient.NewClient("nats://localhost:4222",
//	    natsclient.WithName("proteovis"),
//	    natsclient.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	reply, err := client.Request(ctx, "string.network.retrieve", body)
//
// Request/reply services register a handler whose return value becomes the reply:
//
//	err = client.SubscribeRequest(ctx, "proteovis.retrieve", "proteovis",
//	    func(ctx context.Context, data []byte) ([]byte, error) {
//	        return handle(ctx, data)
//	    })
//
// A handler error is answered with a JSON error envelope (see ErrorReply), so callers
// never wait for a timeout on failures.
//
// # Testing
//
// NewTestClient starts a NATS server in a container through testcontainers-go and
// returns a connected client. It is used by tests built with the integration tag.
package natsclient
