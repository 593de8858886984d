// Package service exposes protein-group network retrieval as a long-lived service.
//
// A Service owns one in-memory session. RetrieveAndGroup parses a protein-group query,
// fetches the network of the listed proteins, groups and collapses it, and registers the
// result under a UUID so later calls can refer to it:
//
//	svc := service.New(retriever, service.WithLogger(logger))
//	res, err := svc.RetrieveAndGroup(ctx, service.Request{Query: "P1;P2\nP3", TaxonID: 9606})
//	if errors.Is(err, errors.ErrNoNetwork) {
//		// nothing was loaded
//	}
//	state, err := svc.SetGroupState(ctx, res.NetworkID, "P1;P2", false)
//
// Every access to the session is serialized by one mutex, so group events are delivered
// strictly one at a time.
//
// Handler binds the operations to NATS request/reply subjects. Inbound requests are
// validated against JSON schemas before they reach the service; failures are answered
// with a natsclient.ErrorReply carrying the error class.
package service
