// Package retrieval obtains protein interaction networks from the external STRING
// retrieval service.
//
// A Retriever turns Args into a Payload, the wire form of a network: columns, nodes
// with attribute rows, and edges between node identifiers. Payload.Build materializes
// it on a network substrate. NATSRetriever talks to the service over NATS
// request/reply with rate limiting, retries of transient failures and a payload cache.
package retrieval
