// Package testutil provides fixtures shared by package tests: a STRING-like protein
// network on the in-memory substrate and a scripted NATS requester.
//
// A ProteinNetwork starts with the node and edge columns the retrieval service
// delivers and one node per protein, addressed by query term:
//
//	pn := testutil.NewProteinNetwork(t, "P1", "P2", "P3")
//	pn.Connect(t, "P1", "P2", 0.9)
//	pn.Set(t, "P1", vocabulary.Description, "tumour suppressor")
//
// MockRequester answers request/reply calls from a handler function and records every
// request for later assertions.
package testutil
