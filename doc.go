// Package guardian implements a policy block-tree engine: it materializes
// persisted declarative block trees into live object graphs, enforces
// per-block visibility and permission rules, tracks and persists per-user
// block state, and fans state and error notifications out to entitled
// recipients. The lifecycle coordinator moves policy definitions from draft
// to published, anchoring each published version on an append-only ledger.
package guardian
