// Package semexchange is the semantic core of a machine-to-machine data
// marketplace: an event-driven taxonomy and matching engine over an
// RDF-shaped graph store.
//
// # Architecture
//
// Marketplace domain events (offerings registered, categories declared,
// prices changed) arrive on a JetStream stream. The projector turns each
// event into an idempotent delta against two named graphs: the offerings
// graph holding the projected resources, and the ontology graph holding
// the category taxonomy and its annotations. The taxonomy package keeps an
// in-memory snapshot of the ontology graph, rebuilt synchronously whenever
// a projection handler touches it. The matcher answers discovery queries
// by intersecting independent spatial, temporal, and semantic filters over
// the offerings graph.
//
//	events ──▶ consumer ──▶ projector ──▶ store (offerings + ontology graphs)
//	                            │                    ▲
//	                            ▼                    │
//	                        taxonomy ◀───────────────┘
//	                            ▲
//	                            │
//	queries ──────────────▶ matcher
//
// # Layout
//
//   - store: the graph store interface with in-memory and SQLite adapters
//   - projector: event handlers producing idempotent graph deltas
//   - taxonomy: the versioned in-memory ontology snapshot
//   - rules: pure inference passes (closure, inheritance, price normalization)
//   - matcher: filter-and-intersect offering discovery
//   - consumer: the durable JetStream consumer feeding the projector
//   - types: domain types shared across packages (events, offerings, semantics)
//   - vocabulary: the IRI constants of the exchange's RDF vocabulary
//
// Projection is single-writer; matching reads run concurrently against
// whatever the store has committed.
package semexchange
