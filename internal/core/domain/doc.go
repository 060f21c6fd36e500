// Package domain contains the core entities and business rules for the
// casedex retrieval pipeline: documents, chunks, vector records, citations,
// the tag query mini-syntax, and the shared error taxonomy.
//
// The domain layer has no dependencies on adapters or external services.
package domain
