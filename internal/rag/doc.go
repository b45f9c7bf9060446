// Package rag implements the retrieval pipeline behind the store assistant's
// knowledge tools: loading the plant catalog and the return-policy document,
// rendering them into chunks, embedding the chunks through Gemini, and serving
// diversity-ranked similarity search over a file-persisted vector index.
//
// The pipeline is stateless per query. An Index is built (or reloaded) once at
// startup and is read-only afterwards; Retriever and Chain hold no mutable
// state, so a single instance can serve every tool call.
package rag
