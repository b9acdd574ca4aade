// Package embed turns text passages, table metadata and image metadata into
// fixed-dimension vectors.
//
// An Embedder is the raw provider capability (Ollama, OpenAI, Gemini or the
// local hashing embedder). A Client wraps one Embedder with rate limiting,
// per-call timeouts, bounded retries of transient failures and dimension
// enforcement. ContentEmbedder builds on a Client and embeds tables and
// images through deterministic textual representations of their metadata,
// never raw cells or pixels.
//
// Errors returned by a Client are *ServiceError values classified as
// Transient or Permanent:
//
//	vec, err := client.Embed(ctx, "quarterly revenue")
//	if embed.IsPermanent(err) {
//		// bad credentials, unknown model, dimension mismatch...
//	}
package embed
