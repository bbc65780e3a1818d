// Package wordcount provides an HTTP client for the word-count service API.
//
// # Overview
//
// The service accepts a text file, processes it asynchronously, and exposes
// the job's status and word-frequency output under an opaque identifier. This
// package wraps the three endpoints and the payload types:
//
//   - client.go: HTTP client, multipart upload, request handling
//   - types.go: JobStatus, WordCount and Result
//
// # API Endpoints
//
//   - POST /upload: multipart field "file"; body is the job identifier
//   - GET /upload/status?identifier=<id>: body is PROCESSING, COMPLETED or FAILED
//   - GET /upload?identifier=<id>: JSON {identifier, uploadStatus, wordCounts}
//
// Identifiers are opaque and round-tripped verbatim (query-escaped only).
// Plain-text bodies are trimmed and tolerated when JSON-quoted.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation, bounded by RequestTimeout (UploadTimeout for uploads)
//   - Set User-Agent: wordcloud/0.1
//   - Carry a fresh X-Request-ID (uuid) that is logged with the outcome
//   - Share a cookie jar so session cookies set by the service travel with later calls
//   - Return wrapped errors with context about what failed
//
// Example error messages:
//   - "execute request: dial tcp: connection refused"
//   - "api /upload/status returned status 500"
//   - "decode response: unexpected end of JSON input"
//
// # Result Semantics
//
// Result.WordCounts is nil until the job produced output. HasData is the only
// "data ready" signal; UploadStatus may lag or lead it.
//
// # Design Rationale
//
// The client does no retries and no polling. The tracker package owns the
// retry cadence, deadlines and cancellation.
package wordcount
