// Package providers rotates inference requests across the configured vision
// providers. Strict round-robin is the entire policy: health tracking and
// failure backoff live nowhere in this pipeline, because a provider that
// fails simply costs one fallback notification and gets retried on its next
// turn.
package providers
