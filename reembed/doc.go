// Package reembed rewrites the stored vectors of every document in the
// archive, for use after switching embedding models.
//
// Documents are processed in batches with progress reporting and
// transient-error retry. Vectors are normalized before persisting so
// cosine similarity keeps working regardless of what the embedding
// service returns.
package reembed
