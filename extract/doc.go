// Package extract finds structured entities in session transcripts.
//
// Two extractors cooperate: deterministic regex rules with fixed
// per-rule confidences (high precision for prices, addresses, listing
// references, dates), and an LLM tool-call that covers what patterns
// cannot (people mentioned in prose, named deals, companies without a
// recognizable suffix). Results from both are merged by (type,
// normalized value), keeping the highest confidence and the union of
// sources.
//
// The LLM side is best effort: a failed or timed-out call degrades the
// result to pattern-only, it never fails the caller.
package extract
