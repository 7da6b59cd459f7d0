// Package runner runs one tutoring turn against a conversation.
//
// A turn is a two-phase state machine with at most one tool round-trip:
//
//	user(text) -> assistant(text)
//	user(text) -> assistant(tool call) -> tool_result -> assistant(text)
//
// Invariants:
//   - the tool call and its tool_result are appended back to back.
//   - a second tool request from the model is answered as text, never run.
//   - tool lookup and argument failures become an is_error tool_result so the
//     model can recover in its follow-up.
//   - a *gateway.ModelUnavailableError rolls the conversation back to where
//     the turn started, so the turn can simply be retried.
package runner
