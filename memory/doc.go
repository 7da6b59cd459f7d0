// Package memory holds the conversation log for one tutoring session.
//
// Invariants:
//   - The first message, when present, is the system prompt. It is never
//     duplicated or mutated.
//   - A tool_result always directly follows the assistant message that
//     requested the same tool.
//
// Nothing is persisted. A Conversation lives as long as its session.
package memory
