/*
Package codec bridges free-text model output into the typed action/tool-call
protocol.

Language models emit JSON with predictable defects: fenced blocks, bare
enum-like values, unterminated strings, trailing commas, missing closing
braces. Repair normalizes those patterns, ExtractBalancedObject isolates the
first complete object from surrounding prose, and the Parse functions combine
both into a pipeline that never fails loudly: every unparseable input resolves
to nil, which callers treat as "no actionable output".
*/
package codec
