// Package toolchain holds the tool registry the agent dispatches actions through.
//
// # Invocation Flow
//
//	ToolCall -> Lookup -> Coerce -> Defaults -> Validate -> BeforeToolCall -> Call -> Format
//
// ## Coercion
//
// Models write tool input as free text after "Action Input:". The registry maps it onto
// the tool's parameter schema in this order:
//   - explicit structured arguments (function selection) are used as-is
//   - a JSON object in the text is decoded, including fenced or slightly broken JSON
//   - otherwise the whole text binds to the schema's sole string parameter
//   - tools without required parameters accept empty input, "none" or "null"
//
// ## Output Formatting
//
// A string returned by a tool is the observation verbatim. Any other value is rendered
// as YAML, which models read more reliably than Go's %v formatting.
//
// ## Failures
//
// Invoke never panics. Unknown names wrap [reactqa.ErrUnknownTool], inputs that cannot be
// mapped or fail validation wrap [reactqa.ErrInvalidToolInput], and errors or panics
// raised by the tool come back as *reactqa.ToolError.
package toolchain
