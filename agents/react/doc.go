// Package react implements the ReAct (Reasoning and Acting) agent loop.
//
// # Overview
//
// The loop alternates between thinking and acting until the model gives a final answer
// or the iteration cap is reached: Think -> Act -> Observe -> Repeat. Each iteration is a
// strict request/response round trip. The tool call resolves before its observation is
// recorded, and no calls run in parallel.
//
// # Agent Loop Behavior
//
// ## 1. Actions Take Priority Over Final Answers
//
// When the model writes both an Action and a Final Answer, the Action runs and the answer
// is discarded. A warning note on that scratchpad entry tells the model about it in the
// next prompt.
//
// ## 2. Malformed Output
//
// Output that matches neither form becomes a scratchpad entry with a corrective note and
// the loop continues. The iteration cap bounds how often this can happen.
//
// ## 3. Tool Failures
//
// Unknown tools, invalid input and errors raised by a tool all become observations
// starting with "Error:". They never end the episode.
//
// ## 4. Ending Without an Answer
//
// When the cap or the timeout is reached, Run returns the last non-empty thought, or
// FallbackAnswer. Provider failures abort the episode with AbortedAnswer.
//
// # Steppers
//
//   - TextStepper: Thought/Action/Action Input/Final Answer text parsed by ParseStep
//   - FunctionStepper: JSON function selection through the structured adapter
//
// # Templates
//
// The prompt is a Go text/template with access to PromptData:
//   - {{.History}}, {{.Tools}}, {{.ToolNames}}, {{.Instructions}}
//   - {{.Question}}, {{.Scratchpad}}, {{.Entries}}
//   - Time provider functions: {{.Time.Today}}, {{.Time.Weekday}}, {{.Time.Format "layout"}}
package react
