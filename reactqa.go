// Package reactqa answers natural-language questions with a language model that reasons in
// Thought/Action/Observation steps and calls tools (search, arithmetic, date/time) between them.
//
// The root package holds the vocabulary shared by every other package: conversation turns,
// scratchpad entries, parsed steps, tools, hook interfaces and the error taxonomy.
//
// The moving parts live in sub-packages:
//   - agents/react: the ReAct control loop
//   - structured: text, JSON and function-call completions over a langchaingo model
//   - toolchain: the tool registry
//   - tools: the concrete tools
//   - calc: the safe expression evaluator behind the calculator tool
//   - session: question answering with conversation memory
package reactqa
