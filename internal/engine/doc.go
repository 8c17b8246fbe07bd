// Package engine is a lazy evaluator for programs written in HCL syntax. It
// is the producer of the call log: while reducing expressions it reports
// applications, function entries, variable lookups and field accesses to a
// callstack.CallStack, and every evaluation error carries the call chain
// reconstructed from that log at the point of failure.
//
// # Evaluation Model
//
// Top-level attributes, function arguments and record fields are bound to
// memoised thunks and only evaluated when forced. A call `f(a, b)` is
// curried: it is reduced as `(f(a))(b)`, so the evaluator emits one
// application per argument, all starting where the call starts. Operands of
// operators, conditions, template parts and index keys are evaluated
// strictly; the call log is rolled back to its checkpoint once such an
// operand evaluated successfully, so only markers that explain the surviving
// continuation remain.
//
// Parameters declared with a contract are wrapped in a generated binding
// whose application markers carry inherited positions; the reconstruction
// hides them.
package engine
