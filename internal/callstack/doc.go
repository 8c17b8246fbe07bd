// Package callstack records the evaluation markers a lazy evaluator emits
// and reconstructs a human-readable call chain from them.
//
// # Why a Marker Log
//
// Lazy evaluation has no well delimited stack frames: arguments are pushed
// as thunks, the function part of an application is evaluated afterwards,
// and argument evaluation may happen long after the function body was
// entered. The native Go stack of the evaluator therefore cannot answer "how
// did we get here" when an error is reported. Instead the evaluator appends
// small markers to a CallStack as a side effect of reduction:
//
//   - AppEvaluated when an application node is reduced,
//   - FunEntered when the function part reduced to a function whose body is
//     about to be entered (carrying the position of the application),
//   - VarEntered when a name is resolved,
//   - FieldEntered when a record field is projected.
//
// # Reconstruction
//
// GroupByCalls filters and merges the raw markers into CallDescr values:
//
//  1. Markers attributed to the builtin file, generated variables, and
//     applications with inherited positions (inserted contract checks) are
//     dropped.
//  2. Curried sub-applications are merged into their enclosing call, so
//     `f a b c` is reported once rather than as `f a`, `f a b`, `f a b c`.
//  3. Variables and fields resolved inside a pending call name it.
//
// The result lists closed calls innermost first, plus the call still being
// set up when the log was sampled, if any.
//
// # Concurrency
//
// A CallStack belongs to a single evaluation session and is not safe for
// concurrent mutation. GroupByCalls only reads the log.
package callstack
