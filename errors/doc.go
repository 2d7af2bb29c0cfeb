/*
Package errors implements custom error interfaces for the wallet engine.

Reuse errors declared in this package whenever possible. Every error code
is registered once, using Register(code, description), and the code is
what a client sees as the result code of a failed transaction. Use Info
to turn any error into that code and a message safe to show.

For reusing errors use Errxxx.New and Errxxx.Newf, or Wrap and Wrapf.

A stacktrace is attached at the point of the first wrap. Do not declare
wrapped errors as package level variables, as that produces a useless
stacktrace.

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context

	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
