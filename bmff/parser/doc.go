// Package parser turns the ISO/IEC 14496-12 box description pseudocode
// into an abstract syntax tree.
//
// A definition looks like
//
//	aligned(8) class MovieHeaderBox extends FullBox("mvhd", version, 0) {
//		if (version == 1) {
//			unsigned int(64) creation_time;
//		} else {
//			unsigned int(32) creation_time;
//		}
//		template int(32) rate = 0x00010000;
//	}
//
// # Pipeline
//
// [Tokenize] produces the token sequence, [SplitDefinitions] cuts a file
// into one sequence per class, and [Parser.ParseClass] builds a [Class]
// from one sequence. [Parse] runs all three steps on a single definition.
//
// # Expressions
//
// The expression grammar has no precedence. Every operator chain nests to
// the right, so "a - b - c" parses as a - (b - c). Expressions are kept as
// trees; only widths, alignments and loop starts must be integer literals.
//
// # Errors
//
// Parsing stops at the first error, returned as an [*Error] whose Kind
// tells the failure class. Ignored brace-delimited default values are
// reported as [Diagnostic] warnings and do not stop parsing.
package parser
