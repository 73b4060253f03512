// Package expansion tracks the expansions applied to a single document.
//
// An expansion is a region of text that was substituted for other text, for
// example a call site replaced by the body of the function it calls. Each
// expansion is recorded as an [Entry] holding a live marker over the
// expanded text, the text it replaced, and the cursor position at the time.
//
// A [Set] indexes entries by the row they start on and supports three
// queries:
//
//   - [Set.Add] records a new expansion.
//   - [Set.Find] returns the innermost expansion covering a point.
//   - [Set.Remove] takes the innermost expansion covering a point out of the
//     set, destroying every expansion nested inside it first.
//
// Typical undo flow:
//
//	entry, ok := set.Remove(cursor)
//	if !ok {
//	    return // nothing to unexpand here
//	}
//	buf.ReplaceRange(entry.Range(), entry.OriginalText())
//	entry.Release()
//
// Expansions in one set never overlap partially: a new expansion is always
// made strictly inside an existing one or outside all of them. The removal
// cascade relies on this.
package expansion
