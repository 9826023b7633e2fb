// Package filesystem implements a filesystem store confined to one sandbox
// root directory.
//
// The package is organized by concern:
//   - paths: containment guard every operation resolves through
//   - basic: read, write, append, create and delete of single files
//   - directory: listing, tree rendering, folder create and delete
//   - operations: copy, move and rename
//   - sequence: numbered batch create and rename
//   - search: glob delete and regex bulk rename
//   - metadata: stat and size formatting
//   - commands: tool ids, typed arguments and schemas
//
// Every caller-supplied path is relative to the root. Absolute paths and
// paths that clean to a location outside the root fail with
// ErrSecurityViolation before the filesystem is touched. Batch operations
// resolve all of their derived paths up front, so a violation anywhere in a
// batch leaves the tree unchanged.
//
// Example Usage:
//
//	sb, err := filesystem.New("test_folder", filesystem.WithLogger(log))
//	report, err := sb.CreateFilesSequence(filesystem.Sequence{
//		Prefix: "f", Suffix: ".txt", Start: 1, End: 3, ZeroPad: 2,
//	}, "")
//	fmt.Println(report)
package filesystem
