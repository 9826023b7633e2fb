// Package paths provides the containment primitives for the sandbox.
//
// Every path handed to the filesystem store is relative to a single sandbox
// root. Containment is decided lexically on cleaned absolute paths and
// compared component by component:
//
//	/srv/sandbox           root
//	/srv/sandbox/a/b.txt   within
//	/srv/sandbox/../x      not within (cleans to /srv/x)
//	/srv/sandboxed/x       not within (sibling sharing a string prefix)
//
// # Usage
//
//	import "github.com/GriffinCanCode/fsagent/internal/shared/paths"
//
//	root, _ := paths.Clean("test_folder")
//	target := paths.Join(root, "docs/readme.md")
//	if !paths.Within(root, target) {
//	    // reject
//	}
package paths
