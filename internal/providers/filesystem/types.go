package filesystem

import (
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/fsagent/internal/shared/paths"
)

const (
	// DefaultMaxReadBytes is the read ceiling applied when none is given.
	DefaultMaxReadBytes int64 = 200_000

	// DefaultMaxDepth is the tree depth used by list_dir when none is given.
	DefaultMaxDepth = 2

	dirPerm  = 0o755
	filePerm = 0o644
)

// FileInfo represents file metadata
type FileInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
	IsDir     bool      `json:"is_dir"`
	Mode      string    `json:"mode"`
	Modified  time.Time `json:"modified"`
	Extension string    `json:"extension,omitempty"`
	MimeType  string    `json:"mime_type,omitempty"`
	Charset   string    `json:"charset,omitempty"`
}

// Sandbox confines every file and folder operation to a single root
// directory. All operations are synchronous and re-read live filesystem
// state; a Sandbox holds no cache and performs no locking.
type Sandbox struct {
	root   string
	logger *zap.Logger
}

// Option configures a Sandbox.
type Option func(*Sandbox)

// WithLogger sets the logger used for mutation and violation events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Sandbox) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a sandbox rooted at root. The directory itself is created
// lazily by the first operation that needs it.
func New(root string, opts ...Option) (*Sandbox, error) {
	abs, err := paths.Clean(root)
	if err != nil {
		return nil, err
	}

	s := &Sandbox{root: abs, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute sandbox root.
func (s *Sandbox) Root() string {
	return s.root
}
