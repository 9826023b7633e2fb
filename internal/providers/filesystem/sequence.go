package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Sequence describes the numeric run prefix + pad(i) + suffix for i in
// [Start, End]. ZeroPad 0 means no padding.
type Sequence struct {
	Prefix  string
	Suffix  string
	Start   int
	End     int
	ZeroPad int
}

// Name returns the relative name for index i.
func (q Sequence) Name(i int) string {
	return q.Prefix + numeral(i, q.ZeroPad) + q.Suffix
}

func numeral(i, pad int) string {
	if pad <= 0 {
		return strconv.Itoa(i)
	}
	if i < 0 {
		return "-" + fmt.Sprintf("%0*d", pad-1, -i)
	}
	return fmt.Sprintf("%0*d", pad, i)
}

// RenameSequence renames OldPrefix+pad(i)+OldSuffix to
// NewPrefix+pad(i)+NewSuffix for i in [Start, End].
type RenameSequence struct {
	OldPrefix   string
	OldSuffix   string
	NewPrefix   string
	NewSuffix   string
	Start       int
	End         int
	ZeroPad     int
	SkipMissing bool
	Overwrite   bool
}

// SequenceReport lists the outcome of a create-sequence call.
type SequenceReport struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

func (r *SequenceReport) String() string {
	return "Created:\n" + joinOrNone(r.Created) +
		"\n\nSkipped (already existed):\n" + joinOrNone(r.Skipped)
}

// RenamePair is one applied or planned rename, relative to the root.
type RenamePair struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func (p RenamePair) String() string {
	return p.Old + " -> " + p.New
}

// RenameReport lists the outcome of a rename-sequence call.
type RenameReport struct {
	Renamed    []RenamePair `json:"renamed"`
	Missing    []string     `json:"missing"`
	Conflicted []string     `json:"conflicted"`
}

func (r *RenameReport) String() string {
	renamed := make([]string, len(r.Renamed))
	for i, p := range r.Renamed {
		renamed[i] = p.String()
	}
	return "Renamed:\n" + joinOrNone(renamed) +
		"\n\nMissing:\n" + joinOrNone(r.Missing) +
		"\n\nConflicted (exists, not overwritten):\n" + joinOrNone(r.Conflicted)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, "\n")
}

type seqItem struct {
	rel  string
	full string
}

// MaxSequenceLength caps how many names a single sequence call may span.
const MaxSequenceLength = 10_000

// Len returns the number of indices in [Start, End], or 0 when End < Start.
// The count saturates instead of overflowing for ranges near the int limits.
func (q Sequence) Len() uint64 {
	if q.End < q.Start {
		return 0
	}
	span := uint64(q.End) - uint64(q.Start)
	if span == math.MaxUint64 {
		return span
	}
	return span + 1
}

// resolveSequence resolves every name of q before anything is touched, so a
// single escaping name rejects the whole batch.
func (s *Sandbox) resolveSequence(op string, q Sequence) ([]seqItem, error) {
	n := q.Len()
	if n == 0 {
		return nil, nil
	}
	if n > MaxSequenceLength {
		return nil, newError(ErrInvalidArgument, op, q.Name(q.Start),
			"Range %d..%d spans more than %d names.", q.Start, q.End, MaxSequenceLength)
	}

	items := make([]seqItem, 0, int(n))
	for k := 0; k < int(n); k++ {
		rel := q.Name(q.Start + k)
		full, err := s.Resolve(rel)
		if err != nil {
			return nil, err
		}
		items = append(items, seqItem{rel: rel, full: full})
	}
	return items, nil
}

// CreateFilesSequence creates one file per index with the same content.
// Names that already exist are skipped and reported, not treated as errors.
func (s *Sandbox) CreateFilesSequence(q Sequence, content string) (*SequenceReport, error) {
	items, err := s.resolveSequence("create_files_sequence", q)
	if err != nil {
		return nil, err
	}
	if err := s.ensure(); err != nil {
		return nil, err
	}

	report := &SequenceReport{}
	for _, it := range items {
		if exists(it.full) {
			report.Skipped = append(report.Skipped, it.rel)
			continue
		}
		if err := writeAtomic(it.full, []byte(content)); err != nil {
			return report, ioError("create_files_sequence", it.rel, err)
		}
		report.Created = append(report.Created, it.rel)
	}

	s.logger.Debug("File sequence created",
		zap.Int("created", len(report.Created)),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

// CreateFoldersSequence creates one directory per index. Existing names are
// skipped and reported.
func (s *Sandbox) CreateFoldersSequence(q Sequence) (*SequenceReport, error) {
	items, err := s.resolveSequence("create_folders_sequence", q)
	if err != nil {
		return nil, err
	}
	if err := s.ensure(); err != nil {
		return nil, err
	}

	report := &SequenceReport{}
	for _, it := range items {
		if exists(it.full) {
			report.Skipped = append(report.Skipped, it.rel)
			continue
		}
		if err := os.MkdirAll(it.full, dirPerm); err != nil {
			return report, ioError("create_folders_sequence", it.rel, err)
		}
		report.Created = append(report.Created, it.rel)
	}

	s.logger.Debug("Folder sequence created",
		zap.Int("created", len(report.Created)),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

// RenameFilesSequence renames a numeric run. The numeral is shared between
// the old and new names. Missing sources are reported when SkipMissing is
// set; otherwise the call fails before the first rename. Existing targets
// are reported as conflicted unless Overwrite is set, in which case they are
// removed first. Renames applied before a later I/O failure are not undone.
func (s *Sandbox) RenameFilesSequence(req RenameSequence) (*RenameReport, error) {
	olds, err := s.resolveSequence("rename_files_sequence", Sequence{
		Prefix: req.OldPrefix, Suffix: req.OldSuffix,
		Start: req.Start, End: req.End, ZeroPad: req.ZeroPad,
	})
	if err != nil {
		return nil, err
	}
	news, err := s.resolveSequence("rename_files_sequence", Sequence{
		Prefix: req.NewPrefix, Suffix: req.NewSuffix,
		Start: req.Start, End: req.End, ZeroPad: req.ZeroPad,
	})
	if err != nil {
		return nil, err
	}
	for i := range olds {
		if olds[i].full == s.root || news[i].full == s.root {
			return nil, s.violation(olds[i].rel, olds[i].full, "rename_files_sequence cannot remove or relocate the sandbox root")
		}
	}
	if err := s.ensure(); err != nil {
		return nil, err
	}

	if !req.SkipMissing {
		for _, old := range olds {
			if !exists(old.full) {
				return nil, newError(ErrNotFound, "rename_files_sequence", old.rel, "Missing: %s", old.rel)
			}
		}
	}

	report := &RenameReport{}
	for i, old := range olds {
		next := news[i]

		if !exists(old.full) {
			if !req.SkipMissing {
				// Vanished after the up-front check.
				return report, newError(ErrNotFound, "rename_files_sequence", old.rel, "Missing: %s", old.rel)
			}
			report.Missing = append(report.Missing, old.rel)
			continue
		}
		if old.full == next.full {
			report.Conflicted = append(report.Conflicted, next.rel)
			continue
		}
		if exists(next.full) {
			if !req.Overwrite {
				report.Conflicted = append(report.Conflicted, next.rel)
				continue
			}
			if err := removeAny(next.full); err != nil {
				return report, ioError("rename_files_sequence", next.rel, err)
			}
		}

		if err := mkdirParent(next.full); err != nil {
			return report, ioError("rename_files_sequence", next.rel, err)
		}
		if err := os.Rename(old.full, next.full); err != nil {
			if errors.Is(err, fs.ErrNotExist) && req.SkipMissing {
				report.Missing = append(report.Missing, old.rel)
				continue
			}
			return report, ioError("rename_files_sequence", old.rel, err)
		}
		report.Renamed = append(report.Renamed, RenamePair{Old: old.rel, New: next.rel})
	}

	s.logger.Debug("File sequence renamed",
		zap.Int("renamed", len(report.Renamed)),
		zap.Int("missing", len(report.Missing)),
		zap.Int("conflicted", len(report.Conflicted)),
	)
	return report, nil
}
