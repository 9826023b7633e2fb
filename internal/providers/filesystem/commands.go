package filesystem

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/invopop/jsonschema"
)

// ToolID names one sandbox operation as exposed to tool callers.
type ToolID string

const (
	ToolListDir               ToolID = "filesystem.list_dir"
	ToolReadFile              ToolID = "filesystem.read_file"
	ToolWriteFile             ToolID = "filesystem.write_file"
	ToolAppendFile            ToolID = "filesystem.append_file"
	ToolCopyFile              ToolID = "filesystem.copy_file"
	ToolMoveFile              ToolID = "filesystem.move_file"
	ToolCreateFile            ToolID = "filesystem.create_file"
	ToolCreateFilesSequence   ToolID = "filesystem.create_files_sequence"
	ToolRenameFile            ToolID = "filesystem.rename_file"
	ToolRenameFilesSequence   ToolID = "filesystem.rename_files_sequence"
	ToolDeleteFile            ToolID = "filesystem.delete_file"
	ToolDeleteGlob            ToolID = "filesystem.delete_glob"
	ToolCreateFolder          ToolID = "filesystem.create_folder"
	ToolCreateFoldersSequence ToolID = "filesystem.create_folders_sequence"
	ToolDeleteFolder          ToolID = "filesystem.delete_folder"
	ToolBulkRenameRegex       ToolID = "filesystem.bulk_rename_regex"
	ToolStat                  ToolID = "filesystem.stat"
)

var (
	// ErrUnknownTool is returned by Decode for ids outside the command set.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArgs is returned by Decode when params do not fit the tool.
	ErrInvalidArgs = errors.New("invalid arguments")
)

// Args is a decoded, defaulted argument set for one tool.
type Args interface {
	// Run executes the operation and returns the result payload. Every
	// payload carries an "output" string with the human-readable result.
	Run(s *Sandbox) (map[string]interface{}, error)
}

// CommandSpec describes one tool of the command set.
type CommandSpec struct {
	ID          ToolID
	Name        string
	Description string
	Returns     string
	Schema      *jsonschema.Schema

	newArgs func() Args
}

type ListDirArgs struct {
	Path     string `json:"path" jsonschema:"description=Directory or file relative to the sandbox root,default=."`
	Tree     bool   `json:"tree" jsonschema:"description=Render an indented tree instead of a flat listing,default=true"`
	MaxDepth int    `json:"max_depth" jsonschema:"description=Tree depth below path (0 renders only the root line),default=2"`
}

func (a *ListDirArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	out, err := s.List(a.Path, a.Tree, a.MaxDepth)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"path": a.Path, "output": out}, nil
}

type ReadFileArgs struct {
	Path     string `json:"path" jsonschema:"required,description=File relative to the sandbox root"`
	MaxBytes int64  `json:"max_bytes" jsonschema:"description=Refuse files larger than this many bytes,default=200000"`
}

func (a *ReadFileArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	content, err := s.Read(a.Path, a.MaxBytes)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"path": a.Path, "content": content, "output": content}, nil
}

type WriteFileArgs struct {
	Path    string `json:"path" jsonschema:"required,description=File relative to the sandbox root"`
	Content string `json:"content" jsonschema:"required,description=Full new content of the file"`
}

func (a *WriteFileArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	return pathResult(s.Write(a.Path, a.Content))
}

type AppendFileArgs struct {
	Path    string `json:"path" jsonschema:"required,description=File relative to the sandbox root"`
	Content string `json:"content" jsonschema:"required,description=Text appended to the end of the file"`
}

func (a *AppendFileArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	return pathResult(s.Append(a.Path, a.Content))
}

type CopyFileArgs struct {
	Src       string `json:"src" jsonschema:"required,description=Source file"`
	Dst       string `json:"dst" jsonschema:"required,description=Destination file"`
	Overwrite bool   `json:"overwrite" jsonschema:"description=Replace an existing destination file,default=false"`
}

func (a *CopyFileArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	return pathResult(s.Copy(a.Src, a.Dst, a.Overwrite))
}

type MoveFileArgs struct {
	Src       string `json:"src" jsonschema:"required,description=Source file or folder"`
	Dst       string `json:"dst" jsonschema:"required,description=Destination path"`
	Overwrite bool   `json:"overwrite" jsonschema:"description=Replace an existing destination of the same kind,default=false"`
}

func (a *MoveFileArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	return pathResult(s.Move(a.Src, a.Dst, a.Overwrite))
}

type CreateFileArgs struct {
	Path    string `json:"path" jsonschema:"required,description=New file relative to the sandbox root"`
	Content string `json:"content" jsonschema:"description=Initial content"`
}

func (a *CreateFileArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	return pathResult(s.CreateFile(a.Path, a.Content))
}

type CreateFilesSequenceArgs struct {
	Prefix  string `json:"prefix" jsonschema:"required,description=Name before the number"`
	Suffix  string `json:"suffix" jsonschema:"description=Name after the number (e.g. .txt)"`
	Start   int    `json:"start" jsonschema:"description=First number,default=1"`
	End     int    `json:"end" jsonschema:"description=Last number (inclusive),default=1"`
	ZeroPad int    `json:"zero_pad" jsonschema:"description=Zero-fill numbers to this width (0 disables),default=0"`
	Content string `json:"content" jsonschema:"description=Content of every created file"`
}

func (a *CreateFilesSequenceArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	report, err := s.CreateFilesSequence(Sequence{
		Prefix: a.Prefix, Suffix: a.Suffix, Start: a.Start, End: a.End, ZeroPad: a.ZeroPad,
	}, a.Content)
	if err != nil {
		return nil, err
	}
	return reportResult(report), nil
}

type RenameFileArgs struct {
	Old string `json:"old" jsonschema:"required,description=Current path"`
	New string `json:"new" jsonschema:"required,description=New path"`
}

func (a *RenameFileArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	return pathResult(s.Rename(a.Old, a.New))
}

type RenameFilesSequenceArgs struct {
	OldPrefix   string `json:"old_prefix" jsonschema:"required,description=Current name before the number"`
	OldSuffix   string `json:"old_suffix" jsonschema:"description=Current name after the number"`
	NewPrefix   string `json:"new_prefix" jsonschema:"required,description=New name before the number"`
	NewSuffix   string `json:"new_suffix" jsonschema:"description=New name after the number"`
	Start       int    `json:"start" jsonschema:"required,description=First number"`
	End         int    `json:"end" jsonschema:"required,description=Last number (inclusive)"`
	ZeroPad     int    `json:"zero_pad" jsonschema:"description=Zero-fill numbers to this width (0 disables),default=0"`
	SkipMissing bool   `json:"skip_missing" jsonschema:"description=Report missing sources instead of failing,default=true"`
	Overwrite   bool   `json:"overwrite" jsonschema:"description=Replace existing targets,default=false"`
}

func (a *RenameFilesSequenceArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	report, err := s.RenameFilesSequence(RenameSequence{
		OldPrefix: a.OldPrefix, OldSuffix: a.OldSuffix,
		NewPrefix: a.NewPrefix, NewSuffix: a.NewSuffix,
		Start: a.Start, End: a.End, ZeroPad: a.ZeroPad,
		SkipMissing: a.SkipMissing, Overwrite: a.Overwrite,
	})
	if err != nil {
		return nil, err
	}
	return reportResult(report), nil
}

type DeleteFileArgs struct {
	Path string `json:"path" jsonschema:"required,description=File relative to the sandbox root"`
}

func (a *DeleteFileArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	return pathResult(s.DeleteFile(a.Path))
}

type DeleteGlobArgs struct {
	Pattern string `json:"pattern" jsonschema:"required,description=Glob relative to the sandbox root (** matches any depth)"`
}

func (a *DeleteGlobArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	report, err := s.DeleteGlob(a.Pattern)
	if err != nil {
		return nil, err
	}
	return reportResult(report), nil
}

type CreateFolderArgs struct {
	Path    string `json:"path" jsonschema:"required,description=Folder relative to the sandbox root"`
	ExistOK bool   `json:"exist_ok" jsonschema:"description=Succeed when the folder already exists,default=true"`
}

func (a *CreateFolderArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	return pathResult(s.CreateFolder(a.Path, a.ExistOK))
}

type CreateFoldersSequenceArgs struct {
	Prefix  string `json:"prefix" jsonschema:"required,description=Name before the number"`
	Suffix  string `json:"suffix" jsonschema:"description=Name after the number"`
	Start   int    `json:"start" jsonschema:"description=First number,default=1"`
	End     int    `json:"end" jsonschema:"description=Last number (inclusive),default=1"`
	ZeroPad int    `json:"zero_pad" jsonschema:"description=Zero-fill numbers to this width (0 disables),default=0"`
}

func (a *CreateFoldersSequenceArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	report, err := s.CreateFoldersSequence(Sequence{
		Prefix: a.Prefix, Suffix: a.Suffix, Start: a.Start, End: a.End, ZeroPad: a.ZeroPad,
	})
	if err != nil {
		return nil, err
	}
	return reportResult(report), nil
}

type DeleteFolderArgs struct {
	Path      string `json:"path" jsonschema:"required,description=Folder relative to the sandbox root"`
	Recursive bool   `json:"recursive" jsonschema:"description=Delete the folder and everything in it,default=false"`
}

func (a *DeleteFolderArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	out, err := s.DeleteFolder(a.Path, a.Recursive)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"path": a.Path, "output": out}, nil
}

type BulkRenameRegexArgs struct {
	BasePath       string `json:"base_path" jsonschema:"required,description=Folder whose files are renamed"`
	Pattern        string `json:"pattern" jsonschema:"required,description=Regular expression matched against file names"`
	Replacement    string `json:"replacement" jsonschema:"required,description=Replacement text (\\1 or \\g<name> for groups; $ is literal)"`
	IncludeSubdirs bool   `json:"include_subdirs" jsonschema:"description=Also rename files in subfolders,default=true"`
	TestOnly       bool   `json:"test_only" jsonschema:"description=Only preview the renames,default=false"`
}

func (a *BulkRenameRegexArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	report, err := s.BulkRenameRegex(RenameRule{
		BasePath:       a.BasePath,
		Pattern:        a.Pattern,
		Replacement:    a.Replacement,
		IncludeSubdirs: a.IncludeSubdirs,
		TestOnly:       a.TestOnly,
	})
	if err != nil {
		return nil, err
	}
	return reportResult(report), nil
}

type StatArgs struct {
	Path string `json:"path" jsonschema:"required,description=File or folder relative to the sandbox root"`
}

func (a *StatArgs) Run(s *Sandbox) (map[string]interface{}, error) {
	info, err := s.Stat(a.Path)
	if err != nil {
		return nil, err
	}
	out := fmt.Sprintf("%s\t%s\t%s", info.Path, info.SizeHuman, info.Mode)
	if info.MimeType != "" {
		out += "\t" + info.MimeType
	}
	return map[string]interface{}{"info": info, "output": out}, nil
}

func pathResult(path string, err error) (map[string]interface{}, error) {
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"path": path, "output": path}, nil
}

func reportResult(report fmt.Stringer) map[string]interface{} {
	return map[string]interface{}{"report": report, "output": report.String()}
}

var commands = []CommandSpec{
	{ID: ToolListDir, Name: "List Directory", Returns: "string",
		Description: "List a folder as a tree or a flat listing with sizes",
		newArgs:     func() Args { return &ListDirArgs{Path: ".", Tree: true, MaxDepth: DefaultMaxDepth} }},
	{ID: ToolReadFile, Name: "Read File", Returns: "string",
		Description: "Read a UTF-8 text file up to a byte limit",
		newArgs:     func() Args { return &ReadFileArgs{MaxBytes: DefaultMaxReadBytes} }},
	{ID: ToolWriteFile, Name: "Write File", Returns: "string",
		Description: "Create or overwrite a file",
		newArgs:     func() Args { return &WriteFileArgs{} }},
	{ID: ToolAppendFile, Name: "Append File", Returns: "string",
		Description: "Append text to a file, creating it if needed",
		newArgs:     func() Args { return &AppendFileArgs{} }},
	{ID: ToolCopyFile, Name: "Copy File", Returns: "string",
		Description: "Copy a file",
		newArgs:     func() Args { return &CopyFileArgs{} }},
	{ID: ToolMoveFile, Name: "Move", Returns: "string",
		Description: "Move a file or folder",
		newArgs:     func() Args { return &MoveFileArgs{} }},
	{ID: ToolCreateFile, Name: "Create File", Returns: "string",
		Description: "Create a new file; fails if it exists",
		newArgs:     func() Args { return &CreateFileArgs{} }},
	{ID: ToolCreateFilesSequence, Name: "Create Files Sequence", Returns: "object",
		Description: "Create numbered files such as f01.txt to f10.txt",
		newArgs:     func() Args { return &CreateFilesSequenceArgs{Start: 1, End: 1} }},
	{ID: ToolRenameFile, Name: "Rename", Returns: "string",
		Description: "Rename a file or folder",
		newArgs:     func() Args { return &RenameFileArgs{} }},
	{ID: ToolRenameFilesSequence, Name: "Rename Files Sequence", Returns: "object",
		Description: "Rename numbered files keeping their numbers",
		newArgs:     func() Args { return &RenameFilesSequenceArgs{SkipMissing: true} }},
	{ID: ToolDeleteFile, Name: "Delete File", Returns: "string",
		Description: "Delete a single file",
		newArgs:     func() Args { return &DeleteFileArgs{} }},
	{ID: ToolDeleteGlob, Name: "Delete Glob", Returns: "object",
		Description: "Delete every file matching a glob",
		newArgs:     func() Args { return &DeleteGlobArgs{} }},
	{ID: ToolCreateFolder, Name: "Create Folder", Returns: "string",
		Description: "Create a folder and its parents",
		newArgs:     func() Args { return &CreateFolderArgs{ExistOK: true} }},
	{ID: ToolCreateFoldersSequence, Name: "Create Folders Sequence", Returns: "object",
		Description: "Create numbered folders",
		newArgs:     func() Args { return &CreateFoldersSequenceArgs{Start: 1, End: 1} }},
	{ID: ToolDeleteFolder, Name: "Delete Folder", Returns: "string",
		Description: "Delete an empty folder or with recursive a whole subtree",
		newArgs:     func() Args { return &DeleteFolderArgs{} }},
	{ID: ToolBulkRenameRegex, Name: "Bulk Rename (Regex)", Returns: "object",
		Description: "Rename files whose names match a regular expression",
		newArgs:     func() Args { return &BulkRenameRegexArgs{IncludeSubdirs: true} }},
	{ID: ToolStat, Name: "Stat", Returns: "object",
		Description: "Show size, mode, modification time and content type",
		newArgs:     func() Args { return &StatArgs{} }},
}

var commandIndex = func() map[ToolID]int {
	idx := make(map[ToolID]int, len(commands))
	for i := range commands {
		commands[i].Schema = generateSchema(commands[i].newArgs())
		idx[commands[i].ID] = i
	}
	return idx
}()

func generateSchema(v Args) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	return reflector.Reflect(v)
}

// Commands returns the command set in a stable order.
func Commands() []CommandSpec {
	out := make([]CommandSpec, len(commands))
	copy(out, commands)
	return out
}

// Lookup returns the spec for id.
func Lookup(id ToolID) (CommandSpec, bool) {
	i, ok := commandIndex[id]
	if !ok {
		return CommandSpec{}, false
	}
	return commands[i], true
}

// Decode builds the defaulted argument set for tool from loosely typed
// params. Missing required parameters and ill-typed values fail with
// ErrInvalidArgs.
func Decode(tool ToolID, params map[string]interface{}) (Args, error) {
	spec, ok := Lookup(tool)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, tool)
	}

	var missing []string
	for _, name := range spec.Schema.Required {
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s requires %v", ErrInvalidArgs, tool, missing)
	}

	args := spec.newArgs()
	if len(params) == 0 {
		return args, nil
	}
	data, err := sonic.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if err := sonic.Unmarshal(data, args); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgs, tool, err)
	}
	return args, nil
}
