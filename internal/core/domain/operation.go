package domain

// Operation is a workspace file or tool operation.
// The set of variants is closed: only types in this package implement it.
type Operation interface {
	// Kind returns the operation kind name.
	Kind() OperationKind

	sealed()
}

// OperationKind names an operation variant.
type OperationKind string

// Operation kinds.
const (
	OpRead          OperationKind = "read"
	OpWrite         OperationKind = "write"
	OpAppend        OperationKind = "append"
	OpUpdateSection OperationKind = "update_section"
	OpCreateFolder  OperationKind = "create_folder"
	OpList          OperationKind = "list"
	OpToolCall      OperationKind = "tool_call"
)

// ReadOp reads a file.
type ReadOp struct {
	Path string
}

// WriteOp creates or replaces a file.
type WriteOp struct {
	Path    string
	Content string
	Tags    []string
}

// AppendOp appends to a file, merging overlapping text.
type AppendOp struct {
	Path    string
	Content string
}

// UpdateSectionOp replaces the body under a markdown heading.
// The section is appended when the heading does not exist.
type UpdateSectionOp struct {
	Path    string
	Heading string
	Content string
}

// CreateFolderOp creates a directory and its parents.
type CreateFolderOp struct {
	Path string
}

// ListOp lists a directory.
type ListOp struct {
	Path string
}

// Tool names accepted by ToolCallOp.
const (
	// ToolSearch runs a hybrid search. Args: "query", optional "limit".
	ToolSearch = "search"

	// ToolReindex syncs the workspace, or one file when "path" is given.
	ToolReindex = "reindex"
)

// ToolCallOp invokes a named tool with arguments.
type ToolCallOp struct {
	Name string
	Args map[string]any
}

func (ReadOp) Kind() OperationKind          { return OpRead }
func (WriteOp) Kind() OperationKind         { return OpWrite }
func (AppendOp) Kind() OperationKind        { return OpAppend }
func (UpdateSectionOp) Kind() OperationKind { return OpUpdateSection }
func (CreateFolderOp) Kind() OperationKind  { return OpCreateFolder }
func (ListOp) Kind() OperationKind          { return OpList }
func (ToolCallOp) Kind() OperationKind      { return OpToolCall }

func (ReadOp) sealed()          {}
func (WriteOp) sealed()         {}
func (AppendOp) sealed()        {}
func (UpdateSectionOp) sealed() {}
func (CreateFolderOp) sealed()  {}
func (ListOp) sealed()          {}
func (ToolCallOp) sealed()      {}

// OperationResult is the outcome of executing an Operation.
type OperationResult struct {
	// Kind is the executed operation kind.
	Kind OperationKind

	// Path is the affected path, if any.
	Path string

	// Content is the file content for reads or the tool output.
	Content string

	// Entries lists directory entries for list operations.
	Entries []string

	// Reindexed is true when the touched file was re-indexed.
	Reindexed bool

	// Results carries search hits for the search tool.
	Results []ScoredDocument
}
