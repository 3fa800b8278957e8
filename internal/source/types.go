package source

type (
	// FileID uniquely identifies one version of a source file within a FileSet.
	FileID uint32 // каждая правка даёт новый ID
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	FileHadBOM
	FileNormalizedCRLF
	// FileEdited marks versions produced by applying fixes.
	FileEdited
)

// File captures metadata and content for a single version of a source file.
// A File is never mutated after it was added to a FileSet.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
	Prev    FileID // previous version of the same path, valid when HasPrev
	HasPrev bool
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}
