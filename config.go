package ubjson

// Default resource limits.
const (
	defaultMaxDepth         = 256
	defaultMaxContainerSize = 16 * 1024 * 1024      // 16Mi elements
	defaultMaxStringBytes   = 64 * 1024 * 1024      // 64Mi bytes
)

// WriterConfig controls writer policy. The zero value is NOT the documented
// default for OptimizeContainers or ValidateHighPrecision (both default
// true); a zero MaxDepth already means defaultMaxDepth. Use
// DefaultWriterConfig to get the documented defaults, the way sbunce-bson's zero-config Map.Encode() has an
// implicit always-on behavior rather than a zero-value struct of options.
type WriterConfig struct {
	// OptimizeContainers enables the optimization analyzer (§4.4). When
	// false, every container is written in its open-ended heterogeneous
	// form.
	OptimizeContainers bool
	// ValidateHighPrecision rejects HighPrec payloads that don't match the
	// JSON number grammar.
	ValidateHighPrecision bool
	// MaxDepth bounds recursion; zero means use defaultMaxDepth.
	MaxDepth int
}

// DefaultWriterConfig returns the documented writer defaults:
// container optimization on, high-precision validation on, depth ceiling 256.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		OptimizeContainers:    true,
		ValidateHighPrecision: true,
		MaxDepth:              defaultMaxDepth,
	}
}

func (c WriterConfig) maxDepth() int {
	if c.MaxDepth <= 0 {
		return defaultMaxDepth
	}
	return c.MaxDepth
}

// ReaderConfig controls reader policy. As with WriterConfig, use
// DefaultReaderConfig for the documented defaults. A bare
// ReaderConfig{} treats every zero numeric limit as "use the default"
// rather than "allow nothing", but CopyStrings and ValidateHighPrecision
// default true while the zero value of bool is false, so a
// bare ReaderConfig{} differs from DefaultReaderConfig() for those two
// fields: it permits zero-copy strings and skips the HighPrec grammar check. Construct from
// DefaultReaderConfig and override only what you need.
type ReaderConfig struct {
	// MaxDepth bounds recursion; zero means use defaultMaxDepth.
	MaxDepth int
	// MaxContainerSize bounds a single container's declared element count;
	// zero means use defaultMaxContainerSize.
	MaxContainerSize int
	// MaxStringBytes bounds a single string's declared byte length; zero
	// means use defaultMaxStringBytes.
	MaxStringBytes int
	// RejectDuplicateKeys fails the read when an Object key repeats.
	RejectDuplicateKeys bool
	// CopyStrings, when false, permits the reader to hand back a String
	// backed by a borrowed slice of the source's buffer instead of a copy,
	// when the source implements BorrowReader (see reader.go).
	CopyStrings bool
	// ValidateHighPrecision rejects HighPrec payloads that don't match the
	// JSON number grammar.
	ValidateHighPrecision bool
}

// DefaultReaderConfig returns the documented reader defaults.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		MaxDepth:              defaultMaxDepth,
		MaxContainerSize:      defaultMaxContainerSize,
		MaxStringBytes:        defaultMaxStringBytes,
		RejectDuplicateKeys:   false,
		CopyStrings:           true,
		ValidateHighPrecision: true,
	}
}

func (c ReaderConfig) maxDepth() int {
	if c.MaxDepth <= 0 {
		return defaultMaxDepth
	}
	return c.MaxDepth
}

func (c ReaderConfig) maxContainerSize() int {
	if c.MaxContainerSize <= 0 {
		return defaultMaxContainerSize
	}
	return c.MaxContainerSize
}

func (c ReaderConfig) maxStringBytes() int {
	if c.MaxStringBytes <= 0 {
		return defaultMaxStringBytes
	}
	return c.MaxStringBytes
}
