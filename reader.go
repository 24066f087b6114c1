package ubjson

import (
	"io"
	"unicode/utf8"
)

// BorrowReader is implemented by a byte source that can hand back a
// zero-copy slice of its own backing storage. Binding a
// particular buffer type to this codec is an external collaborator's job;
// this interface is the contract such a collaborator implements, the core
// only consumes it (ReaderConfig.CopyStrings=false, §4.6 "Zero-copy
// strings").
type BorrowReader interface {
	io.Reader
	// Borrow returns exactly n bytes backed by the source's own storage,
	// valid until the source is next read from, and advances the source by
	// n bytes.
	Borrow(n int) ([]byte, error)
}

// ReadValue parses exactly one UBJSON value from r and returns it as a
// Value tree. Grounded on sbunce-bson's decode.go:
// a marker-byte switch inside a bufio.Reader, generalized from "decode BSON
// elements into a Map" to "resolve one of UBJSON's four container variants
// from one-byte lookahead".
//
// r is read through a bufio.Reader (r itself when it already is a
// *bufio.Reader of at least the default size), so bytes of r beyond the
// returned value may be consumed; consecutive calls see consecutive values
// only when they share one *bufio.Reader.
func ReadValue(r io.Reader, cfg ReaderConfig) (Value, error) {
	tb := newTreeBuildingVisitor()
	if err := ReadWithVisitor(r, tb, cfg); err != nil {
		return nil, err
	}
	return tb.root, nil
}

// ReadWithVisitor parses exactly one UBJSON value from r, invoking one
// Visitor callback per variant in document order.
func ReadWithVisitor(r io.Reader, v Visitor, cfg ReaderConfig) error {
	br := newByteReaderFor(r)
	return readOneValue(br, cfg, 0, v)
}

func newByteReaderFor(r io.Reader) *byteReader {
	br := newByteReader(r)
	if bo, ok := r.(BorrowReader); ok {
		br.borrow = bo
	}
	return br
}

// readOneValue reads one value at a value-expected position: it skips any
// leading NoOp markers (transparent filler), then dispatches on
// the first non-NoOp marker.
func readOneValue(br *byteReader, cfg ReaderConfig, depth int, v Visitor) error {
	m, err := br.skipNoOpsAndPeek()
	if err != nil {
		return err
	}
	if _, err := br.readByte(); err != nil {
		return err
	}
	return dispatchValue(br, cfg, depth, v, m)
}

func dispatchValue(br *byteReader, cfg ReaderConfig, depth int, v Visitor, m Marker) error {
	switch m {
	case nullMarker:
		v.VisitNull()
		return nil
	case trueMarker:
		v.VisitBool(true)
		return nil
	case falseMarker:
		v.VisitBool(false)
		return nil
	case int8Marker:
		n, err := br.readInt8()
		if err != nil {
			return err
		}
		v.VisitInt8(n)
		return nil
	case uint8Marker:
		n, err := br.readUint8()
		if err != nil {
			return err
		}
		v.VisitUInt8(n)
		return nil
	case int16Marker:
		n, err := br.readInt16()
		if err != nil {
			return err
		}
		v.VisitInt16(n)
		return nil
	case int32Marker:
		n, err := br.readInt32()
		if err != nil {
			return err
		}
		v.VisitInt32(n)
		return nil
	case int64Marker:
		n, err := br.readInt64()
		if err != nil {
			return err
		}
		v.VisitInt64(n)
		return nil
	case float32Marker:
		f, err := br.readFloat32()
		if err != nil {
			return err
		}
		v.VisitFloat32(f)
		return nil
	case float64Marker:
		f, err := br.readFloat64()
		if err != nil {
			return err
		}
		v.VisitFloat64(f)
		return nil
	case charMarker:
		c, err := br.readByte()
		if err != nil {
			return err
		}
		if c > 0x7F {
			return &CharError{Byte: c, Position: br.position()}
		}
		v.VisitChar(c)
		return nil
	case stringMarker:
		s, err := readUBJSONString(br, cfg)
		if err != nil {
			return err
		}
		v.VisitString(s)
		return nil
	case highPrecMarker:
		s, err := readHighPrecPayload(br, cfg)
		if err != nil {
			return err
		}
		v.VisitHighPrec(s)
		return nil
	case arrayStartMarker:
		return readArray(br, cfg, depth, v)
	case objectStartMarker:
		return readObject(br, cfg, depth, v)
	default:
		return &MarkerError{Byte: byte(m), Position: br.position()}
	}
}

// readLength reads an embedded UBJSON integer (marker + payload) used as a
// length or count prefix.
func readLength(br *byteReader) (int64, error) {
	m, err := br.readMarker()
	if err != nil {
		return 0, err
	}
	if !isIntMarker(m) {
		return 0, &MarkerError{Byte: byte(m), Position: br.position()}
	}
	n, err := br.readIntByMarker(m)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &TypedContainerError{Position: br.position(), Detail: "length/count must be non-negative"}
	}
	return n, nil
}

func readUBJSONString(br *byteReader, cfg ReaderConfig) (string, error) {
	n, err := readLength(br)
	if err != nil {
		return "", err
	}
	if n > int64(cfg.maxStringBytes()) {
		return "", &SizeError{Kind: SizeKindString, Limit: int64(cfg.maxStringBytes()), Requested: n}
	}
	b, err := br.readStringBytes(int(n), cfg.CopyStrings)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &Utf8Error{Position: br.position()}
	}
	return string(b), nil
}

func readHighPrecPayload(br *byteReader, cfg ReaderConfig) (string, error) {
	n, err := readLength(br)
	if err != nil {
		return "", err
	}
	if n > int64(cfg.maxStringBytes()) {
		return "", &SizeError{Kind: SizeKindString, Limit: int64(cfg.maxStringBytes()), Requested: n}
	}
	b, err := br.readFull(int(n))
	if err != nil {
		return "", err
	}
	s := string(b)
	if cfg.ValidateHighPrecision && !validateJSONNumber(s) {
		return "", &HighPrecisionError{Position: br.position(), Detail: "payload is not a JSON number"}
	}
	return s, nil
}

// readArray resolves one of the three array encodings a reader may observe
// (open-ended, counted, typed+counted; typed-open is forbidden by the
// format) from one byte of lookahead after the '[' marker.
func readArray(br *byteReader, cfg ReaderConfig, depth int, v Visitor) error {
	if depth+1 > cfg.maxDepth() {
		return &DepthError{Limit: cfg.maxDepth()}
	}

	next, err := br.peekByte()
	if err != nil {
		return err
	}

	switch Marker(next) {
	case typeMarker:
		br.readByte() // consume '$'
		elemTag, err := br.readMarker()
		if err != nil {
			return err
		}
		if elemTag == noOpMarker {
			return &TypedContainerError{Position: br.position(), Detail: "NoOp is not a valid typed-container element type"}
		}
		hashByte, err := br.readByte()
		if err != nil {
			return err
		}
		if Marker(hashByte) != countMarker {
			return &TypedContainerError{Position: br.position(), Detail: "typed array requires # count after $ type"}
		}
		n, err := readLength(br)
		if err != nil {
			return err
		}
		if n > int64(cfg.maxContainerSize()) {
			return &SizeError{Kind: SizeKindContainer, Limit: int64(cfg.maxContainerSize()), Requested: n}
		}
		v.BeginTypedArray(elemTag, int(n))
		for i := int64(0); i < n; i++ {
			if err := readTypedElement(br, cfg, depth+1, v, elemTag); err != nil {
				return err
			}
		}
		v.EndTypedArray()
		return nil

	case countMarker:
		br.readByte() // consume '#'
		n, err := readLength(br)
		if err != nil {
			return err
		}
		if n > int64(cfg.maxContainerSize()) {
			return &SizeError{Kind: SizeKindContainer, Limit: int64(cfg.maxContainerSize()), Requested: n}
		}
		v.BeginArray()
		for i := int64(0); i < n; i++ {
			if err := readOneValue(br, cfg, depth+1, v); err != nil {
				return err
			}
		}
		v.EndArray()
		return nil

	default:
		v.BeginArray()
		for {
			m, err := br.skipNoOpsAndPeek()
			if err != nil {
				return err
			}
			if m == arrayEndMarker {
				br.readByte()
				break
			}
			if _, err := br.readByte(); err != nil {
				return err
			}
			if err := dispatchValue(br, cfg, depth+1, v, m); err != nil {
				return err
			}
		}
		v.EndArray()
		return nil
	}
}

func readObject(br *byteReader, cfg ReaderConfig, depth int, v Visitor) error {
	if depth+1 > cfg.maxDepth() {
		return &DepthError{Limit: cfg.maxDepth()}
	}

	next, err := br.peekByte()
	if err != nil {
		return err
	}

	switch Marker(next) {
	case typeMarker:
		br.readByte() // consume '$'
		elemTag, err := br.readMarker()
		if err != nil {
			return err
		}
		if elemTag == noOpMarker {
			return &TypedContainerError{Position: br.position(), Detail: "NoOp is not a valid typed-container element type"}
		}
		hashByte, err := br.readByte()
		if err != nil {
			return err
		}
		if Marker(hashByte) != countMarker {
			return &TypedContainerError{Position: br.position(), Detail: "typed object requires # count after $ type"}
		}
		n, err := readLength(br)
		if err != nil {
			return err
		}
		if n > int64(cfg.maxContainerSize()) {
			return &SizeError{Kind: SizeKindContainer, Limit: int64(cfg.maxContainerSize()), Requested: n}
		}
		v.BeginTypedObject(elemTag, int(n))
		seen := make(map[string]bool, n)
		for i := int64(0); i < n; i++ {
			key, err := readObjectKey(br, cfg)
			if err != nil {
				return err
			}
			if cfg.RejectDuplicateKeys && seen[key] {
				return &DuplicateKeyError{Key: key, Position: br.position()}
			}
			seen[key] = true
			v.VisitKey(key)
			if err := readTypedElement(br, cfg, depth+1, v, elemTag); err != nil {
				return err
			}
		}
		v.EndTypedObject()
		return nil

	case countMarker:
		br.readByte() // consume '#'
		n, err := readLength(br)
		if err != nil {
			return err
		}
		if n > int64(cfg.maxContainerSize()) {
			return &SizeError{Kind: SizeKindContainer, Limit: int64(cfg.maxContainerSize()), Requested: n}
		}
		v.BeginObject()
		seen := make(map[string]bool, n)
		for i := int64(0); i < n; i++ {
			key, err := readObjectKey(br, cfg)
			if err != nil {
				return err
			}
			if cfg.RejectDuplicateKeys && seen[key] {
				return &DuplicateKeyError{Key: key, Position: br.position()}
			}
			seen[key] = true
			v.VisitKey(key)
			if err := readOneValue(br, cfg, depth+1, v); err != nil {
				return err
			}
		}
		v.EndObject()
		return nil

	default:
		v.BeginObject()
		seen := make(map[string]bool)
		for {
			m, err := br.skipNoOpsAndPeek()
			if err != nil {
				return err
			}
			if m == objectEndMarker {
				br.readByte()
				break
			}
			if !isIntMarker(m) {
				return &MarkerError{Byte: byte(m), Position: br.position()}
			}
			key, err := readObjectKey(br, cfg)
			if err != nil {
				return err
			}
			if cfg.RejectDuplicateKeys && seen[key] {
				return &DuplicateKeyError{Key: key, Position: br.position()}
			}
			seen[key] = true
			v.VisitKey(key)
			if err := readOneValue(br, cfg, depth+1, v); err != nil {
				return err
			}
		}
		v.EndObject()
		return nil
	}
}

// readObjectKey reads an object key: a length prefix followed by UTF-8
// bytes, with no leading marker of its own (the marker alphabet doesn't
// include a "this is a key" tag; its shape is identical to a String's
// payload).
func readObjectKey(br *byteReader, cfg ReaderConfig) (string, error) {
	n, err := readLength(br)
	if err != nil {
		return "", err
	}
	if n > int64(cfg.maxStringBytes()) {
		return "", &SizeError{Kind: SizeKindString, Limit: int64(cfg.maxStringBytes()), Requested: n}
	}
	b, err := br.readFull(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &Utf8Error{Position: br.position()}
	}
	return string(b), nil
}

// readTypedElement reads one element of a typed container, whose marker was
// already declared in the header and is therefore not present on the wire
// for this element. Bool elements (tag T or F) consume no
// bytes at all: the declared tag already says whether every element is true
// or false (see analyzer.go's elementMarker).
func readTypedElement(br *byteReader, cfg ReaderConfig, depth int, v Visitor, tag Marker) error {
	switch tag {
	case nullMarker:
		v.VisitNull()
		return nil
	case trueMarker:
		v.VisitBool(true)
		return nil
	case falseMarker:
		v.VisitBool(false)
		return nil
	case int8Marker:
		n, err := br.readInt8()
		if err != nil {
			return err
		}
		v.VisitInt8(n)
		return nil
	case uint8Marker:
		n, err := br.readUint8()
		if err != nil {
			return err
		}
		v.VisitUInt8(n)
		return nil
	case int16Marker:
		n, err := br.readInt16()
		if err != nil {
			return err
		}
		v.VisitInt16(n)
		return nil
	case int32Marker:
		n, err := br.readInt32()
		if err != nil {
			return err
		}
		v.VisitInt32(n)
		return nil
	case int64Marker:
		n, err := br.readInt64()
		if err != nil {
			return err
		}
		v.VisitInt64(n)
		return nil
	case float32Marker:
		f, err := br.readFloat32()
		if err != nil {
			return err
		}
		v.VisitFloat32(f)
		return nil
	case float64Marker:
		f, err := br.readFloat64()
		if err != nil {
			return err
		}
		v.VisitFloat64(f)
		return nil
	case charMarker:
		c, err := br.readByte()
		if err != nil {
			return err
		}
		if c > 0x7F {
			return &CharError{Byte: c, Position: br.position()}
		}
		v.VisitChar(c)
		return nil
	case stringMarker:
		s, err := readUBJSONString(br, cfg)
		if err != nil {
			return err
		}
		v.VisitString(s)
		return nil
	case highPrecMarker:
		s, err := readHighPrecPayload(br, cfg)
		if err != nil {
			return err
		}
		v.VisitHighPrec(s)
		return nil
	case arrayStartMarker:
		return readArray(br, cfg, depth, v)
	case objectStartMarker:
		return readObject(br, cfg, depth, v)
	default:
		return &TypedContainerError{Position: br.position(), Detail: "unsupported typed-container element tag"}
	}
}

// skipNoOpsAndPeek peeks the next unconsumed byte, transparently consuming
// any run of NoOp markers first, matching the "N: skip and restart the
// loop". The returned marker is NOT consumed; the caller decides whether to
// read it as a value-start marker or a container terminator.
func (br *byteReader) skipNoOpsAndPeek() (Marker, error) {
	for {
		b, err := br.peekByte()
		if err != nil {
			return 0, err
		}
		if Marker(b) != noOpMarker {
			return Marker(b), nil
		}
		if _, err := br.readByte(); err != nil {
			return 0, err
		}
	}
}

// readStringBytes reads n bytes, borrowing a zero-copy slice from the
// underlying source when copyStrings is false, the source implements
// BorrowReader, and nothing is currently buffered ahead of the borrow (so
// the borrow and the bufio.Reader's own buffer can't desync). Otherwise it
// copies, exactly like readFull.
func (br *byteReader) readStringBytes(n int, copyStrings bool) ([]byte, error) {
	if !copyStrings && br.borrow != nil && br.r.Buffered() == 0 {
		b, err := br.borrow.Borrow(n)
		if err != nil {
			return nil, wrapUnexpectedEnd(err)
		}
		br.pos += int64(n)
		return b, nil
	}
	return br.readFull(n)
}
