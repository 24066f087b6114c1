package ubjson

// EventSource is the writer-capability adapter interface: an
// external object-graph adapter that wants to stream a UBJSON document
// without first materializing a full Value tree implements Emit and hands
// values to the Sink it receives. Grounded on sbunce-bson's single-method Doc
// interface (Encode() (BSON, error)) — same "one small interface a caller's
// type satisfies" idiom, extended from "return one finished document" to
// "push values to a sink" for streaming, not just a
// pre-built document.
type EventSource interface {
	Emit(sink Sink) error
}

// Sink is what an EventSource emits values to. EmitValue accepts a whole
// subtree rooted at v and writes it as one complete top-level value. Sink
// has no container begin/element/end methods: a container is always passed
// as one Value, and successive EmitValue calls produce successive top-level
// values, not elements of one container.
type Sink interface {
	EmitValue(v Value) error
}

// Visitor is the reader-capability adapter interface: the
// reader can either build a Value tree (ReadValue) or drive a Visitor
// (ReadWithVisitor), invoking one callback per variant as it recognizes it,
// in document order. Container values call
// BeginArray/BeginObject, then one callback per child, then EndArray/
// EndObject; TypedArray/TypedObject report BeginTypedArray/BeginTypedObject
// with the declared tag and count (count -1 when absent) before their
// elements.
type Visitor interface {
	VisitNull()
	VisitNoOp()
	VisitBool(v bool)
	VisitInt8(v int8)
	VisitUInt8(v uint8)
	VisitInt16(v int16)
	VisitInt32(v int32)
	VisitInt64(v int64)
	VisitFloat32(v float32)
	VisitFloat64(v float64)
	VisitHighPrec(v string)
	VisitChar(v byte)
	VisitString(v string)

	BeginArray()
	EndArray()
	BeginObject()
	VisitKey(k string)
	EndObject()

	BeginTypedArray(elem Marker, count int)
	EndTypedArray()
	BeginTypedObject(elem Marker, count int)
	EndTypedObject()
}

// treeBuildingVisitor implements Visitor by constructing a Value tree,
// letting ReadValue be expressed as ReadWithVisitor driving this visitor,
// as two modes of one reader.
type treeBuildingVisitor struct {
	stack []treeFrame
	root  Value
}

type treeFrame struct {
	array      []Value
	object     []Pair
	pendingKey string
	haveKey    bool
	isObject   bool
}

func newTreeBuildingVisitor() *treeBuildingVisitor {
	return &treeBuildingVisitor{}
}

func (v *treeBuildingVisitor) push(v2 Value) {
	if len(v.stack) == 0 {
		v.root = v2
		return
	}
	top := &v.stack[len(v.stack)-1]
	if top.isObject {
		top.object = append(top.object, Pair{Key: top.pendingKey, Val: v2})
		top.haveKey = false
	} else {
		top.array = append(top.array, v2)
	}
}

func (v *treeBuildingVisitor) VisitNull() { v.push(Null{}) }
func (v *treeBuildingVisitor) VisitNoOp() { v.push(NoOp{}) }
func (v *treeBuildingVisitor) VisitBool(b bool) { v.push(Bool(b)) }
func (v *treeBuildingVisitor) VisitInt8(n int8) { v.push(Int8(n)) }
func (v *treeBuildingVisitor) VisitUInt8(n uint8) { v.push(UInt8(n)) }
func (v *treeBuildingVisitor) VisitInt16(n int16) { v.push(Int16(n)) }
func (v *treeBuildingVisitor) VisitInt32(n int32) { v.push(Int32(n)) }
func (v *treeBuildingVisitor) VisitInt64(n int64) { v.push(Int64(n)) }
func (v *treeBuildingVisitor) VisitFloat32(f float32) { v.push(Float32(f)) }
func (v *treeBuildingVisitor) VisitFloat64(f float64) { v.push(Float64(f)) }
func (v *treeBuildingVisitor) VisitHighPrec(s string) { v.push(HighPrec(s)) }
func (v *treeBuildingVisitor) VisitChar(c byte) { v.push(Char(c)) }
func (v *treeBuildingVisitor) VisitString(s string) { v.push(String(s)) }

func (v *treeBuildingVisitor) BeginArray() {
	v.stack = append(v.stack, treeFrame{})
}

func (v *treeBuildingVisitor) EndArray() {
	top := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	v.push(Array(top.array))
}

func (v *treeBuildingVisitor) BeginObject() {
	v.stack = append(v.stack, treeFrame{isObject: true})
}

func (v *treeBuildingVisitor) VisitKey(k string) {
	top := &v.stack[len(v.stack)-1]
	top.pendingKey = k
	top.haveKey = true
}

func (v *treeBuildingVisitor) EndObject() {
	top := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	v.push(Object(top.object))
}

// BeginTypedArray/EndTypedArray and BeginTypedObject/EndTypedObject fold
// down to the same plain Array/Object a heterogeneous encoding would have
// produced, ignoring the declared tag and count. TypedArray/TypedObject are
// a writer-side-only construct (a caller can build one to force a specific
// wire shape); the wire can't
// distinguish that shape from one the writer's optimizer chose on its own,
// so a value tree built from a read never reports one.
func (v *treeBuildingVisitor) BeginTypedArray(elem Marker, count int) {
	v.BeginArray()
}

func (v *treeBuildingVisitor) EndTypedArray() {
	v.EndArray()
}

func (v *treeBuildingVisitor) BeginTypedObject(elem Marker, count int) {
	v.BeginObject()
}

func (v *treeBuildingVisitor) EndTypedObject() {
	v.EndObject()
}
