package mock

type (
	// BodyKind tells which variant a Body holds
	BodyKind int

	// Body is a response body: nothing, an inline value or a file reference
	Body struct {
		kind  BodyKind
		value interface{}
		file  ResponseFile
	}

	// ResponseFile references a file whose content is served as the response body.
	// It is resolved when the response is rendered, never at registration.
	ResponseFile struct {
		fileName string
	}
)

const (
	BodyNone BodyKind = iota
	BodyInline
	BodyFile
)

// NewResponseFile returns a reference to the named file
func NewResponseFile(fileName string) ResponseFile {
	return ResponseFile{fileName: fileName}
}

// FileName is the file name or path the reference was created with
func (f ResponseFile) FileName() string {
	return f.fileName
}

// Inline wraps a value served as is
func Inline(v interface{}) Body {
	return Body{kind: BodyInline, value: v}
}

// File wraps a file reference
func File(f ResponseFile) Body {
	return Body{kind: BodyFile, file: f}
}

func bodyOf(v interface{}) Body {
	switch b := v.(type) {
	case nil:
		return Body{}
	case ResponseFile:
		return File(b)
	case *ResponseFile:
		if b == nil {
			return Body{}
		}
		return File(*b)
	case Body:
		return b
	}

	return Inline(v)
}

func (b Body) Kind() BodyKind {
	return b.kind
}

// Value is the inline value, nil for other kinds
func (b Body) Value() interface{} {
	return b.value
}

// File is the file reference, zero for other kinds
func (b Body) File() ResponseFile {
	return b.file
}
