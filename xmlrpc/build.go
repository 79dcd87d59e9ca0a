package xmlrpc

import "encoding/base64"

// Kind is the wire type of a scalar value.
type Kind string

const (
	KindString  Kind = "string"
	KindBoolean Kind = "boolean"
	KindBase64  Kind = "base64"
)

// Wire text for booleans. The server casts any non-empty text other than
// "0" to true, so false must be "0".
const (
	booleanTrue  = "True"
	booleanFalse = "0"
)

// Value wraps text as <value><KIND>text</KIND></value>.
func Value(kind Kind, text string) *Node {
	return &Node{
		Name:     "value",
		Children: []*Node{{Name: string(kind), Text: text}},
	}
}

// String builds a string value.
func String(s string) *Node {
	return Value(KindString, s)
}

// Boolean builds a boolean value.
func Boolean(b bool) *Node {
	if b {
		return Value(KindBoolean, booleanTrue)
	}
	return Value(KindBoolean, booleanFalse)
}

// Base64 builds a base64 value holding the standard encoding of data.
func Base64(data []byte) *Node {
	return Value(KindBase64, base64.StdEncoding.EncodeToString(data))
}

// Member builds a struct member <member><name>NAME</name>VALUE</member>.
func Member(name string, value *Node) *Node {
	return &Node{
		Name: "member",
		Children: []*Node{
			{Name: "name", Text: name},
			value,
		},
	}
}

// Array wraps values in <value><array><data>...</data></array></value>.
func Array(values ...*Node) *Node {
	data := &Node{Name: "data", Children: append([]*Node(nil), values...)}
	return &Node{
		Name:     "value",
		Children: []*Node{{Name: "array", Children: []*Node{data}}},
	}
}

// Struct wraps members in <value><struct>...</struct></value>.
func Struct(members ...*Node) *Node {
	return &Node{
		Name:     "value",
		Children: []*Node{{Name: "struct", Children: append([]*Node(nil), members...)}},
	}
}

// Request builds a <methodCall> document. Each parameter gets its own
// <param>, in the given order.
func Request(method string, params ...*Node) *Node {
	return &Node{
		Name: "methodCall",
		Children: []*Node{
			{Name: "methodName", Text: method},
			wrapParams(params),
		},
	}
}

// Response builds a <methodResponse> document carrying params. Servers and
// test doubles use it; the client only ever parses responses.
func Response(params ...*Node) *Node {
	return &Node{
		Name:     "methodResponse",
		Children: []*Node{wrapParams(params)},
	}
}

func wrapParams(params []*Node) *Node {
	wrapped := &Node{Name: "params"}
	for _, p := range params {
		wrapped.Children = append(wrapped.Children, &Node{Name: "param", Children: []*Node{p}})
	}
	return wrapped
}
