package xmlrpc

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
)

// Fault is the payload of a <fault> response.
type Fault struct {
	Code    int
	Message string
}

// ParseResponse parses text into a Node tree. It fails with a
// MalformedResponseError if text is not well-formed XML.
func ParseResponse(text string) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(text))

	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apierrors.NewMalformedResponseError(text, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			if len(stack) == 0 {
				if root != nil {
					return nil, apierrors.NewMalformedResponseError(text, errors.New("multiple root elements"))
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			top := stack[len(stack)-1]
			if len(top.Children) > 0 && strings.TrimSpace(top.Text) == "" {
				top.Text = ""
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			} else if strings.TrimSpace(string(t)) != "" {
				return nil, apierrors.NewMalformedResponseError(text, errors.New("character data outside root element"))
			}
		}
	}

	if root == nil {
		return nil, apierrors.NewMalformedResponseError(text, errors.New("no root element"))
	}
	return root, nil
}

// ExtractParam returns the typed element inside params/param[index]/value of
// a methodResponse. It reports false, never an error, when the root is not a
// methodResponse or any level is missing.
func ExtractParam(doc *Node, index int) (*Node, bool) {
	if doc == nil || doc.Name != "methodResponse" || index < 0 {
		return nil, false
	}
	params := doc.Child("params").ChildrenNamed("param")
	if index >= len(params) {
		return nil, false
	}
	inner := params[index].Child("value").First()
	if inner == nil {
		return nil, false
	}
	return inner, true
}

// ExtractText is ExtractParam returning the element's text.
func ExtractText(doc *Node, index int) (string, bool) {
	n, ok := ExtractParam(doc, index)
	if !ok {
		return "", false
	}
	return n.Text, true
}

// ExtractFault returns the fault carried by a methodResponse, if any.
func ExtractFault(doc *Node) (*Fault, bool) {
	if doc == nil || doc.Name != "methodResponse" {
		return nil, false
	}
	fault := doc.Child("fault")
	if fault == nil {
		return nil, false
	}

	f := &Fault{}
	fields, ok := StructFields(fault.Child("value").First())
	if !ok {
		return f, true
	}
	f.Code, _ = strconv.Atoi(strings.TrimSpace(fields["faultCode"]))
	f.Message = fields["faultString"]
	return f, true
}

// StructFields folds the members of a <struct> element into a map of member
// name to value text. Untyped member values contribute their own text.
func StructFields(n *Node) (map[string]string, bool) {
	if n == nil || n.Name != "struct" {
		return nil, false
	}
	fields := make(map[string]string, len(n.Children))
	for _, m := range n.ChildrenNamed("member") {
		name := m.Child("name")
		if name == nil {
			continue
		}
		fields[name.Text] = scalarText(m.Child("value"))
	}
	return fields, true
}

// ArrayItems returns the typed element of each <value> inside an <array>.
// Untyped values are returned as the <value> element itself.
func ArrayItems(n *Node) ([]*Node, bool) {
	if n == nil || n.Name != "array" {
		return nil, false
	}
	values := n.Child("data").ChildrenNamed("value")
	items := make([]*Node, 0, len(values))
	for _, v := range values {
		if inner := v.First(); inner != nil {
			items = append(items, inner)
		} else {
			items = append(items, v)
		}
	}
	return items, true
}

func scalarText(value *Node) string {
	if value == nil {
		return ""
	}
	if inner := value.First(); inner != nil {
		return inner.Text
	}
	return value.Text
}

// DecodeBase64 decodes standard base64 text, ignoring ASCII whitespace such
// as the line breaks some servers insert.
func DecodeBase64(text string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, text)
	return base64.StdEncoding.DecodeString(compact)
}
