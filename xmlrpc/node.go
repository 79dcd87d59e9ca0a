// Package xmlrpc builds XML-RPC request documents and extracts values from
// XML-RPC responses.
//
// Requests are assembled from explicitly typed values rather than reflected
// from Go types: the wiki distinguishes string and base64 payloads strictly,
// so the caller always picks the wire type. Responses are parsed into the same
// Node tree and read positionally; no schema validation is performed beyond
// XML well-formedness.
package xmlrpc

// Node is one XML element. Text holds the element's character data; for
// elements with children, whitespace-only text is dropped.
type Node struct {
	Name     string
	Text     string
	Children []*Node
}

// Child returns the first child element with the given name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all child elements with the given name, in order.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// First returns the first child element, or nil.
func (n *Node) First() *Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}
