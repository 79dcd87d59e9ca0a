package xmlrpc

import "strings"

const (
	xmlHeader = `<?xml version="1.0" ?>`
	indent    = "    "
)

// "\r" is escaped so that CRLF page content survives XML end-of-line
// normalization on the receiving side.
var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\r", "&#13;",
)

// Serialize renders doc as pretty-printed UTF-8 XML with 4-space
// indentation. Leaf elements are written inline, empty elements are
// self-closed, and no blank or whitespace-only lines are produced.
func Serialize(doc *Node) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteByte('\n')
	if doc != nil {
		writeNode(&sb, doc, 0)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node, depth int) {
	pad := strings.Repeat(indent, depth)
	sb.WriteString(pad)
	sb.WriteByte('<')
	sb.WriteString(n.Name)

	switch {
	case len(n.Children) > 0:
		sb.WriteString(">\n")
		for _, c := range n.Children {
			writeNode(sb, c, depth+1)
		}
		sb.WriteString(pad)
		sb.WriteString("</")
		sb.WriteString(n.Name)
		sb.WriteString(">\n")
	case n.Text != "":
		sb.WriteByte('>')
		textEscaper.WriteString(sb, n.Text)
		sb.WriteString("</")
		sb.WriteString(n.Name)
		sb.WriteString(">\n")
	default:
		sb.WriteString("/>\n")
	}
}
