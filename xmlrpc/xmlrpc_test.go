package xmlrpc

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
)

func TestSerialize_GetPageRequest(t *testing.T) {
	doc := Request("wiki.getPage", String("test:start"))

	want := `<?xml version="1.0" ?>
<methodCall>
    <methodName>wiki.getPage</methodName>
    <params>
        <param>
            <value>
                <string>test:start</string>
            </value>
        </param>
    </params>
</methodCall>
`
	if got := Serialize(doc); got != want {
		t.Errorf("Serialize() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestSerialize_PutPageRequest(t *testing.T) {
	doc := Request("wiki.putPage",
		String("test:start"),
		String("hello"),
		Struct(
			Member("sum", String("wiki.putPage")),
			Member("minor", Boolean(true)),
		),
	)

	want := `<?xml version="1.0" ?>
<methodCall>
    <methodName>wiki.putPage</methodName>
    <params>
        <param>
            <value>
                <string>test:start</string>
            </value>
        </param>
        <param>
            <value>
                <string>hello</string>
            </value>
        </param>
        <param>
            <value>
                <struct>
                    <member>
                        <name>sum</name>
                        <value>
                            <string>wiki.putPage</string>
                        </value>
                    </member>
                    <member>
                        <name>minor</name>
                        <value>
                            <boolean>True</boolean>
                        </value>
                    </member>
                </struct>
            </value>
        </param>
    </params>
</methodCall>
`
	if got := Serialize(doc); got != want {
		t.Errorf("Serialize() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestSerialize_NoBlankLines(t *testing.T) {
	doc := Request("m", String(""), Array(), Struct(), String("multi\nline\n\ntext"))
	out := Serialize(doc)

	// Blank lines may only come from the payload itself.
	withoutPayload := strings.Replace(out, "multi\nline\n\ntext", "", 1)
	for i, line := range strings.Split(strings.TrimSuffix(withoutPayload, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			t.Errorf("line %d is blank in:\n%s", i+1, out)
		}
	}
}

func TestSerialize_EscapesText(t *testing.T) {
	out := Serialize(String(`a < b & "c" > d`))
	if !strings.Contains(out, "<string>a &lt; b &amp; &quot;c&quot; &gt; d</string>") {
		t.Errorf("text not escaped:\n%s", out)
	}
}

func TestEmptyContainers(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"empty array", Array(), "<data/>"},
		{"empty struct", Struct(), "<struct/>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Serialize(Response(tt.node))
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %s in:\n%s", tt.want, out)
			}

			doc, err := ParseResponse(out)
			if err != nil {
				t.Fatalf("ParseResponse failed on empty container: %v", err)
			}
			inner, ok := ExtractParam(doc, 0)
			if !ok {
				t.Fatal("expected param 0 to be present")
			}
			switch inner.Name {
			case "array":
				items, ok := ArrayItems(inner)
				if !ok || len(items) != 0 {
					t.Errorf("ArrayItems = %v, %v; want empty, true", items, ok)
				}
			case "struct":
				fields, ok := StructFields(inner)
				if !ok || len(fields) != 0 {
					t.Errorf("StructFields = %v, %v; want empty, true", fields, ok)
				}
			default:
				t.Errorf("unexpected element %q", inner.Name)
			}
		})
	}
}

func TestScalarRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"OK",
		"  leading and trailing  ",
		"line one\nline two\n",
		"windows\r\nline endings\r\n",
		"trailing spaces   \nnext",
		`markup <b>bold</b> & "quotes" 'apos'`,
		"日本語のページ",
		"]]> cdata terminator",
	}
	kinds := []Kind{KindString, KindBoolean, KindBase64}

	for _, kind := range kinds {
		for _, text := range texts {
			doc, err := ParseResponse(Serialize(Response(Value(kind, text))))
			if err != nil {
				t.Fatalf("kind %s text %q: parse failed: %v", kind, text, err)
			}
			inner, ok := ExtractParam(doc, 0)
			if !ok {
				t.Fatalf("kind %s text %q: param absent", kind, text)
			}
			if inner.Name != string(kind) {
				t.Errorf("element = %q, want %q", inner.Name, kind)
			}
			if inner.Text != text {
				t.Errorf("kind %s: text = %q, want %q", kind, inner.Text, text)
			}
		}
	}
}

func TestBase64RoundTrip(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"png header", []byte("\x89PNG\r\n\x1a\n")},
		{"all byte values", all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseResponse(Serialize(Response(Base64(tt.data))))
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			text, ok := ExtractText(doc, 0)
			if !ok {
				t.Fatal("param absent")
			}
			got, err := DecodeBase64(text)
			if err != nil {
				t.Fatalf("DecodeBase64 failed: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(tt.data))
			}
		})
	}
}

func TestDecodeBase64_IgnoresLineBreaks(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("attachment payload bytes"))
	wrapped := encoded[:8] + "\r\n" + encoded[8:16] + "\n  " + encoded[16:]

	got, err := DecodeBase64(wrapped)
	if err != nil {
		t.Fatalf("DecodeBase64 failed: %v", err)
	}
	if string(got) != "attachment payload bytes" {
		t.Errorf("got %q", got)
	}

	if _, err := DecodeBase64("not*base64"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestBoolean(t *testing.T) {
	if got := Boolean(true).First().Text; got != "True" {
		t.Errorf("Boolean(true) text = %q, want True", got)
	}
	if got := Boolean(false).First().Text; got != "0" {
		t.Errorf("Boolean(false) text = %q, want 0", got)
	}
}

func TestExtractText_OK(t *testing.T) {
	body := `<methodResponse><params><param><value><string>OK</string></value></param></params></methodResponse>`

	doc, err := ParseResponse(body)
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	text, ok := ExtractText(doc, 0)
	if !ok {
		t.Fatal("expected a value")
	}
	if text != "OK" {
		t.Errorf("ExtractText = %q, want OK", text)
	}
}

func TestExtractParam_Absent(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		index int
	}{
		{"wrong root", `<methodCall><params><param><value><string>x</string></value></param></params></methodCall>`, 0},
		{"html error page", `<html><body>Forbidden</body></html>`, 0},
		{"no params", `<methodResponse/>`, 0},
		{"index past end", `<methodResponse><params><param><value><string>x</string></value></param></params></methodResponse>`, 1},
		{"negative index", `<methodResponse><params><param><value><string>x</string></value></param></params></methodResponse>`, -1},
		{"no value", `<methodResponse><params><param/></params></methodResponse>`, 0},
		{"untyped value", `<methodResponse><params><param><value>x</value></param></params></methodResponse>`, 0},
		{"fault", `<methodResponse><fault><value><struct/></value></fault></methodResponse>`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseResponse(tt.body)
			if err != nil {
				t.Fatalf("ParseResponse failed: %v", err)
			}
			if n, ok := ExtractParam(doc, tt.index); ok {
				t.Errorf("expected absent, got %+v", n)
			}
			if _, ok := ExtractText(doc, tt.index); ok {
				t.Error("ExtractText should be absent too")
			}
		})
	}

	if _, ok := ExtractParam(nil, 0); ok {
		t.Error("nil document should be absent")
	}
}

func TestExtractParam_Positional(t *testing.T) {
	doc, err := ParseResponse(Serialize(Response(String("first"), Boolean(true), String("third"))))
	if err != nil {
		t.Fatal(err)
	}

	for i, want := range []string{"first", "True", "third"} {
		got, ok := ExtractText(doc, i)
		if !ok || got != want {
			t.Errorf("param %d = %q, %v; want %q", i, got, ok, want)
		}
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	bodies := []string{
		"",
		"not xml at all",
		"<methodResponse><params>",
		"<a></b>",
		"<a/><b/>",
	}

	for _, body := range bodies {
		_, err := ParseResponse(body)
		if err == nil {
			t.Errorf("ParseResponse(%q) should fail", body)
			continue
		}
		if !apierrors.IsMalformedResponse(err) {
			t.Errorf("ParseResponse(%q) error = %T, want MalformedResponseError", body, err)
		}
	}
}

func TestExtractFault(t *testing.T) {
	body := `<?xml version="1.0"?>
<methodResponse>
  <fault>
    <value>
      <struct>
        <member><name>faultCode</name><value><int>121</int></value></member>
        <member><name>faultString</name><value><string>The page does not exist</string></value></member>
      </struct>
    </value>
  </fault>
</methodResponse>`

	doc, err := ParseResponse(body)
	if err != nil {
		t.Fatal(err)
	}
	fault, ok := ExtractFault(doc)
	if !ok {
		t.Fatal("expected fault")
	}
	if fault.Code != 121 || fault.Message != "The page does not exist" {
		t.Errorf("fault = %+v", fault)
	}

	ok200, _ := ParseResponse(`<methodResponse><params/></methodResponse>`)
	if _, ok := ExtractFault(ok200); ok {
		t.Error("no fault expected")
	}
}

func TestStructFields_KeepsAllMembers(t *testing.T) {
	doc, err := ParseResponse(Serialize(Response(Struct(
		Member("id", String("ns:a.png")),
		Member("size", Value("int", "42")),
		Member("isimg", Boolean(true)),
		Member("note", &Node{Name: "value", Text: "untyped"}),
	))))
	if err != nil {
		t.Fatal(err)
	}

	inner, _ := ExtractParam(doc, 0)
	fields, ok := StructFields(inner)
	if !ok {
		t.Fatal("expected struct")
	}
	want := map[string]string{"id": "ns:a.png", "size": "42", "isimg": "True", "note": "untyped"}
	if len(fields) != len(want) {
		t.Errorf("got %d fields, want %d: %v", len(fields), len(want), fields)
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
		}
	}
}

func TestCheckText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{"plain", "hello", ""},
		{"tab newline carriage return", "a\tb\nc\r\n", ""},
		{"multibyte", "Grüße 日本 🙂", ""},
		{"replacement character", "\uFFFD", ""},
		{"nul", "ab\x00c", "U+0000 at offset 2"},
		{"form feed", "\x0cpage", "U+000C at offset 0"},
		{"ansi escape", "x\x1b[31mred", "U+001B at offset 1"},
		{"invalid utf-8", "ok\x82\xa0", "invalid UTF-8 byte 0x82 at offset 2"},
		{"noncharacter", "\uFFFE", "U+FFFE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckText("string", tt.text)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("CheckText: %v", err)
				}
				// accepted text must survive a serialize and parse cycle
				doc, perr := ParseResponse(Serialize(Request("wiki.putPage", String("p"), String(tt.text))))
				if perr != nil {
					t.Fatalf("serialized request does not parse: %v", perr)
				}
				if got := doc.Child("params").ChildrenNamed("param")[1].Child("value").First().Text; got != tt.text {
					t.Errorf("text = %q, want %q", got, tt.text)
				}
				return
			}
			if !apierrors.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_WalksTree(t *testing.T) {
	ok := Request("wiki.putPage", String("p"), Struct(Member("sum", String("edit"))))
	if err := Validate(ok); err != nil {
		t.Errorf("Validate: %v", err)
	}

	bad := Request("wiki.putPage", String("p"), Struct(Member("sum", String("\x1b"))))
	err := Validate(bad)
	if !apierrors.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "string") {
		t.Errorf("error should name the element: %v", err)
	}

	if err := Validate(nil); err != nil {
		t.Errorf("Validate(nil) = %v", err)
	}
}
