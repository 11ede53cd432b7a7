package internal

import (
	"bufio"
	"io"
	"strings"

	"tlog.app/go/errors"
)

var xmlEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"&", "&amp;",
)

// WriteTokensXML writes the token listing:
//
//	<tokens>
//	<keyword>class</keyword>
//	<identifier>Main</identifier>
//	<symbol>{</symbol>
//	...
//	</tokens>
func WriteTokensXML(w io.Writer, tokens []Token) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("<tokens>\n")

	for _, token := range tokens {
		tag := token.Kind.String()

		bw.WriteString("<" + tag + ">")
		xmlEscaper.WriteString(bw, token.Text)
		bw.WriteString("</" + tag + ">\n")
	}

	bw.WriteString("</tokens>\n")

	// bufio.Writer keeps the first error, Flush reports it.
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "write tokens")
	}

	return nil
}
