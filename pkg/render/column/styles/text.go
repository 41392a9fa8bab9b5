package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/stackbuilder/pkg/layer"
)

var labels = map[layer.Kind]string{
	layer.TopImage:    "TOP",
	layer.BottomImage: "BOTTOM",
	layer.LabelImage:  "RE",
	layer.Spacer:      "&",
}

// Label returns the caption drawn on a block of kind k.
func Label(k layer.Kind) string {
	if s, ok := labels[k]; ok {
		return s
	}
	return k.String()
}

func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func renderText(buf *bytes.Buffer, b Block, size float64, fill string) {
	fmt.Fprintf(buf, `  <text class="block-text" data-block="%s" x="%.2f" y="%.2f" font-family="Helvetica, Arial, sans-serif" font-size="%.1f" font-weight="bold" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
		EscapeXML(b.ID), b.CX, b.CY, size, fill, EscapeXML(Label(b.Kind)))
}
