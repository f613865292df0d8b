package provider

import (
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/Vilsol/ts-proto/tsprotogen/ir"
)

// syntaxPath is the SourceCodeInfo path of the syntax statement. Comments
// attached to it become the file comment.
var syntaxPath = ir.Path{12}

// SourceComments indexes the comments of a file's SourceCodeInfo by
// declaration path. It implements ir.CommentSource.
type SourceComments struct {
	byPath map[string]string
}

// NewSourceComments indexes info. A nil info yields an empty index.
func NewSourceComments(info *descriptorpb.SourceCodeInfo) *SourceComments {
	c := &SourceComments{byPath: make(map[string]string)}
	for _, loc := range info.GetLocation() {
		text := loc.GetLeadingComments()
		if strings.TrimSpace(text) == "" {
			text = loc.GetTrailingComments()
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		key := ir.Path(loc.GetPath()).String()
		if _, ok := c.byPath[key]; ok {
			continue
		}
		c.byPath[key] = normalizeComment(text)
	}
	return c
}

// Comment implements ir.CommentSource.
func (c *SourceComments) Comment(path ir.Path) (string, bool) {
	text, ok := c.byPath[path.String()]
	return text, ok
}

// Len returns the number of indexed comments.
func (c *SourceComments) Len() int { return len(c.byPath) }

// normalizeComment drops the single space protoc keeps after "//" and
// trims surrounding blank lines.
func normalizeComment(text string) string {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(strings.TrimPrefix(l, " "), " \t")
	}
	return strings.Join(lines, "\n")
}
