package lexical

// ContentType is the format tag the surface sends with every content edit.
const ContentType = "lexical"

// LexicalRoot represents the top-level structure
type LexicalRoot struct {
	Root Node `json:"root"`
}

// Node represents any node in the Lexical tree. Only the fields the editor
// service looks at are decoded.
type Node struct {
	Type     string `json:"type"`
	Version  int    `json:"version"`
	Children []Node `json:"children,omitempty"`

	// Text specific
	Text string `json:"text,omitempty"`

	// Link specific
	URL string `json:"url,omitempty"`

	// List specific
	ListType string `json:"listType,omitempty"` // check, bullet, number

	// ListItem specific
	Checked bool `json:"checked,omitempty"`
}

// Block-level node types that end a line in plain text output.
var blockTypes = map[string]bool{
	"paragraph": true,
	"heading":   true,
	"quote":     true,
	"listitem":  true,
	"code":      true,
	"tablerow":  true,
}
