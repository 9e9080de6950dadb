// Package render turns unified content records into the two message
// encodings Matrix wants: custom HTML for formatted_body and a markdown-ish
// plain fallback for body. Each post is built into one tree of block and
// inline nodes, and two serializers walk the same tree, so the encodings
// cannot drift apart structurally.
package render

// Inline is a phrasing-level node inside a paragraph.
type Inline interface {
	inline()
}

// Text is literal text. The HTML serializer escapes it; the plain serializer
// emits it verbatim.
type Text string

// Bold wraps inlines in strong emphasis.
type Bold struct {
	Inlines []Inline
}

// Code is inline monospace text.
type Code string

// Link is a hyperlink around inline content.
type Link struct {
	URL     string
	Inlines []Inline
}

// Image is an inline image reference, used for uploaded thumbnails. Plain
// output drops images; the media list is the fallback there.
type Image struct {
	URL    string
	Alt    string
	Width  int
	Height int
}

// HardBreak forces a line break within a paragraph.
type HardBreak struct{}

func (Text) inline()      {}
func (Bold) inline()      {}
func (Code) inline()      {}
func (Link) inline()      {}
func (Image) inline()     {}
func (HardBreak) inline() {}

// Block is a top-level node of a rendered message.
type Block interface {
	block()
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Inlines []Inline
}

// Blockquote nests blocks one quote level deeper.
type Blockquote struct {
	Blocks []Block
}

// Spoiler is collapsible content. HTML renders a details element with the
// summary; plain renders the summary line followed by the content.
type Spoiler struct {
	Summary string
	Blocks  []Block
}

// Raw is a pre-rendered leaf carrying both encodings. It exists for content
// that arrives already formatted, like provider HTML bodies paired with
// their markdown variants. Both strings are emitted verbatim.
type Raw struct {
	HTML  string
	Plain string
}

func (Paragraph) block()  {}
func (Blockquote) block() {}
func (Spoiler) block()    {}
func (Raw) block()        {}

// Message is a fully rendered preview in both encodings.
type Message struct {
	HTML  string
	Plain string
}

// Render serializes a block list into both encodings.
func Render(blocks []Block) Message {
	return Message{
		HTML:  RenderHTML(blocks),
		Plain: RenderPlain(blocks),
	}
}
