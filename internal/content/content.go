// Package content holds the unified records that provider parsers produce
// and renderers consume. Records are created fresh for every previewed URL,
// are read-only after parsing, and are discarded once the message has been
// dispatched.
package content

// Platform identifies which social network produced a record. It also selects
// the parser on the way in and the renderer category on the way out.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformBluesky   Platform = "bsky"
	PlatformMastodon  Platform = "mastodon"
	PlatformReddit    Platform = "reddit"
	PlatformLemmy     Platform = "lemmy"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// Category selects which renderer applies to a record.
type Category int

const (
	CategoryBlog Category = iota
	CategoryForum
)

// Category returns the renderer category for the platform. Microblogs render
// through the blog renderer, forums and video-link platforms through the
// forum renderer.
func (p Platform) Category() Category {
	switch p {
	case PlatformTwitter, PlatformBluesky, PlatformMastodon:
		return CategoryBlog
	default:
		return CategoryForum
	}
}

// MediaType is the normalized media taxonomy shared by all platforms.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// Media is a single attachment. Created by a parser, read-only thereafter.
type Media struct {
	Width        int
	Height       int
	URL          string
	ThumbnailURL string
	Type         MediaType
}

// OffsetUnit states how a post's facet offsets index into its text. Bluesky
// counts UTF-8 bytes; the FxTwitter API counts code points.
type OffsetUnit int

const (
	OffsetBytes OffsetUnit = iota
	OffsetRunes
)

// Facet is a rich-text substitution span: the half-open range
// [Start, End) of the post text is replaced by a link when rendering.
// Within one post the facet list is sorted ascending by Start and spans do
// not overlap.
type Facet struct {
	Text  string
	URL   string
	Start int
	End   int
}

// Link carries external link-card metadata.
type Link struct {
	Title       string
	Description string
	URL         string
}

// Choice is a single poll option.
type Choice struct {
	Label      string
	Votes      int64
	Percentage float64
}

// Poll is a poll attached to a post. Percentage values are either
// provider-supplied or derived from votes/voters; they are not guaranteed to
// sum to 100.
type Poll struct {
	EndsAt      int64
	Status      string
	TotalVoters int64
	Choices     []Choice
}

// MaxQuoteDepth caps how many levels of quoted posts carry full content.
// Anything deeper is represented by QuotePlaceholder.
const MaxQuoteDepth = 1

// BlogPost is the unified record for microblog-shaped content.
type BlogPost struct {
	Text     string
	Markdown string // pre-formatted markdown variant of Text, when the source is HTML
	URL      string // permalink; populated on quoted posts

	// Interaction counters, already shortened to display strings. Empty
	// means the counter is absent and its section is omitted.
	Replies string
	Reposts string
	Likes   string
	Views   string

	ModerationNote string

	AuthorName   string
	AuthorHandle string
	AuthorURL    string

	PostedAt int64 // epoch seconds, 0 when unknown

	Photos []Media
	Videos []Media

	// MosaicURL, when set, is a single composite image covering all photos;
	// the preview pipeline uses it instead of per-photo thumbnails.
	MosaicURL string

	Facets       []Facet
	FacetOffsets OffsetUnit

	Poll  *Poll
	Link  *Link
	Quote *BlogPost

	Translation     string
	TranslationLang string

	Platform    Platform
	DisplayName string // e.g. "🦋 Bluesky", shown in the footer

	Sensitive   bool
	SpoilerText string
}

// QuotePlaceholder stands in for a quoted post beyond MaxQuoteDepth. The
// nested post's content is deliberately not expanded.
func QuotePlaceholder(p Platform) *BlogPost {
	return &BlogPost{Text: "Quoted another post", Platform: p}
}

// IsPlaceholder reports whether the post is a capped-depth quote stub.
func (b *BlogPost) IsPlaceholder() bool {
	return b.AuthorHandle == "" && b.Text == "Quoted another post"
}

// ForumPost is the unified record for forum-shaped content.
type ForumPost struct {
	Title  string
	Flair  string
	Sub    string
	SubURL string

	Author    string
	AuthorURL string

	Text     string // HTML-ish body
	Markdown string // markdown variant of the body

	Score       string
	Upvotes     string
	Downvotes   string
	UpvoteRatio int
	Comments    int64

	NSFW    bool
	Spoiler bool

	// IsLink is true when the post itself is a link rather than
	// self-content; link posts get small thumbnails.
	IsLink    bool
	IsComment bool

	URL      string
	PostedAt int64

	Photos []Media
	Videos []Media

	Platform    Platform
	DisplayName string
}

// Post is the tagged union handed from parsers to renderers. Exactly one of
// Blog and Forum is set, matching Category.
type Post struct {
	Category Category
	Blog     *BlogPost
	Forum    *ForumPost
}

// NewBlogPost wraps a BlogPost into the tagged union.
func NewBlogPost(b *BlogPost) *Post {
	return &Post{Category: CategoryBlog, Blog: b}
}

// NewForumPost wraps a ForumPost into the tagged union.
func NewForumPost(f *ForumPost) *Post {
	return &Post{Category: CategoryForum, Forum: f}
}
