package fulfillment

// Kind discriminates the response element variants.
type Kind int

const (
	KindText Kind = iota + 1
	KindCard
	KindImage
	KindSuggestions
	KindPayload
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCard:
		return "card"
	case KindImage:
		return "image"
	case KindSuggestions:
		return "suggestions"
	case KindPayload:
		return "payload"
	default:
		return "unknown"
	}
}

// Element is a rich response element. The set of implementations is closed:
// Text, Card, Image, Suggestions and Payload.
type Element interface {
	Kind() Kind
	TargetPlatform() Platform
	element()
}

// Text is a plain text response.
type Text struct {
	Text     string
	Platform Platform
}

// Button is a link button attached to a Card.
type Button struct {
	Text string
	URL  string
}

// Card is a basic card with an optional image and buttons.
type Card struct {
	Title    string
	Subtitle string
	ImageURL string
	Buttons  []Button
	Platform Platform
}

// Image is a standalone image response.
type Image struct {
	ImageURL string
	Platform Platform
}

// Suggestions is a block of quick replies. Suggestions for the same platform
// are merged into one block when added to an Agent.
type Suggestions struct {
	Title    string
	Replies  []string
	Platform Platform
}

// Payload is a raw, platform-native response passed through untouched.
type Payload struct {
	Payload  map[string]any
	Platform Platform
}

func (*Text) Kind() Kind        { return KindText }
func (*Card) Kind() Kind        { return KindCard }
func (*Image) Kind() Kind       { return KindImage }
func (*Suggestions) Kind() Kind { return KindSuggestions }
func (*Payload) Kind() Kind     { return KindPayload }

func (t *Text) TargetPlatform() Platform        { return t.Platform.normalize() }
func (c *Card) TargetPlatform() Platform        { return c.Platform.normalize() }
func (i *Image) TargetPlatform() Platform       { return i.Platform.normalize() }
func (s *Suggestions) TargetPlatform() Platform { return s.Platform.normalize() }
func (p *Payload) TargetPlatform() Platform     { return p.Platform.normalize() }

func (*Text) element()        {}
func (*Card) element()        {}
func (*Image) element()       {}
func (*Suggestions) element() {}
func (*Payload) element()     {}

// NewSuggestions builds a Suggestions block from the given replies.
func NewSuggestions(platform Platform, replies ...string) *Suggestions {
	return &Suggestions{Replies: replies, Platform: platform}
}

// samePlatform applies the lookup rule: an unspecified tag only matches an
// unspecified or absent request; otherwise tags must be equal.
func samePlatform(tag, want Platform) bool {
	return tag.normalize() == want.normalize()
}
