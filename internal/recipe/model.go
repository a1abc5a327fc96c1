package recipe

// Request holds caller-supplied constraint values. Values are opaque text and
// are interpolated into the prompt exactly as given.
type Request map[Field]string

// ImageRequest describes the dish an image should be generated for.
type ImageRequest struct {
	Title       string `json:"title"`
	Ingredients string `json:"ingredients"`
	Preparation string `json:"preparation"`
}

// MaxSuggestions bounds the number of recipe ideas returned by the suggestions route.
const MaxSuggestions = 10
