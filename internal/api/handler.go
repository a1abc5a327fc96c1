package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"chefrelay/internal/recipe"
)

// ModelGateway defines the interface for talking to the generative model.
type ModelGateway interface {
	Chat(ctx context.Context, system, user string) (string, error)
	Image(ctx context.Context, prompt string) (string, error)
}

// ImageProcessor defines the interface for turning an image URL into WebP bytes.
type ImageProcessor interface {
	FetchWebP(ctx context.Context, url string) ([]byte, string, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Gateway ModelGateway
	Images  ImageProcessor
	Prompts *recipe.PromptBuilder
	Logger  *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(gateway ModelGateway, images ImageProcessor, prompts *recipe.PromptBuilder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Gateway: gateway, Images: images, Prompts: prompts, Logger: logger}
}

// GenerateRecipe handles POST /api/recipe.
func (h *Handler) GenerateRecipe(c *gin.Context) {
	profile, err := recipe.ParseProfile(c.DefaultQuery("profile", string(recipe.DefaultProfile)))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Set(profileKey, string(profile))

	body, err := bindObject(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	fields := profile.RequiredFields()
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = string(f)
	}
	values, err := requireFields(body, keys)
	if err != nil {
		h.respondError(c, err)
		return
	}

	req := make(recipe.Request, len(fields))
	for _, f := range fields {
		req[f] = values[string(f)]
	}

	raw, err := h.Gateway.Chat(c.Request.Context(), recipe.SystemPersona, h.Prompts.Recipe(profile, req))
	if err != nil {
		h.respondError(c, err)
		return
	}

	out, err := recipe.Normalize(raw)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// Suggestions handles POST /api/recipe/suggestions.
func (h *Handler) Suggestions(c *gin.Context) {
	body, err := bindObject(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	values, err := requireFields(body, []string{"ingredients"})
	if err != nil {
		h.respondError(c, err)
		return
	}

	raw, err := h.Gateway.Chat(c.Request.Context(), recipe.SystemPersona, h.Prompts.Suggestions(values["ingredients"]))
	if err != nil {
		h.respondError(c, err)
		return
	}

	items, err := recipe.NormalizeList(raw, recipe.MaxSuggestions)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GenerateImage handles POST /api/generate-image. Success is always binary
// WebP and failure is always JSON.
func (h *Handler) GenerateImage(c *gin.Context) {
	body, err := bindObject(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	values, err := requireFields(body, []string{"title", "ingredients", "preparation"})
	if err != nil {
		h.respondError(c, err)
		return
	}

	prompt := h.Prompts.Image(recipe.ImageRequest{
		Title:       values["title"],
		Ingredients: values["ingredients"],
		Preparation: values["preparation"],
	})

	ctx := c.Request.Context()
	url, err := h.Gateway.Image(ctx, prompt)
	if err != nil {
		h.respondError(c, err)
		return
	}

	data, contentType, err := h.Images.FetchWebP(ctx, url)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

type profileInfo struct {
	Name           recipe.Profile       `json:"name"`
	RequiredFields []recipe.Field       `json:"required_fields"`
	OutputFields   []recipe.OutputField `json:"output_fields"`
	Default        bool                 `json:"default"`
}

// Profiles handles GET /api/profiles.
func (h *Handler) Profiles(c *gin.Context) {
	all := recipe.Profiles()
	out := make([]profileInfo, 0, len(all))
	for _, p := range all {
		out = append(out, profileInfo{
			Name:           p,
			RequiredFields: p.RequiredFields(),
			OutputFields:   p.OutputFields(),
			Default:        p == recipe.DefaultProfile,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MaxBodyBytes bounds request bodies; everything in them ends up in a prompt.
const MaxBodyBytes = 1 << 20

// bindObject reads the request body as a JSON object. Values are kept raw so
// presence can be checked independently of type.
func bindObject(c *gin.Context) (map[string]json.RawMessage, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
	data, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, errInvalidBody
	}
	if len(data) == 0 {
		return nil, errInvalidBody
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, errInvalidBody
	}
	return body, nil
}

// requireFields returns the text of every key in keys, or a ValidationError
// listing the absent ones in the order given. A key is present when it exists
// in body, whatever its value.
func requireFields(body map[string]json.RawMessage, keys []string) (map[string]string, error) {
	var missing []string
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok := body[k]
		if !ok {
			missing = append(missing, k)
			continue
		}
		values[k] = fieldText(v)
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}
	return values, nil
}

// fieldText renders a JSON value for prompt interpolation: strings unquoted,
// null as empty, anything else as its JSON text.
func fieldText(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}
