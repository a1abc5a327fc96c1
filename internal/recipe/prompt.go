package recipe

import (
	"fmt"
	"strings"
)

// SystemPersona is sent as the system message on every text completion.
const SystemPersona = "You are a chef with years of experience."

// DefaultLanguage is the language recipes are written in unless configured otherwise.
const DefaultLanguage = "Spanish"

// PromptBuilder turns recipe constraints into model instructions. It holds no
// per-request state and is safe for concurrent use.
type PromptBuilder struct {
	language string
}

// NewPromptBuilder creates a PromptBuilder that asks for recipes written in language.
func NewPromptBuilder(language string) *PromptBuilder {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	return &PromptBuilder{language: language}
}

// Recipe builds the instruction for a single recipe. The key list and the
// JSON skeleton are both rendered from the profile's output fields.
func (b *PromptBuilder) Recipe(p Profile, req Request) string {
	fields := p.OutputFields()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Act as a professional chef with years of experience. Create a recipe in %s "+
		"that meets the following criteria and return it **exclusively** in JSON format, with these keys:", b.language)
	writeKeyList(&sb, fields)
	sb.WriteString("\nRespect the following key order and structure:\n\n")
	writeObjectSchema(&sb, fields, "")
	sb.WriteString("\n\nDo not add explanations or any additional text. Return only the JSON with the corresponding values.\n\n")

	sb.WriteString("---\nRecipe instructions:\n")
	for _, f := range p.RequiredFields() {
		l := constraintLabels[f]
		fmt.Fprintf(&sb, "- %s: %s%s.\n", l.label, req[f], l.unit)
	}
	sb.WriteString("---")
	return sb.String()
}

// Suggestions builds the instruction for a bounded list of recipe ideas.
func (b *PromptBuilder) Suggestions(ingredients string) string {
	fields := SuggestionFields()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Act as a professional chef with years of experience. Suggest at most %d different recipe ideas in %s "+
		"that can be prepared with the available ingredients, and return them **exclusively** as a JSON array "+
		"with no more than %d elements. Each element must have these keys:", MaxSuggestions, b.language, MaxSuggestions)
	writeKeyList(&sb, fields)
	sb.WriteString("\nRespect the following structure:\n\n[\n")
	writeObjectSchema(&sb, fields, "  ")
	sb.WriteString("\n]\n\n")
	fmt.Fprintf(&sb, "Never return more than %d elements. Do not add explanations or any additional text. Return only the JSON array.\n\n", MaxSuggestions)
	fmt.Fprintf(&sb, "---\nAvailable ingredients: %s.\n---", ingredients)
	return sb.String()
}

// Image builds the prompt sent to the image model.
func (b *PromptBuilder) Image(req ImageRequest) string {
	return fmt.Sprintf("A professional food photograph of the dish %q, made with %s. Preparation: %s. "+
		"Plated as served, natural lighting, shallow depth of field, appetizing colors, no text or labels.",
		req.Title, req.Ingredients, req.Preparation)
}

func writeKeyList(sb *strings.Builder, fields []OutputField) {
	for i, f := range fields {
		end := ","
		if i == len(fields)-1 {
			end = "."
		}
		fmt.Fprintf(sb, "\n'%s': %s%s", f.Key, f.Description, end)
	}
}

func writeObjectSchema(sb *strings.Builder, fields []OutputField, indent string) {
	sb.WriteString(indent + "{\n")
	for i, f := range fields {
		fmt.Fprintf(sb, "%s  %q: %s", indent, f.Key, f.Type)
		if i < len(fields)-1 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(indent + "}")
}
