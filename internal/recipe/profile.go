package recipe

import (
	"fmt"
	"strings"
)

// Field names a caller-supplied recipe constraint.
type Field string

const (
	FieldIngredient       Field = "ingredient"
	FieldTypeFood         Field = "type_food"
	FieldMaximumCalories  Field = "maximum_calories"
	FieldPreparationType  Field = "preparation_type"
	FieldDishStyle        Field = "dish_style"
	FieldDifficulty       Field = "difficulty"
	FieldSpecialEquipment Field = "special_equipment"
	FieldFlavorProfile    Field = "flavor_profile"
	FieldCourseType       Field = "course_type"
)

// constraintLabels holds the text shown next to each constraint value in the
// prompt, plus an optional unit appended after the value.
var constraintLabels = map[Field]struct {
	label string
	unit  string
}{
	FieldIngredient:       {label: "Available ingredients and their quantities"},
	FieldTypeFood:         {label: "Meal type"},
	FieldMaximumCalories:  {label: "Calorie limit", unit: " kcal"},
	FieldPreparationType:  {label: "Preparation method"},
	FieldDishStyle:        {label: "Dish style or particular cuisine"},
	FieldDifficulty:       {label: "Recipe difficulty"},
	FieldSpecialEquipment: {label: "Special equipment required"},
	FieldFlavorProfile:    {label: "Flavor profile that should dominate"},
	FieldCourseType:       {label: "Course type"},
}

// OutputField is one key of the JSON object the model is asked to return.
type OutputField struct {
	Key         string `json:"key"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

var (
	outTitle              = OutputField{Key: "title", Type: "string", Description: "name of the recipe"}
	outDescription        = OutputField{Key: "description", Type: "string", Description: "detailed description of the dish and which dish from which country it resembles or is inspired by"}
	outIngredients        = OutputField{Key: "ingredients", Type: "[string]", Description: "list of ingredients with quantities"}
	outInstructions       = OutputField{Key: "instructions", Type: "[string]", Description: "list of preparation steps"}
	outPrepTime           = OutputField{Key: "prep_time", Type: "string", Description: "total estimated preparation time"}
	outPreparationTime    = OutputField{Key: "preparation_time", Type: "Time", Description: "preparation time in time format (example: 01:40:00 is 1 hour and 40 minutes)"}
	outCaloriesPerServing = OutputField{Key: "calories_per_serving", Type: "string", Description: "approximate calories per serving, with a brief explanation"}
	outCalories           = OutputField{Key: "calories", Type: "integer", Description: "approximate calories per serving as an integer (example: 650)"}
)

var (
	minimalOutput = []OutputField{
		outTitle, outDescription, outIngredients, outInstructions, outPrepTime, outCaloriesPerServing,
	}
	extendedOutput = []OutputField{
		outTitle, outDescription, outIngredients, outInstructions, outPrepTime, outPreparationTime, outCaloriesPerServing, outCalories,
	}
	suggestionOutput = []OutputField{
		{Key: "title", Type: "string", Description: "name of the recipe"},
		{Key: "description", Type: "string", Description: "short description of the dish"},
		{Key: "calories", Type: "string", Description: "approximate calories per serving"},
		{Key: "time", Type: "string", Description: "approximate total preparation time"},
		{Key: "ingredients", Type: "[string]", Description: "names of the main ingredients used"},
	}
)

// Profile selects which constraints a recipe request must carry and which
// keys the model is asked to return.
type Profile string

const (
	ProfileBasic    Profile = "basic"
	ProfileStandard Profile = "standard"
	ProfileExtended Profile = "extended"

	DefaultProfile = ProfileExtended
)

type profileSpec struct {
	inputs  []Field
	outputs []OutputField
}

var profileOrder = []Profile{ProfileBasic, ProfileStandard, ProfileExtended}

var profiles = map[Profile]profileSpec{
	ProfileBasic: {
		inputs:  []Field{FieldIngredient, FieldTypeFood, FieldMaximumCalories},
		outputs: minimalOutput,
	},
	ProfileStandard: {
		inputs:  []Field{FieldIngredient, FieldTypeFood, FieldMaximumCalories, FieldPreparationType},
		outputs: minimalOutput,
	},
	ProfileExtended: {
		inputs: []Field{
			FieldIngredient, FieldTypeFood, FieldMaximumCalories, FieldPreparationType, FieldDishStyle,
			FieldDifficulty, FieldSpecialEquipment, FieldFlavorProfile, FieldCourseType,
		},
		outputs: extendedOutput,
	},
}

// ParseProfile resolves a profile name. An empty name selects DefaultProfile.
func ParseProfile(name string) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultProfile, nil
	}
	p := Profile(name)
	if _, ok := profiles[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Profiles returns every known profile, smallest first.
func Profiles() []Profile {
	return append([]Profile(nil), profileOrder...)
}

// RequiredFields returns the constraints the profile requires, in the order
// they appear in the prompt.
func (p Profile) RequiredFields() []Field {
	return append([]Field(nil), profiles[p].inputs...)
}

// OutputFields returns the keys the model is asked to produce, in order.
func (p Profile) OutputFields() []OutputField {
	return append([]OutputField(nil), profiles[p].outputs...)
}

// SuggestionFields returns the keys of a single recipe suggestion.
func SuggestionFields() []OutputField {
	return append([]OutputField(nil), suggestionOutput...)
}
