package schema

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"hookbuilder/pkg/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// messages are keyed by "<Struct>.<Field>", with a struct-wide fallback keyed by "<Struct>".
var messages = map[string]string{
	"ScriptBrief.Philosophy":     "Please enter your philosophical idea",
	"ScriptBrief.CharacterRoles": "Please define character roles",
	"ScriptBrief.Tone":           "Please select a tone",
	"ScriptBrief.Themes":         "Please select at least one theme",
	"ScriptBrief.EmotionalArc":   "Please select an emotional arc",
	"ScriptBrief.NumCharacters":  "Please choose 1, 2 or 3 characters",
	"ScriptBrief.CreatorNote":    "Creator note must be 700 characters or fewer",

	"HookRequest":        "Please fill in all required fields",
	"SavedHookVariation": "Please choose a variation to save",
	"SavedScript":        "There is no script to save",
}

// Validate checks v's struct tags and reports the first failure as a ValidationError
// carrying the message the form shows for that field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation(err.Error())
	}
	fe := verrs[0]
	// StructNamespace is "SavedScript.ScriptBrief.Tone" for embedded briefs.
	parts := strings.Split(fe.StructNamespace(), ".")
	field := fe.StructField()
	for i := len(parts) - 2; i >= 0; i-- {
		if msg, ok := messages[parts[i]+"."+field]; ok {
			return apperr.Validation(msg)
		}
	}
	if msg, ok := messages[parts[0]]; ok {
		return apperr.Validation(msg)
	}
	return apperr.Validation(fe.Error())
}
