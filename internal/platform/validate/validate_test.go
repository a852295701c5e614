package validate

import (
	"testing"

	perr "shamewizard/internal/platform/errors"
	kit "shamewizard/internal/platform/testkit"
)

type inner struct {
	Cooldown float64  `mapstructure:"cooldown" validate:"gte=0"`
	Message  []string `mapstructure:"message" validate:"min=1"`
}

type outer struct {
	Name string `json:"name" validate:"required,reddit_username"`
	Bot  inner  `mapstructure:"bot"`
}

func TestStructOK(t *testing.T) {
	kit.NoErr(t, Struct(outer{Name: "shame_wizard", Bot: inner{Cooldown: 0, Message: []string{"x"}}}))
}

func TestStructReportsFirstFieldWithConfigKey(t *testing.T) {
	err := Struct(outer{Name: "shame_wizard", Bot: inner{Cooldown: 1}})
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("code = %v, want validation", perr.CodeOf(err))
	}
	e, _ := perr.As(err)
	if e.Field() != "bot.message" {
		t.Fatalf("field = %q, want bot.message", e.Field())
	}
	kit.MustContain(t, err.Error(), "message must be at least 1")
}

func TestRedditUsername(t *testing.T) {
	cases := map[string]bool{
		"shame_wizard":           true,
		"A-b":                    true,
		"ab":                     false,
		"has space":              false,
		"waytoolongusername_123": false,
	}
	for name, ok := range cases {
		err := Struct(outer{Name: name, Bot: inner{Message: []string{"x"}}})
		if (err == nil) != ok {
			t.Fatalf("username %q: err = %v, want ok=%v", name, err, ok)
		}
	}
}

func TestStructNonStruct(t *testing.T) {
	if !perr.IsCode(Struct(42), perr.ErrorCodeInvalidArgument) {
		t.Fatalf("non-struct input should be invalid argument")
	}
}
