package convention

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToLowerCamel(t *testing.T) {
	cases := map[string]string{
		"MAX_RETRY":  "maxRetry",
		"max_retry":  "maxRetry",
		"MaxRetry":   "maxRetry",
		"maxRetry":   "maxRetry",
		"get_URL":    "getUrl",
		"URL":        "url",
		"_private":   "private",
		"a$b":        "aB",
		"_":          "",
		"Do_Work_2x": "doWork2x",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToLowerCamel(in), in)
	}
}

func TestToUpperCamel(t *testing.T) {
	cases := map[string]string{
		"user_info": "UserInfo",
		"userInfo":  "UserInfo",
		"UserInfo":  "UserInfo",
		"_x_":       "X",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToUpperCamel(in), in)
	}
}

func TestToConstantCase(t *testing.T) {
	cases := map[string]string{
		"maxRetryCount": "MAX_RETRY_COUNT",
		"MAX_RETRY":     "MAX_RETRY",
		"retry3Times":   "RETRY3TIMES",
		"max$count":     "MAX_COUNT",
		"a__b":          "A_B",
		"redColor":      "RED_COLOR",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToConstantCase(in), in)
	}
}

// TestConversionsIdempotent повторное применение ничего не меняет.
func TestConversionsIdempotent(t *testing.T) {
	inputs := []string{
		"", "x", "X", "isActive", "HTTPServer", "max_retry_count", "MAX_RETRY_COUNT",
		"__weird$$Name__", "getURLForUser", "名字Name", "a1B2c3", "$", "snake_Case_MIX",
	}
	convs := map[string]func(string) string{
		"lower":    ToLowerCamel,
		"upper":    ToUpperCamel,
		"constant": ToConstantCase,
		"strip":    StripEdgeMarkers,
		"han":      DropHan,
	}
	for name, conv := range convs {
		for _, in := range inputs {
			once := conv(in)
			assert.Equal(t, once, conv(once), "%s(%q)", name, in)
		}
	}
}

func TestEdgeMarkers(t *testing.T) {
	assert.True(t, HasEdgeMarker("_name"))
	assert.True(t, HasEdgeMarker("name$"))
	assert.False(t, HasEdgeMarker("na_me"))
	assert.False(t, HasEdgeMarker(""))
	assert.Equal(t, "name", StripEdgeMarkers("__name$"))
	assert.Equal(t, "count", StripEdgeMarkers("__count__"))
}

func TestScript(t *testing.T) {
	assert.True(t, ContainsHan("名字"))
	assert.False(t, ContainsHan("name"))
	assert.True(t, MixesLatinHan("user名字"))
	assert.True(t, MixesLatinHan("名字user"))
	assert.False(t, MixesLatinHan("名字"))
	assert.Equal(t, "user", DropHan("user名字"))
}

func TestShapes(t *testing.T) {
	assert.True(t, IsLowerCamel("maxRetry"))
	assert.False(t, IsLowerCamel("MaxRetry"))
	assert.True(t, IsUpperCamel("UserInfo"))
	assert.False(t, IsUpperCamel("user_info"))
	assert.True(t, IsConstantCase("CONST_42"))
	assert.False(t, IsConstantCase("maxRetryCount"))

	re1, err := Compile(`^a+$`)
	assert.NoError(t, err)
	re2, _ := Compile(`^a+$`)
	assert.Same(t, re1, re2)
	_, err = Compile(`(`)
	assert.Error(t, err)
}

func TestAccessorNames(t *testing.T) {
	assert.Equal(t, []string{"getName"}, GetterNames("name", false))
	assert.Equal(t, []string{"getActive", "isActive"}, GetterNames("active", true))
	assert.Equal(t, "setName", SetterName("name"))
}

func TestIsReserved(t *testing.T) {
	for _, w := range []string{"class", "int", "true", "null", "goto", "_"} {
		assert.True(t, IsReserved(w), w)
	}
	for _, w := range []string{"Class", "klass", "var", "record", "count"} {
		assert.False(t, IsReserved(w), w)
	}
}
