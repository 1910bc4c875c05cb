package main

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/formkit/pkg/formdef"
	"github.com/dmitrymomot/formkit/pkg/redisstore"
	"github.com/dmitrymomot/formkit/pkg/validation"
)

func testFactory(t *testing.T) (redis.UniversalClient, *redisstore.Factory) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })
	return client, redisstore.NewFactory(client, redisstore.Config{KeyPrefix: "formkit"})
}

func TestBundledFormsCompile(t *testing.T) {
	t.Parallel()

	defs, err := loadForms("")
	require.NoError(t, err)
	require.Len(t, defs, 4)

	compiler := formdef.NewCompiler(formdef.WithRule(uniqueRuleName, skipUnique))
	compiled, err := compiler.CompileAll(defs)
	require.NoError(t, err)

	username, ok := compiled["signup"].Validators.Field("username")
	require.True(t, ok)
	res, err := username(context.Background(), "ada", nil)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	radio, ok := compiled["radio"].Field("radios")
	require.True(t, ok)
	assert.Len(t, radio.Options, 3)
	link, ok := compiled["linked"].Field("field1")
	require.True(t, ok)
	_, ok = link.Link("reverse")
	assert.True(t, ok)

	_, err = formdef.NewCompiler().CompileAll(defs)
	assert.ErrorIs(t, err, validation.ErrUnknownRule, "unique needs a registered rule")
}

func TestBundledTranslations(t *testing.T) {
	t.Parallel()

	tr, err := newTranslator(context.Background(), "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"en", "de"}, tr.SupportedLanguages())
	assert.Equal(t, "Absenden", tr.T("de", "playground.submit"))
	assert.Equal(t, "Mindestens 8 Zeichen", tr.T("de", "validation.short", "chars", "8"))
}

func TestClaimerFindsUniqueFields(t *testing.T) {
	t.Parallel()
	client, factory := testFactory(t)

	defs, err := loadForms("")
	require.NoError(t, err)
	c, err := newClaimer(client, factory, defs)
	require.NoError(t, err)

	assert.Equal(t, map[string]map[string]string{
		"signup": {"username": "formkit:unique:usernames"},
	}, c.sets)

	assert.NotNil(t, c.Handler("signup", true))
	assert.Nil(t, c.Handler("signup", false), "invalid submits claim nothing")
	assert.Nil(t, c.Handler("code", true))
}

func TestUniqueRuleParams(t *testing.T) {
	t.Parallel()
	client, factory := testFactory(t)

	var rules []formdef.Rule
	require.NoError(t, yaml.Unmarshal([]byte(`
- unique: {set: emails}
- unique: {}
- any:
    - required
    - delayed: {duration: 10ms, rule: {unique: {set: nested}}}
`), &rules))

	_, err := uniqueRule(client, factory)(nil, rules[0])
	require.NoError(t, err)
	_, err = uniqueRule(client, factory)(nil, rules[1])
	require.ErrorIs(t, err, formdef.ErrInvalidParams)
	_, err = skipUnique(nil, rules[1])
	require.ErrorIs(t, err, formdef.ErrInvalidParams)

	found := uniqueRules(rules[2:])
	require.Len(t, found, 1)
	p, err := decodeUnique(found[0])
	require.NoError(t, err)
	assert.Equal(t, "nested", p.Set)
}

func TestSkipUniqueAcceptsEverything(t *testing.T) {
	t.Parallel()

	ctor, err := skipUnique(nil, formdef.Rule{Name: uniqueRuleName})
	require.ErrorIs(t, err, formdef.ErrInvalidParams)
	assert.Nil(t, ctor)

	var rule formdef.Rule
	require.NoError(t, yaml.Unmarshal([]byte(`unique: {set: x}`), &rule))
	ctor, err = skipUnique(nil, rule)
	require.NoError(t, err)
	res, err := validation.Bind(ctor)(context.Background(), "taken", nil)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}
