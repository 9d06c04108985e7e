package burnish

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burnish-io/burnish/record"
)

func TestUIDDeterminism(t *testing.T) {
	build := func() *Pipeline {
		return New().
			Strip(Columns(`^name$`)).
			Increment(Amount(5), Columns(`^count$`))
	}

	p1 := build()
	p2 := build()

	assert.Equal(t, p1.UID(), p2.UID(), "identical registries must share a uid")
	assert.Len(t, p1.UID(), 40, "SHA-1 hex is 40 characters")
}

func TestUIDOrderSensitive(t *testing.T) {
	p1 := New().Lower().Strip()
	p2 := New().Strip().Lower()

	assert.NotEqual(t, p1.UID(), p2.UID(), "registration order is part of identity")
}

func TestUIDChangesOnAppend(t *testing.T) {
	p := New()
	empty := p.UID()

	p.Lower()
	one := p.UID()
	assert.NotEqual(t, empty, one)

	p.Lower()
	assert.NotEqual(t, one, p.UID(), "a repeated rule still changes the uid")
}

func TestUIDIgnoresCallables(t *testing.T) {
	plain := New().Upper(Columns(`^name$`))
	gated := New().Upper(Columns(`^name$`), Where(func(r *record.Record, column string) bool {
		return r.Len() > 2
	}))

	assert.Equal(t, plain.UID(), gated.UID(), "callable filters are not serializable content")
}

func TestUIDAdmitsTimeLiterals(t *testing.T) {
	stamp := time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

	var uid string
	require.NotPanics(t, func() {
		uid = New().AddColumns(Pairs{P("ts", stamp)}).UID()
	})
	assert.Len(t, uid, 40)

	p := New().AddColumns(Pairs{P("ts", stamp)})
	assert.Equal(t, uid, p.UID())
	assert.Equal(t, uid, p.Name(), "the name fallback must survive a time literal too")
}

func TestUIDParamSensitive(t *testing.T) {
	p1 := New().Increment(Amount(1))
	p2 := New().Increment(Amount(2))

	assert.NotEqual(t, p1.UID(), p2.UID())
}

func TestNameFallsBackToUID(t *testing.T) {
	p := New()
	assert.Equal(t, p.UID(), p.Name(), "unnamed pipeline reports its uid")

	p.Lower()
	assert.Equal(t, p.UID(), p.Name(), "fallback tracks the registry")

	require.NoError(t, p.SetName("cleanup"))
	assert.Equal(t, "cleanup", p.Name())

	p.Upper()
	assert.Equal(t, "cleanup", p.Name(), "an explicit name never reverts")
}

func TestSetNameRejectsEmpty(t *testing.T) {
	p := New()
	assert.ErrorIs(t, p.SetName(""), ErrEmptyName)

	assert.Panics(t, func() { Named("") })
}

func TestEqualByContent(t *testing.T) {
	p1 := Named("first").Strip()
	p2 := Named("second").Strip()

	assert.True(t, p1.Equal(p2), "names are not part of identity")
	assert.NotEqual(t, p1.String(), p2.String(), "rendering includes the name")

	p2.Lower()
	assert.False(t, p1.Equal(p2))
	assert.False(t, p1.Equal(nil))
}

func TestRuleViews(t *testing.T) {
	p := New().
		Lower().
		RemoveColumns("junk").
		Strip().
		RenameColumns(Pairs{P("a", "b")})

	all := p.Rules()
	require.Len(t, all, 4)
	assert.Equal(t, "lower", all[0].Rule())
	assert.Equal(t, "rename_columns", all[3].Rule())

	vals := p.ValueRules()
	require.Len(t, vals, 2)
	assert.Equal(t, "lower", vals[0].Rule())
	assert.Equal(t, "strip", vals[1].Rule())

	recs := p.RecordRules()
	require.Len(t, recs, 2)
	assert.Equal(t, "remove_columns", recs[0].Rule())
	assert.Equal(t, KindRecord, recs[0].Kind())
}

func TestRulesReturnsCopy(t *testing.T) {
	p := New().Lower()
	rules := p.Rules()
	rules[0] = Registration{}

	assert.Equal(t, "lower", p.Rules()[0].Rule(), "mutating the returned slice must not touch the registry")
}

func TestString(t *testing.T) {
	p := Named("tidy").Strip().Lower()
	assert.Equal(t, `<Pipeline (2 rules) "tidy">`, p.String())
}

func TestRegistrationParamsSanitized(t *testing.T) {
	p := New().Upper(Where(func(r *record.Record, column string) bool { return true }))
	reg := p.Rules()[0]

	assert.True(t, reg.hasCallable())
	for _, v := range reg.Params() {
		_, isFn := v.(WhereFunc)
		assert.False(t, isFn, "Params must not leak callables")
	}
}
