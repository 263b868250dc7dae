package dataset

import (
	"encoding/json"
	"math"
	"testing"

	"gounivar/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Dataset {
	t.Helper()
	ds, err := New(
		NewColumn("age", 31, nil, 45, 22, 60),
		NewColumn("sex", "F", "M", nil, "F", "M"),
		NewColumn("site", 1, 2, 2, nil, 1),
	)
	require.NoError(t, err)
	return ds
}

func TestParse(t *testing.T) {
	assert.True(t, Parse("").IsMissing())
	assert.True(t, Parse(" NA ").IsMissing())
	assert.True(t, Parse("NaN").IsMissing())
	assert.Equal(t, Number(3.5), Parse("3.5"))
	assert.Equal(t, String("yes"), Parse(" yes"))
	assert.True(t, Number(math.NaN()).IsMissing())
}

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := New(NewColumn("a", 1, 2), NewColumn("b", 1))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput))

	_, err = New(NewColumn("a", 1), NewColumn("a", 2))
	assert.Error(t, err)
}

func TestSubtableCompleteCases(t *testing.T) {
	ds := sample(t)

	global, err := ds.Subtable("age")
	require.NoError(t, err)
	assert.Equal(t, 4, global.Len())
	assert.Equal(t, []string{"age"}, global.Names())

	bySex, err := ds.Subtable("age", "sex")
	require.NoError(t, err)
	assert.Equal(t, 3, bySex.Len())

	// rows kept for different axes of the same variable may differ
	bySite, err := ds.Subtable("age", "site")
	require.NoError(t, err)
	ages, err := bySite.Floats("age")
	require.NoError(t, err)
	assert.Equal(t, []float64{31, 45, 60}, ages)

	both, err := ds.Subtable("age", "sex", "site")
	require.NoError(t, err)
	assert.Equal(t, 2, both.Len())

	// source untouched
	assert.Equal(t, 5, ds.Len())
}

func TestSubtableEmptyAndUnknown(t *testing.T) {
	ds, err := New(NewColumn("x", nil, nil), NewColumn("g", "a", "b"))
	require.NoError(t, err)

	empty, err := ds.Subtable("x", "g")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	_, err = ds.Subtable("nope")
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestWhereAndDistinct(t *testing.T) {
	ds := sample(t)

	values, err := ds.Distinct("site")
	require.NoError(t, err)
	assert.Equal(t, []Value{Number(1), Number(2)}, values)

	ones, err := ds.Where("site", Number(1))
	require.NoError(t, err)
	ages, err := ones.Floats("age")
	require.NoError(t, err)
	assert.Equal(t, []float64{31, 60}, ages)
}

func TestFloatsRejectsText(t *testing.T) {
	ds := sample(t)
	_, err := ds.Floats("sex")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput))
}

func TestValueOrderingAndJSON(t *testing.T) {
	assert.True(t, Bool(true).Less(Number(0)))
	assert.True(t, Number(2).Less(Number(10)))
	assert.True(t, Number(10).Less(String("1")))
	assert.False(t, String("b").Less(String("a")))

	var v Value
	require.NoError(t, json.Unmarshal([]byte(`12`), &v))
	assert.Equal(t, Number(12), v)
	require.NoError(t, json.Unmarshal([]byte(`null`), &v))
	assert.True(t, v.IsMissing())
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &v))

	out, err := json.Marshal([]Value{String("A"), Number(1.5), Bool(false), Missing()})
	require.NoError(t, err)
	assert.JSONEq(t, `["A",1.5,false,null]`, string(out))
}

func TestFingerprintTracksKinds(t *testing.T) {
	a, err := New(NewColumn("g", "1", "2"))
	require.NoError(t, err)
	b, err := New(NewColumn("g", 1, 2))
	require.NoError(t, err)
	c, err := New(NewColumn("g", "1", "2"))
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint(), c.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
