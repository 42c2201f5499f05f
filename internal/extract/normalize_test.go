package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBareSequenceUnchanged(t *testing.T) {
	records, err := Normalize(`[{"first_name":"A","last_name":"B"},{"first_name":"C","last_name":"D"}]`)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].(map[string]any)["first_name"])
	assert.Equal(t, "D", records[1].(map[string]any)["last_name"])

	// value-level idempotence
	assert.Equal(t, records, NormalizeShape(records))
}

func TestNormalizeWrapperEquivalence(t *testing.T) {
	want, err := Normalize(`[{"first_name":"A","last_name":"B"}]`)
	require.NoError(t, err)

	for _, wrapped := range []string{
		`{"persons":[{"first_name":"A","last_name":"B"}]}`,
		`{"people":[{"first_name":"A","last_name":"B"}]}`,
		`{"data":[{"first_name":"A","last_name":"B"}]}`,
	} {
		got, err := Normalize(wrapped)
		require.NoError(t, err, "input: %s", wrapped)
		assert.Equal(t, want, got, "input: %s", wrapped)
	}
}

func TestNormalizeWrapperPriority(t *testing.T) {
	// "persons" wins over "data" when both hold sequences.
	records, err := Normalize(`{"data":[{"first_name":"X","last_name":"Y"}],"persons":[{"first_name":"A","last_name":"B"}]}`)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].(map[string]any)["first_name"])
}

func TestNormalizeWrapperKeyNotSequence(t *testing.T) {
	// A wrapper key whose value is not a sequence does not unwrap; the
	// object is promoted as a single record instead.
	records, err := Normalize(`{"persons":"none","first_name":"A","last_name":"B"}`)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].(map[string]any)["first_name"])
}

func TestNormalizeSingleObjectPromotion(t *testing.T) {
	records, err := Normalize(`{"first_name":"A","last_name":"B"}`)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "B", records[0].(map[string]any)["last_name"])
}

func TestNormalizeFenceStripping(t *testing.T) {
	records, err := Normalize("```json\n{\"first_name\":\"A\",\"last_name\":\"B\"}\n```")
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0].(map[string]any)
	assert.Equal(t, "A", rec["first_name"])
	assert.Equal(t, "B", rec["last_name"])
}

func TestNormalizeFenceWithoutLanguageTag(t *testing.T) {
	records, err := Normalize("Here you go:\n```\n[{\"first_name\":\"A\",\"last_name\":\"B\"}]\n```\nAnything else?")
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestNormalizeEmbeddedInProse(t *testing.T) {
	records, err := Normalize(`The extracted record is {"first_name":"A","last_name":"B"} as requested.`)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].(map[string]any)["first_name"])
}

func TestNormalizeArrayEmbeddedInProse(t *testing.T) {
	records, err := Normalize(`Sure: [{"first_name":"A","last_name":"B"}] - done.`)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestNormalizeUnparsableCarriesRawText(t *testing.T) {
	raw := "Sorry, I cannot help with that."
	records, err := Normalize(raw)
	require.Error(t, err)
	assert.Nil(t, records)

	var ue *UnparsableResponseError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, raw, ue.RawResponse)
}

func TestNormalizeScalarIsUnparsable(t *testing.T) {
	// A bare JSON string parses but is not structured data.
	_, err := Normalize(`"just a string"`)
	var ue *UnparsableResponseError
	require.True(t, errors.As(err, &ue))
}

func TestNormalizeEmptySequence(t *testing.T) {
	records, err := Normalize(`[]`)
	require.NoError(t, err)
	assert.Empty(t, records)
}
