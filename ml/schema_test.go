package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCompatible(t *testing.T) {
	schema := FeatureSchema()
	require.NoError(t, schema.Compatible(FeatureSchema()))

	other := FeatureSchema()
	other.Version = "bank-features/v0"
	assert.ErrorContains(t, schema.Compatible(other), "version mismatch")

	other = FeatureSchema()
	other.Features = other.Features[:len(other.Features)-1]
	assert.ErrorContains(t, schema.Compatible(other), "field count mismatch")

	other = FeatureSchema()
	other.Features[15], other.Features[16] = other.Features[16], other.Features[15]
	assert.ErrorContains(t, schema.Compatible(other), "field 15 mismatch")

	other = FeatureSchema()
	other.Features[1].Kind = KindNumeric
	assert.Error(t, schema.Compatible(other))
}

func TestSchemaValidate(t *testing.T) {
	require.NoError(t, FeatureSchema().validate())

	assert.Error(t, Schema{Features: FeatureSchema().Features}.validate())
	assert.Error(t, Schema{Version: SchemaVersion}.validate())
	assert.Error(t, Schema{Version: SchemaVersion, Features: []FieldSpec{{Name: "age", Kind: "ordinal"}}}.validate())
	assert.Error(t, Schema{Version: SchemaVersion, Features: []FieldSpec{
		{Name: "age", Kind: KindNumeric},
		{Name: "age", Kind: KindNumeric},
	}}.validate())
}

func TestSchemaField(t *testing.T) {
	spec, ok := FeatureSchema().Field("poutcome")
	require.True(t, ok)
	assert.Equal(t, KindCategorical, spec.Kind)

	_, ok = FeatureSchema().Field("month")
	assert.False(t, ok)
}
