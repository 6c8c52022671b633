package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilter(t *testing.T) {
	f := NewFilter()

	assert.Empty(t, f.Types())
	assert.Empty(t, f.Subtypes())
	assert.Zero(t, f.Limit())
	assert.Zero(t, f.Offset())
}

func TestFilter_WithType(t *testing.T) {
	f := NewFilter().WithType(TypeArchitecture)
	assert.Equal(t, []Type{TypeArchitecture}, f.Types())

	chained := f.WithType(TypeDevelopment)
	assert.Equal(t, []Type{TypeArchitecture, TypeDevelopment}, chained.Types())
}

func TestFilter_WithSubtype(t *testing.T) {
	f := NewFilter().WithSubtype(SubtypePhysical)
	assert.Equal(t, []Subtype{SubtypePhysical}, f.Subtypes())

	chained := f.WithSubtype(SubtypeDatabaseSchema)
	assert.Equal(t, []Subtype{SubtypePhysical, SubtypeDatabaseSchema}, chained.Subtypes())
}

func TestFilter_WithLimitAndOffset(t *testing.T) {
	f := NewFilter().WithLimit(50).WithOffset(10)

	assert.Equal(t, 50, f.Limit())
	assert.Equal(t, 10, f.Offset())
}

func TestFilter_Immutability(t *testing.T) {
	base := NewFilter().
		WithType(TypeArchitecture).
		WithSubtype(SubtypePhysical).
		WithLimit(10).
		WithOffset(5)

	derived := base.
		WithType(TypeDevelopment).
		WithSubtype(SubtypeDatabaseSchema).
		WithLimit(20).
		WithOffset(15)

	assert.Len(t, base.Types(), 1, "base types must not grow")
	assert.Len(t, base.Subtypes(), 1, "base subtypes must not grow")
	assert.Equal(t, 10, base.Limit())
	assert.Equal(t, 5, base.Offset())

	assert.Len(t, derived.Types(), 2)
	assert.Len(t, derived.Subtypes(), 2)
	assert.Equal(t, 20, derived.Limit())
	assert.Equal(t, 15, derived.Offset())
}

func TestFilter_CombinedBuilder(t *testing.T) {
	f := NewFilter().
		WithType(TypeDevelopment).
		WithSubtype(SubtypeSnippet).
		WithLimit(25).
		WithOffset(50)

	assert.Equal(t, []Type{TypeDevelopment}, f.Types())
	assert.Equal(t, []Subtype{SubtypeSnippet}, f.Subtypes())
	assert.Equal(t, 25, f.Limit())
	assert.Equal(t, 50, f.Offset())
}

func TestFilter_FirstType(t *testing.T) {
	assert.Nil(t, NewFilter().FirstType())

	f := NewFilter().WithType(TypeHistory).WithType(TypeUsage)
	ft := f.FirstType()
	require.NotNil(t, ft)
	assert.Equal(t, TypeHistory, *ft)
}

func TestFilter_FirstSubtype(t *testing.T) {
	assert.Nil(t, NewFilter().FirstSubtype())

	f := NewFilter().WithSubtype(SubtypeCookbook).WithSubtype(SubtypeAPIDocs)
	fs := f.FirstSubtype()
	require.NotNil(t, fs)
	assert.Equal(t, SubtypeCookbook, *fs)
}

func TestFilter_PreservesOtherFields(t *testing.T) {
	f := NewFilter().
		WithType(TypeArchitecture).
		WithSubtype(SubtypePhysical).
		WithLimit(10).
		WithOffset(5)

	withType := f.WithType(TypeDevelopment)
	assert.Equal(t, 10, withType.Limit())
	assert.Equal(t, 5, withType.Offset())
	assert.Len(t, withType.Subtypes(), 1)

	withSubtype := f.WithSubtype(SubtypeDatabaseSchema)
	assert.Len(t, withSubtype.Types(), 1)
	assert.Equal(t, 10, withSubtype.Limit())
}
