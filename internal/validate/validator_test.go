package validate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gmggroup/omf-go/internal/model"
)


func TestFiniteRejectsNaN(t *testing.T) {
	v := New(0, nil)
	v.Enter("Test").Finite(math.NaN(), "value")
	problems := v.Finish()
	assert.Len(t, problems, 1)
	assert.Equal(t, NotFinite, problems[0].Reason)
	assert.True(t, problems[0].IsError())
}

func TestUnitVectorAcceptsNormalized(t *testing.T) {
	v := New(0, nil)
	v.Enter("Test").UnitVector([3]float64{1, 0, 0}, "u")
	assert.Empty(t, v.Finish())
}

func TestUnitVectorRejectsNonUnit(t *testing.T) {
	v := New(0, nil)
	v.Enter("Test").UnitVector([3]float64{2, 0, 0}, "u")
	problems := v.Finish()
	assert.Len(t, problems, 1)
	assert.Equal(t, NotUnitVector, problems[0].Reason)
}

func TestBudgetOverflowProducesMoreErrors(t *testing.T) {
	v := New(1, nil)
	tv := v.Enter("Test")
	tv.Finite(math.NaN(), "a")
	tv.Finite(math.NaN(), "b")
	tv.Finite(math.NaN(), "c")
	problems := v.Finish()
	assert.Len(t, problems, 2) // one real problem + one MoreErrors summary
	assert.Equal(t, MoreErrors, problems[1].Reason)
	assert.Equal(t, uint32(2), problems[1].ExtraCount)
}

func TestOctreeRequiresPowerOfTwoCounts(t *testing.T) {
	v := New(0, nil)
	mode := model.Octree
	v.Enter("Test").SubblockModeAndCount(&mode, [3]uint32{3, 4, 4})
	problems := v.Finish()
	assert.Len(t, problems, 1)
	assert.Equal(t, OctreeNotPowerOfTwo, problems[0].Reason)
}

func TestZipMemberMissing(t *testing.T) {
	v := New(0, map[string]bool{"1.parquet": true})
	v.Enter("Test").ZipMemberMissing("2.parquet", "values")
	problems := v.Finish()
	assert.Len(t, problems, 1)
	assert.Equal(t, ZipMemberMissing, problems[0].Reason)
}
