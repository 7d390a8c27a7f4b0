package cpufeature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBestPrefilterWidth(t *testing.T) {
	cases := []struct {
		set  Set
		want int
	}{
		{Set{AVX2: true, SSSE3: true, SSE2: true}, 32},
		{Set{SSSE3: true, SSE2: true}, 16},
		{Set{SSE2: true}, 16},
		{Set{}, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.set.BestPrefilterWidth())
	}
}

func TestCurrentIsStable(t *testing.T) {
	a := Current()
	b := Current()
	assert.Equal(t, a, b)
}
