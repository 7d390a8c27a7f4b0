package patternset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLiteralSkipsLeadingAnchor(t *testing.T) {
	assert.Equal(t, "hello", string(extractLiteral("^hello")))
}

func TestExtractLiteralStopsAtMetacharacter(t *testing.T) {
	assert.Equal(t, "ghp_", string(extractLiteral(`ghp_[A-Za-z0-9]{36}`)))
}

func TestExtractLiteralBelowMinLenYieldsNil(t *testing.T) {
	assert.Nil(t, extractLiteral("^ab"))
}

func TestExtractLiteralHandlesWhitelistedEscapes(t *testing.T) {
	assert.Equal(t, "a.b-c", string(extractLiteral(`a\.b\-c[0-9]`)))
}
