package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONRoundTrips(t *testing.T) {
	s := New("run-1", time.Unix(0, 0).UTC(), 100, 5, 7, []PatternCount{{Name: "aws_key", Count: 5}, {Name: "email", Count: 2}})

	var buf bytes.Buffer
	require.NoError(t, s.WriteJSON(&buf))

	var decoded Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, s.Tool, decoded.Tool)
	assert.Equal(t, uint64(100), decoded.LinesScanned)
	assert.Equal(t, uint64(5), decoded.LinesModified)
	assert.Len(t, decoded.ByPattern, 2)
}
