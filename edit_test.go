package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClicks(t *testing.T) {
	points, err := parseClicks([]string{"10,20", " 3 , 4 "})
	require.NoError(t, err)
	assert.Equal(t, []pixel{{10, 20}, {3, 4}}, points)

	for _, bad := range []string{"10", "a,b", "-1,2", "1,"} {
		_, err := parseClicks([]string{bad})
		assert.Error(t, err, bad)
	}

	_, err = parseClicks(nil)
	assert.Error(t, err)
}
