/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer_test.go
Description: Tests for the metrics writer. Verifies directory creation, file
naming, and JSON round-tripping of session results.
*/

package utils_test

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/kleascm/akaylee-learner/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWriteMetricsResult tests writing a session result
func TestWriteMetricsResult(t *testing.T) {
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(old)

	result := map[string]interface{}{
		"rounds": 3,
		"states": 4,
	}
	path, err := utils.WriteMetricsResult("session", "1.0.0", result)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".json"))
	assert.Contains(t, path, "session")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(3), decoded["rounds"])
	assert.Equal(t, float64(4), decoded["states"])
}
