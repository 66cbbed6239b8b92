/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils_test.go
Description: Tests for log management utilities. Covers size-based rotation
with and without compression, retention cleanup on logger close, log file
statistics, and the log analyzer's event counting.
*/

package logging_test

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kleascm/akaylee-learner/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLogManagerRotation tests that oversized files are rotated and small
// ones left alone
func TestLogManagerRotation(t *testing.T) {
	dir := t.TempDir()
	big := writeLog(t, dir, "akaylee-learner_big.log", strings.Repeat("x", 128))
	small := writeLog(t, dir, "akaylee-learner_small.log", "ok")

	lm := logging.NewLogManager(dir, 10, 64, false)
	require.NoError(t, lm.RotateLogs())

	_, err := os.Stat(big)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(small)
	assert.NoError(t, err)

	rotated, err := filepath.Glob(filepath.Join(dir, "akaylee-learner_big.log.*"))
	require.NoError(t, err)
	require.Len(t, rotated, 1)
}

// TestLogManagerCompression tests gzip compression of rotated files
func TestLogManagerCompression(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "akaylee-learner_s1.log", strings.Repeat("Hypothesis built\n", 16))

	lm := logging.NewLogManager(dir, 10, 64, true)
	require.NoError(t, lm.RotateLogs())

	compressed, err := filepath.Glob(filepath.Join(dir, "*.gz"))
	require.NoError(t, err)
	require.Len(t, compressed, 1)

	f, err := os.Open(compressed[0])
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hypothesis built")
}

// TestLogManagerCleanup tests the retention policy removing oldest files first
func TestLogManagerCleanup(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	names := []string{
		"akaylee-learner_1.log",
		"akaylee-learner_2.log",
		"akaylee-learner_3.log",
		"akaylee-learner_4.log",
	}
	for i, name := range names {
		path := writeLog(t, dir, name, "entry")
		stamp := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, stamp, stamp))
	}

	lm := logging.NewLogManager(dir, 2, 1024, false)
	require.NoError(t, lm.CleanupOldLogs())

	remaining, err := filepath.Glob(filepath.Join(dir, "akaylee-learner_*.log"))
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Contains(t, remaining, filepath.Join(dir, "akaylee-learner_3.log"))
	assert.Contains(t, remaining, filepath.Join(dir, "akaylee-learner_4.log"))
}

// TestLogManagerStats tests log file statistics
func TestLogManagerStats(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "akaylee-learner_a.log", "12345")
	writeLog(t, dir, "akaylee-learner_b.log.gz", "123")

	lm := logging.NewLogManager(dir, 10, 1024, false)
	stats, err := lm.GetLogStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, int64(8), stats.TotalSize)
	assert.Equal(t, 1, stats.CompressedFiles)
	assert.Equal(t, 1, stats.UncompressedFiles)
}

// TestLoggerCloseAppliesRetention tests that closing a logger prunes old
// session logs per MaxFiles
func TestLoggerCloseAppliesRetention(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"akaylee-learner_old1.log", "akaylee-learner_old2.log", "akaylee-learner_old3.log"} {
		path := writeLog(t, dir, name, "stale")
		stamp := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, stamp, stamp))
	}

	cfg := validConfig(dir)
	cfg.MaxFiles = 2
	logger, err := logging.NewLogger(cfg)
	require.NoError(t, err)
	logger.GetLogger().Info("session open")
	require.NoError(t, logger.Close())

	remaining, err := filepath.Glob(filepath.Join(dir, "akaylee-learner_*.log*"))
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

// TestLogAnalyzer tests event counting across session logs
func TestLogAnalyzer(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "akaylee-learner_session.log", strings.Join([]string{
		`level=INFO msg="Hypothesis built" states=3`,
		`level=INFO msg="Hypothesis built" states=4`,
		`level=INFO msg="Counterexample received" word=aab`,
		`level=INFO msg="Counter limit raised" new_limit=2`,
		`level=DEBUG msg="Row promoted to short prefix"`,
		`level=DEBUG msg="Suffixes added" added=1`,
		`level=ERROR msg="equivalence oracle failed"`,
	}, "\n") + "\n")

	analyzer := logging.NewLogAnalyzer(dir)
	analysis, err := analyzer.AnalyzeLogs()
	require.NoError(t, err)

	assert.Equal(t, 1, analysis.LogFiles)
	assert.Equal(t, int64(7), analysis.TotalLines)
	assert.Equal(t, int64(2), analysis.HypothesisCount)
	assert.Equal(t, int64(1), analysis.CounterexampleCount)
	assert.Equal(t, int64(1), analysis.LimitRaiseCount)
	assert.Equal(t, int64(1), analysis.PromotionCount)
	assert.Equal(t, int64(1), analysis.SuffixCount)
	assert.Equal(t, int64(4), analysis.InfoCount)
	assert.Equal(t, int64(1), analysis.ErrorCount)
	assert.Contains(t, analysis.GetLogSummary(), "Hypotheses: 2")
}
