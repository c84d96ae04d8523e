package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "", LevelNil.String())
}

func TestTimeSplitFormat(t *testing.T) {
	assert.Equal(t, ".%Y%m%d%H", TimeSplit(Hour).Format())
	assert.Equal(t, ".%Y%m%d", TimeSplit(Day).Format())
	assert.Equal(t, ".%Y%m%d", TimeSplit("").Format())
}

func TestFactorySetupEmpty(t *testing.T) {
	assert.Error(t, DefaultLogFactory.Setup("empty", nil))
	assert.Error(t, DefaultLogFactory.Setup("empty", &ConfigDecoder{}))
	assert.Nil(t, Get("empty"))
}

func TestFactorySetupUnknownWriter(t *testing.T) {
	err := DefaultLogFactory.Setup("bad", &ConfigDecoder{Config: Config{{Writer: "kafka"}}})
	assert.Error(t, err)
}

func TestFactorySetupFile(t *testing.T) {
	dir := t.TempDir()
	conf := Config{{
		Writer:    OutputFile,
		Level:     "info",
		Formatter: "json",
		WriteConfig: WriteConfig{
			LogPath:   dir,
			Filename:  "bitscan.log",
			WriteMode: WriteSync,
		},
	}}

	old := DefaultLogger
	defer SetLogger(old)

	require.NoError(t, DefaultLogFactory.Setup("default", &ConfigDecoder{Config: conf}))
	assert.Same(t, Get("default"), DefaultLogger)

	Debug("hidden")
	Infof("scan %d ranges", 3)
	DefaultLogger.WithFields("file", "a.bin").Warn("fielded")
	require.NoError(t, Sync())

	data, err := os.ReadFile(filepath.Join(dir, "bitscan.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "scan 3 ranges")
	assert.Contains(t, string(data), `"file":"a.bin"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestLoggerLevel(t *testing.T) {
	l := NewZapLog(Config{{Writer: OutputConsole, Level: "warn"}, {Writer: OutputConsole, Level: "info"}})
	require.NotNil(t, l)

	assert.Equal(t, LevelWarn, l.GetLevel("0"))
	assert.Equal(t, LevelInfo, l.GetLevel("1"))

	l.SetLevel("1", LevelError)
	assert.Equal(t, LevelError, l.GetLevel("1"))

	// 非法下标不生效
	l.SetLevel("9", LevelFatal)
	assert.Equal(t, LevelDebug, l.GetLevel("9"))
	assert.Equal(t, LevelDebug, l.GetLevel("x"))
}

func TestNormalizeFileConfig(t *testing.T) {
	c := WriteConfig{LogPath: "/tmp/logs"}
	normalizeFileConfig(&c)
	assert.Equal(t, filepath.Join("/tmp/logs", defaultFilename), c.Filename)
	assert.Equal(t, RollBySize, c.RollType)
	assert.Equal(t, WriteFast, c.WriteMode)

	c = WriteConfig{Filename: "a.log", RollType: RollByTime, WriteMode: WriteSync}
	normalizeFileConfig(&c)
	assert.Equal(t, "a.log", c.Filename)
	assert.Equal(t, RollByTime, c.RollType)
	assert.Equal(t, WriteSync, c.WriteMode)
}

func TestCallerSkipOf(t *testing.T) {
	assert.Equal(t, defaultCallerSkip, callerSkipOf(Config{{}}))
	assert.Equal(t, 3, callerSkipOf(Config{{CallerSkip: 1}, {}, {CallerSkip: 3}}))
}
