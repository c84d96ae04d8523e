package log

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hust-tianbo/go_bitmap/log/rollwriter"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var defaultConfig = []OutputConfig{
	{
		Writer:    OutputConsole,
		Level:     "debug",
		Formatter: "console",
	},
}

// Levels zapcore level
var Levels = map[string]zapcore.Level{
	"":      zapcore.DebugLevel,
	"trace": zapcore.DebugLevel,
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"fatal": zapcore.FatalLevel,
}

var levelToZapLevel = map[Level]zapcore.Level{
	LevelTrace: zapcore.DebugLevel,
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
	LevelFatal: zapcore.FatalLevel,
}

var zapLevelToLevel = map[zapcore.Level]Level{
	zapcore.DebugLevel: LevelDebug,
	zapcore.InfoLevel:  LevelInfo,
	zapcore.WarnLevel:  LevelWarn,
	zapcore.ErrorLevel: LevelError,
	zapcore.FatalLevel: LevelFatal,
}

// NewZapLog 创建一个zap默认实现的logger, callerskip为2
func NewZapLog(c Config) Logger {
	return NewZapLogWithCallerSkip(c, 2)
}

// NewZapLogWithCallerSkip 创建一个zap默认实现的logger，任一输出端配置错误时返回nil
func NewZapLogWithCallerSkip(c Config, callerSkip int) Logger {

	cores := make([]zapcore.Core, 0, len(c))
	levels := make([]zap.AtomicLevel, 0, len(c))
	for _, o := range c {
		writer, ok := getWriter(o.Writer)
		if !ok {
			fmt.Fprintf(os.Stderr, "log writer core:%s no registered!\n", o.Writer)
			return nil
		}

		decoder := &Decoder{OutputConfig: &o}
		err := writer.Setup(o.Writer, decoder)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log writer setup core:%s fail:%v!\n", o.Writer, err)
			return nil
		}

		cores = append(cores, decoder.Core)
		levels = append(levels, decoder.ZapLevel)
	}

	logger := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCallerSkip(callerSkip),
		zap.AddCaller(),
	)

	return newZapLog(levels, logger)
}

func newConsoleCore(c *OutputConfig) (zapcore.Core, zap.AtomicLevel) {
	lvl := zap.NewAtomicLevelAt(Levels[c.Level])
	return zapcore.NewCore(
		newEncoder(c),
		zapcore.Lock(os.Stdout),
		lvl), lvl
}

func newFileCore(c *OutputConfig) (zapcore.Core, zap.AtomicLevel, error) {
	opts := []rollwriter.Option{
		rollwriter.WithMaxDay(c.WriteConfig.MaxDay),
		rollwriter.WithMaxHistory(c.WriteConfig.MaxHistory),
		rollwriter.WithCompress(c.WriteConfig.Compress),
		rollwriter.WithMaxSize(int64(c.WriteConfig.MaxSize)),
	}
	if c.WriteConfig.RollType == RollByTime {
		// 按时间滚动
		opts = append(opts, rollwriter.WithTimeFormat(c.WriteConfig.TimeSplit.Format()))
	}

	writer, err := rollwriter.NewRollWriter(c.WriteConfig.Filename, opts...)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("new roll writer %s: %w", c.WriteConfig.Filename, err)
	}

	// 写入模式
	var ws zapcore.WriteSyncer
	if c.WriteConfig.WriteMode == WriteSync {
		ws = zapcore.AddSync(writer)
	} else {
		dropLog := c.WriteConfig.WriteMode == WriteFast
		ws = rollwriter.NewAsyncRollWriter(writer,
			rollwriter.WithCanDropLog(dropLog),
		)
	}

	// 日志级别
	lvl := zap.NewAtomicLevelAt(Levels[c.Level])

	return zapcore.NewCore(
		newEncoder(c),
		ws, lvl,
	), lvl, nil
}

func newEncoder(cfg *OutputConfig) zapcore.Encoder {
	zapCfg := zapcore.EncoderConfig{
		MessageKey:     GetLogEncoderKey("M", cfg.FormatConfig.MessageKey),
		LevelKey:       GetLogEncoderKey("L", cfg.FormatConfig.LevelKey),
		TimeKey:        GetLogEncoderKey("T", cfg.FormatConfig.TimeKey),
		NameKey:        GetLogEncoderKey("N", cfg.FormatConfig.NameKey),
		CallerKey:      GetLogEncoderKey("C", cfg.FormatConfig.CallerKey),
		StacktraceKey:  GetLogEncoderKey("S", cfg.FormatConfig.StacktraceKey),
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     NewTimeEncoder(cfg.FormatConfig.TimeFmt),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	switch cfg.Formatter {
	case "json":
		return zapcore.NewJSONEncoder(zapCfg)
	default:
		return zapcore.NewConsoleEncoder(zapCfg)
	}
}

func GetLogEncoderKey(defaultKey, key string) string {
	if key == "" {
		return defaultKey
	}
	return key
}

func NewTimeEncoder(format string) zapcore.TimeEncoder {
	switch format {
	case "":
		return func(time time.Time, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendByteString(DefaultTimeFormat(time))
		}
	case "seconds": // 序列化成秒
		return zapcore.EpochTimeEncoder
	case "milliseconds": // 序列号成毫秒
		return zapcore.EpochMillisTimeEncoder
	case "nanoseconds":
		return zapcore.EpochNanosTimeEncoder
	default:
		// 自定义的时间格式
		return func(t time.Time, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString(t.Format(format))
		}
	}
}

// DefaultTimeFormat 格式化为 2006-01-02 15:04:05.000
func DefaultTimeFormat(t time.Time) []byte {
	return t.Local().AppendFormat(make([]byte, 0, 23), "2006-01-02 15:04:05.000")
}

// zapLog 基于zap SugaredLogger的Logger实现，级别判断交给zap
type zapLog struct {
	levels []zap.AtomicLevel
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

func newZapLog(levels []zap.AtomicLevel, logger *zap.Logger) *zapLog {
	return &zapLog{levels: levels, logger: logger, sugar: logger.Sugar()}
}

// WithFields 设置一些业务自定义数据到每条log里，fields 必须kv成对出现
func (l *zapLog) WithFields(fields ...string) Logger {
	zapfields := make([]zap.Field, len(fields)/2)
	for index := range zapfields {
		zapfields[index] = zap.String(fields[2*index], fields[2*index+1])
	}

	// 多包一层 wrapper，使返回的 Logger 与包级函数调用栈深度一致
	return &ZapLogWrapper{l: newZapLog(l.levels, l.logger.With(zapfields...))}
}

// trace 没有对应的zap级别，按debug输出
func (l *zapLog) Trace(args ...interface{})                 { l.sugar.Debug(args...) }
func (l *zapLog) Tracef(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *zapLog) Debug(args ...interface{})                 { l.sugar.Debug(args...) }
func (l *zapLog) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *zapLog) Info(args ...interface{})                  { l.sugar.Info(args...) }
func (l *zapLog) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *zapLog) Warn(args ...interface{})                  { l.sugar.Warn(args...) }
func (l *zapLog) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *zapLog) Error(args ...interface{})                 { l.sugar.Error(args...) }
func (l *zapLog) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Fatal 输出后 os.Exit(1)
func (l *zapLog) Fatal(args ...interface{})                 { l.sugar.Fatal(args...) }
func (l *zapLog) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

// Sync 刷新所有输出端的缓冲，进程退出前调用
func (l *zapLog) Sync() error {
	return l.logger.Sync()
}

// 输出端下标，非法时返回 -1
func (l *zapLog) outputIndex(output string) int {
	i, err := strconv.Atoi(output)
	if err != nil || i < 0 || i >= len(l.levels) {
		return -1
	}
	return i
}

// SetLevel 设置第 output 个输出端的日志级别
func (l *zapLog) SetLevel(output string, level Level) {
	if i := l.outputIndex(output); i >= 0 {
		l.levels[i].SetLevel(levelToZapLevel[level])
	}
}

// GetLevel 非法下标返回 LevelDebug
func (l *zapLog) GetLevel(output string) Level {
	if i := l.outputIndex(output); i >= 0 {
		return zapLevelToLevel[l.levels[i].Level()]
	}
	return LevelDebug
}

// ZapLogWrapper 多包一层调用栈，使 WithFields 返回的logger与包级函数的 caller skip 一致
type ZapLogWrapper struct {
	l *zapLog
}

// GetLogger 返回内部的zapLog
func (z *ZapLogWrapper) GetLogger() Logger {
	return z.l
}

func (z *ZapLogWrapper) Trace(args ...interface{})                 { z.l.Trace(args...) }
func (z *ZapLogWrapper) Tracef(format string, args ...interface{}) { z.l.Tracef(format, args...) }
func (z *ZapLogWrapper) Debug(args ...interface{})                 { z.l.Debug(args...) }
func (z *ZapLogWrapper) Debugf(format string, args ...interface{}) { z.l.Debugf(format, args...) }
func (z *ZapLogWrapper) Info(args ...interface{})                  { z.l.Info(args...) }
func (z *ZapLogWrapper) Infof(format string, args ...interface{})  { z.l.Infof(format, args...) }
func (z *ZapLogWrapper) Warn(args ...interface{})                  { z.l.Warn(args...) }
func (z *ZapLogWrapper) Warnf(format string, args ...interface{})  { z.l.Warnf(format, args...) }
func (z *ZapLogWrapper) Error(args ...interface{})                 { z.l.Error(args...) }
func (z *ZapLogWrapper) Errorf(format string, args ...interface{}) { z.l.Errorf(format, args...) }
func (z *ZapLogWrapper) Fatal(args ...interface{})                 { z.l.Fatal(args...) }
func (z *ZapLogWrapper) Fatalf(format string, args ...interface{}) { z.l.Fatalf(format, args...) }

// Sync calls the zap logger's Sync method, flushing any buffered log entries.
func (z *ZapLogWrapper) Sync() error {
	return z.l.Sync()
}

// SetLevel 设置输出端日志级别
func (z *ZapLogWrapper) SetLevel(output string, level Level) {
	z.l.SetLevel(output, level)
}

// GetLevel 获取输出端日志级别
func (z *ZapLogWrapper) GetLevel(output string) Level {
	return z.l.GetLevel(output)
}

// WithFields 设置一些业务自定义数据到每条log里
func (z *ZapLogWrapper) WithFields(fields ...string) Logger {
	return z.l.WithFields(fields...)
}
