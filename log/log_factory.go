package log

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func init() {
	RegisterWriter(OutputConsole, DefaultConsoleWriterFactory)
	RegisterWriter(OutputFile, DefaultFileWriterFactory)
	DefaultLogger = NewZapLog(defaultConfig)
}

const (
	defaultCallerSkip = 2
	defaultFilename   = "bitscan.log"
)

var (
	mu      sync.RWMutex
	writers = make(map[string]FactoryInterface)
	logs    = make(map[string]Logger)

	DefaultLogFactory           = &Factory{}
	DefaultConsoleWriterFactory = &ConsoleWriterFactory{}
	DefaultFileWriterFactory    = &FileWriterFactory{}
)

// FactoryInterface 按名字和配置创建logger或输出端
type FactoryInterface interface {
	Setup(name string, configDec DecodeInterface) error
}

// DecodeInterface 把配置解析到传入的指针
type DecodeInterface interface {
	Decode(interface{}) error
}

// Register 注册具名logger
func Register(name string, logger Logger) {
	mu.Lock()
	defer mu.Unlock()
	logs[name] = logger
}

// Get 获取具名logger，未注册返回nil
func Get(name string) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logs[name]
}

// RegisterWriter 注册输出端工厂，writer 配置项按名字查找
func RegisterWriter(name string, writer FactoryInterface) {
	mu.Lock()
	defer mu.Unlock()
	writers[name] = writer
}

func getWriter(name string) (FactoryInterface, bool) {
	mu.RLock()
	defer mu.RUnlock()
	w, ok := writers[name]
	return w, ok
}

type Factory struct{}

// Setup 按配置创建logger并注册，name 为 default 时同时替换默认logger
func (f *Factory) Setup(name string, configDec DecodeInterface) error {
	if configDec == nil {
		return errors.New("log config decoder empty")
	}

	var conf Config
	if err := configDec.Decode(&conf); err != nil {
		return err
	}
	if len(conf) == 0 {
		return errors.New("log config output empty")
	}

	logger := NewZapLogWithCallerSkip(conf, callerSkipOf(conf))
	if logger == nil {
		return fmt.Errorf("new logger %s fail", name)
	}

	Register(name, logger)
	if name == "default" {
		SetLogger(logger)
	}
	return nil
}

// 取最后一个非零的 caller_skip
func callerSkipOf(conf Config) int {
	skip := defaultCallerSkip
	for _, o := range conf {
		if o.CallerSkip != 0 {
			skip = o.CallerSkip
		}
	}
	return skip
}

// ConfigDecoder 把已经解析好的 Config 交给 Factory
type ConfigDecoder struct {
	Config Config
}

func (d *ConfigDecoder) Decode(conf interface{}) error {
	output, ok := conf.(*Config)
	if !ok {
		return fmt.Errorf("decoder config type:%T invalid, not *Config", conf)
	}

	*output = d.Config
	return nil
}

// Decoder 在 logger 与输出端工厂之间传递单个输出端的配置和结果
type Decoder struct {
	OutputConfig *OutputConfig
	Core         zapcore.Core
	ZapLevel     zap.AtomicLevel
}

func (d *Decoder) Decode(conf interface{}) error {
	output, ok := conf.(**OutputConfig)
	if !ok {
		return fmt.Errorf("decoder config type:%T invalid, not **OutputConfig", conf)
	}

	*output = d.OutputConfig
	return nil
}

// 输出端工厂共用的解析
func decodeOutput(kind string, configDec DecodeInterface) (*Decoder, *OutputConfig, error) {
	if configDec == nil {
		return nil, nil, fmt.Errorf("%s writer decoder empty", kind)
	}
	decoder, ok := configDec.(*Decoder)
	if !ok {
		return nil, nil, fmt.Errorf("%s writer log decoder type invalid", kind)
	}

	var conf *OutputConfig
	if err := decoder.Decode(&conf); err != nil {
		return nil, nil, err
	}
	if conf == nil {
		return nil, nil, fmt.Errorf("%s writer output config empty", kind)
	}
	return decoder, conf, nil
}

// ConsoleWriterFactory 标准输出
type ConsoleWriterFactory struct{}

func (f *ConsoleWriterFactory) Setup(name string, configDec DecodeInterface) error {
	decoder, conf, err := decodeOutput(OutputConsole, configDec)
	if err != nil {
		return err
	}

	decoder.Core, decoder.ZapLevel = newConsoleCore(conf)
	return nil
}

// FileWriterFactory 滚动文件输出
type FileWriterFactory struct{}

func (f *FileWriterFactory) Setup(name string, configDec DecodeInterface) error {
	decoder, conf, err := decodeOutput(OutputFile, configDec)
	if err != nil {
		return err
	}

	normalizeFileConfig(&conf.WriteConfig)
	core, lvl, err := newFileCore(conf)
	if err != nil {
		return err
	}
	decoder.Core, decoder.ZapLevel = core, lvl
	return nil
}

// 补全文件输出的默认值，Filename 拼上 LogPath
func normalizeFileConfig(c *WriteConfig) {
	if c.Filename == "" {
		c.Filename = defaultFilename
	}
	if c.LogPath != "" {
		c.Filename = filepath.Join(c.LogPath, c.Filename)
	}
	if c.RollType == "" {
		c.RollType = RollBySize
	}
	if c.WriteMode == 0 {
		c.WriteMode = WriteFast // 默认极速写模式，日志满丢弃，防止阻塞
	}
}
