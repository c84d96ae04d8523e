package rollwriter

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"
)

// ErrLogFull 极速模式下队列满时返回
var ErrLogFull = errors.New("log is full, drop")

type AsyncOptions struct {
	LogQueueSize      int
	WriteLogSize      int  // 刷盘的大小，单位字节
	WriterLogInterval int  // 刷盘的间隔时间，单位ms
	CanDropLog        bool // 是否丢弃日志
}

type AsyncOption func(*AsyncOptions)

func WithLogQueueSize(n int) AsyncOption {
	return func(opts *AsyncOptions) {
		opts.LogQueueSize = n
	}
}

func WithWriteLogSize(size int) AsyncOption {
	return func(opts *AsyncOptions) {
		opts.WriteLogSize = size
	}
}

func WithWriteLogInterval(interval int) AsyncOption {
	return func(opts *AsyncOptions) {
		opts.WriterLogInterval = interval
	}
}

func WithCanDropLog(drop bool) AsyncOption {
	return func(opts *AsyncOptions) {
		opts.CanDropLog = drop
	}
}

type AsyncRollWriter struct {
	logger io.Writer
	opts   *AsyncOptions

	logChan  chan []byte
	syncChan chan chan struct{}
	closeCh  chan struct{}
	once     sync.Once
	done     chan struct{}
}

// NewAsyncRollWriter 封装一个异步批量写入的writer
func NewAsyncRollWriter(logger io.Writer, opt ...AsyncOption) *AsyncRollWriter {
	opts := &AsyncOptions{
		LogQueueSize:      1000,
		WriteLogSize:      2 * 1024,
		WriterLogInterval: 100,
	}

	for _, o := range opt {
		o(opts)
	}

	w := &AsyncRollWriter{
		logger:   logger,
		opts:     opts,
		logChan:  make(chan []byte, opts.LogQueueSize),
		syncChan: make(chan chan struct{}),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}

	go w.batchWriteLog()

	return w
}

func (w *AsyncRollWriter) Write(data []byte) (int, error) {
	log := make([]byte, len(data))
	copy(log, data)

	if w.opts.CanDropLog {
		select {
		case w.logChan <- log:
		default:
			return 0, ErrLogFull
		}
	} else {
		select {
		case w.logChan <- log:
		case <-w.done:
			return 0, io.ErrClosedPipe
		}
	}

	return len(data), nil
}

// Sync 把队列和缓冲中的日志全部写入下层writer后返回
func (w *AsyncRollWriter) Sync() error {
	ack := make(chan struct{})
	select {
	case w.syncChan <- ack:
		<-ack
		return nil
	case <-w.done:
		return nil
	}
}

// Close 刷新剩余日志并停止后台协程，下层writer可关闭时一并关闭
func (w *AsyncRollWriter) Close() error {
	w.once.Do(func() {
		close(w.closeCh)
	})
	<-w.done

	if c, ok := w.logger.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (w *AsyncRollWriter) batchWriteLog() {
	defer close(w.done)

	buffer := bytes.NewBuffer(make([]byte, 0, w.opts.WriteLogSize*2))
	ticker := time.NewTicker(time.Millisecond * time.Duration(w.opts.WriterLogInterval))
	defer ticker.Stop()

	flush := func() {
		if buffer.Len() > 0 {
			_, _ = w.logger.Write(buffer.Bytes())
			buffer.Reset()
		}
	}
	// 把已入队的日志全部搬到buffer
	drain := func() {
		for {
			select {
			case data := <-w.logChan:
				buffer.Write(data)
				if buffer.Len() >= w.opts.WriteLogSize {
					flush()
				}
			default:
				return
			}
		}
	}

	for {
		select {
		case <-ticker.C:
			flush()
		case data := <-w.logChan:
			buffer.Write(data)
			if buffer.Len() >= w.opts.WriteLogSize {
				flush()
			}
		case ack := <-w.syncChan:
			drain()
			flush()
			close(ack)
		case <-w.closeCh:
			drain()
			flush()
			return
		}
	}
}
