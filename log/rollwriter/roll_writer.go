// Package rollwriter 按大小或时间滚动的日志文件writer
package rollwriter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/lestrrat-go/strftime"
)

var _ io.WriteCloser = (*RollWriter)(nil)

const (
	reopenFileTime = 10 // 10s为单位
	compressSuffix = ".gz"
	backupTimeFmt  = "bk-20060102-150405.00000"
)

type Options struct {
	MaxSize    int64  // 日志文件最大大小
	MaxHistory int    // 保留的最大文件数
	MaxDay     int    // 日志最大保留时间
	IfCompress bool   // 日志文件是否压缩
	TimeFormat string // 按时间分割文件的时间格式
}

type Option func(*Options)

// WithMaxSize 单位MB
func WithMaxSize(size int64) Option {
	return func(opt *Options) {
		opt.MaxSize = size * 1024 * 1024
	}
}

func WithMaxDay(day int) Option {
	return func(opt *Options) {
		opt.MaxDay = day
	}
}

func WithMaxHistory(n int) Option {
	return func(opt *Options) {
		opt.MaxHistory = n
	}
}

func WithCompress(c bool) Option {
	return func(opt *Options) {
		opt.IfCompress = c
	}
}

func WithTimeFormat(s string) Option {
	return func(opt *Options) {
		opt.TimeFormat = s
	}
}

type RollWriter struct {
	filePath string   // 文件路径
	opts     *Options // 配置

	pattern  *strftime.Strftime // 文件模式
	currDir  string
	currPath string
	currSize int64
	currFile atomic.Value

	openTime int64

	mu       sync.Mutex
	once     sync.Once
	closeCh  chan *os.File // 待关闭的文件句柄
	notifyCh chan bool     // 触发日志清理
}

// 获取当前日志句柄
func (w *RollWriter) getCurrFile() *os.File {
	if file, ok := w.currFile.Load().(*os.File); ok {
		return file
	}
	return nil
}

// 设置当前日志句柄
func (w *RollWriter) setCurrFile(file *os.File) {
	w.currFile.Store(file)
}

func NewRollWriter(filePath string, opt ...Option) (*RollWriter, error) {
	opts := &Options{}
	for _, o := range opt {
		o(opts)
	}

	if filePath == "" {
		return nil, errors.New("no file path")
	}

	pattern, err := strftime.New(filePath + opts.TimeFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid time format %q: %w", opts.TimeFormat, err)
	}

	w := &RollWriter{
		filePath: filePath,
		opts:     opts,
		pattern:  pattern,
		currDir:  filepath.Dir(filePath),
	}

	if err := os.MkdirAll(w.currDir, 0755); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RollWriter) doReopenFile(path string) error {
	atomic.StoreInt64(&w.openTime, time.Now().Unix())

	lastFile := w.getCurrFile()

	// 打开新的文件，如果不存在则创建
	curFile, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return err
	}
	w.setCurrFile(curFile)

	if lastFile != nil {
		// 需要延迟关闭
		w.startBackground()
		w.closeCh <- lastFile
	}

	if st, _ := os.Stat(path); st != nil {
		atomic.StoreInt64(&w.currSize, st.Size())
	}
	return nil
}

// 定期重新打开文件，文件名随时间变化时切换到新文件
func (w *RollWriter) reopenFile() {
	if w.getCurrFile() != nil && time.Now().Unix()-atomic.LoadInt64(&w.openTime) <= reopenFileTime {
		return
	}

	currPath := w.pattern.FormatString(time.Now())
	if w.currPath != currPath {
		w.currPath = currPath
		w.notifyClean()
	}
	_ = w.doReopenFile(w.currPath)
}

func (w *RollWriter) Write(v []byte) (n int, err error) {
	if w.getCurrFile() == nil || time.Now().Unix()-atomic.LoadInt64(&w.openTime) > reopenFileTime {
		w.mu.Lock()
		w.reopenFile()
		w.mu.Unlock()
	}

	file := w.getCurrFile()
	if file == nil {
		return 0, errors.New("curr file not exist")
	}

	n, err = file.Write(v)
	atomic.AddInt64(&w.currSize, int64(n))

	// 如果设置最大文件大小，则另开文件存储
	if w.opts.MaxSize > 0 && atomic.LoadInt64(&w.currSize) >= w.opts.MaxSize {
		w.mu.Lock()
		w.backupFile()
		w.mu.Unlock()
	}

	return n, err
}

func (w *RollWriter) Close() error {
	file := w.getCurrFile()
	if file == nil {
		return nil
	}

	err := file.Close()
	w.setCurrFile((*os.File)(nil))
	return err
}

// 超过大小重命名文件
func (w *RollWriter) backupFile() {
	if w.opts.MaxSize <= 0 || atomic.LoadInt64(&w.currSize) < w.opts.MaxSize {
		return
	}

	newFileName := w.currPath + "." + time.Now().Format(backupTimeFmt)
	if _, e := os.Stat(w.currPath); e == nil {
		_ = os.Rename(w.currPath, newFileName)
	}

	// 重新开新文件，大小从新文件读取
	_ = w.doReopenFile(w.currPath)
	w.notifyClean()
}

func (w *RollWriter) startBackground() {
	w.once.Do(func() {
		w.notifyCh = make(chan bool, 1)
		w.closeCh = make(chan *os.File, 100)

		go w.cleanClosedFile()
		go w.cleanExpireFile()
	})
}

// 触发历史文件的压缩与清理
func (w *RollWriter) notifyClean() {
	w.startBackground()
	select {
	case w.notifyCh <- true:
	default:
	}
}

func (w *RollWriter) cleanClosedFile() {
	for f := range w.closeCh {
		time.Sleep(30 * time.Millisecond)
		_ = f.Close()
	}
}

func (w *RollWriter) cleanExpireFile() {
	for range w.notifyCh {
		w.clean()
	}
}

// clean 压缩历史文件，并按数量与天数删除过期文件
func (w *RollWriter) clean() {
	if !w.opts.IfCompress && w.opts.MaxHistory == 0 && w.opts.MaxDay == 0 {
		return
	}

	oldFiles, err := w.getDirHistory()
	if err != nil || len(oldFiles) == 0 {
		return
	}

	var remove []logWithT
	oldFiles = expireWithMaxHistory(oldFiles, &remove, w.opts.MaxHistory)
	oldFiles = expireWithDay(oldFiles, &remove, w.opts.MaxDay)
	w.removeFile(remove)

	if w.opts.IfCompress {
		for _, f := range oldFiles {
			if strings.HasSuffix(f.Name(), compressSuffix) {
				continue
			}
			_ = compressFile(filepath.Join(w.currDir, f.Name()))
		}
	}
}

func (w *RollWriter) removeFile(remove []logWithT) {
	for _, f := range remove {
		_ = os.Remove(filepath.Join(w.currDir, f.Name()))
	}
}

// compressFile 把 path 压缩为 path.gz 并删除原文件
func compressFile(path string) (err error) {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(path+compressSuffix, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path + compressSuffix)
		}
	}()

	zw := gzip.NewWriter(dst)
	if _, err = io.Copy(zw, src); err != nil {
		return err
	}
	if err = zw.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// 超过最大日志个数后，即删除；files 按时间从新到旧排序
func expireWithMaxHistory(files []logWithT, remove *[]logWithT, maxHistory int) []logWithT {
	if maxHistory == 0 || len(files) <= maxHistory {
		return files
	}

	*remove = append(*remove, files[maxHistory:]...)
	return files[:maxHistory]
}

// 超过最大日期后，即删除
func expireWithDay(files []logWithT, remove *[]logWithT, maxDay int) []logWithT {
	if maxDay == 0 {
		return files
	}

	var remain []logWithT
	deadline := time.Now().Add(-24 * time.Hour * time.Duration(maxDay))
	for _, f := range files {
		if f.modTime.Before(deadline) {
			*remove = append(*remove, f)
		} else {
			remain = append(remain, f)
		}
	}

	return remain
}

// 查找目录下与当前文件匹配的历史文件，按修改时间从新到旧排序
func (w *RollWriter) getDirHistory() ([]logWithT, error) {
	entries, err := os.ReadDir(w.currDir)
	if err != nil {
		return nil, fmt.Errorf("can not read dir files:%w", err)
	}

	var files []logWithT
	fileName := filepath.Base(w.filePath)

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Base(w.currPath) == e.Name() { // 正在写入的文件
			continue
		}
		if !strings.HasPrefix(e.Name(), fileName) { // 不是同一个log生成的文件
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, logWithT{
			modTime:  info.ModTime(),
			FileInfo: info,
		})
	}

	sort.Sort(byModTimeLogInfo(files))
	return files, nil
}

type logWithT struct {
	modTime time.Time
	os.FileInfo
}

type byModTimeLogInfo []logWithT

func (b byModTimeLogInfo) Less(i, j int) bool {
	return b[i].modTime.After(b[j].modTime)
}

func (b byModTimeLogInfo) Swap(i, j int) {
	b[i], b[j] = b[j], b[i]
}

func (b byModTimeLogInfo) Len() int {
	return len(b)
}
