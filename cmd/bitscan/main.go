// bitscan 扫描原始小端位图文件，按行输出连续区间
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hust-tianbo/go_bitmap/cache/bitmap/bitmap_scanner"
	"github.com/hust-tianbo/go_bitmap/cache/bluele_cache"
	"github.com/hust-tianbo/go_bitmap/config"
	"github.com/hust-tianbo/go_bitmap/log"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	files []string
	count uint64
	unset bool
	runs  bool
	conf  string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("bitscan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opt := &options{}
	file := fs.String("file", "", "bitmap file")
	fs.Uint64Var(&opt.count, "count", 0, "number of bits, default file size * 8")
	fs.BoolVar(&opt.unset, "unset", false, "scan unset bits")
	fs.BoolVar(&opt.runs, "runs", false, "print set and unset runs")
	fs.StringVar(&opt.conf, "conf", "", "yaml config")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *file != "" {
		opt.files = append(opt.files, *file)
	}
	opt.files = append(opt.files, fs.Args()...)
	if len(opt.files) == 0 {
		return nil, fmt.Errorf("no bitmap file")
	}
	return opt, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		cfg.Log[0].Level = "warn"
		return cfg, config.SetupLog(cfg)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, config.SetupLog(cfg)
}

func run(args []string, stdout, stderr io.Writer) int {
	opt, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "bitscan: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(opt.conf)
	if err != nil {
		fmt.Fprintf(stderr, "bitscan: %v\n", err)
		return 1
	}
	defer log.Sync()

	out := bufio.NewWriter(stdout)
	defer out.Flush()

	cache := bluele_cache.NewRangeCacheLRUWithCapacity(cfg.CacheCapacity)
	scanSet := cfg.ScanSet && !opt.unset
	for _, f := range opt.files {
		if err := scanFile(out, cache, f, opt, scanSet); err != nil {
			log.Errorf("[bitscan]scan %s fail:%v", f, err)
			fmt.Fprintf(stderr, "bitscan: %v\n", err)
			return 1
		}
	}
	return 0
}

func scanFile(out io.Writer, cache *bluele_cache.RangeCache, path string, opt *options, scanSet bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	count := opt.count
	if count == 0 {
		count = uint64(len(data)) * 8
	}
	sc := bitmap_scanner.New(data, count, scanSet)
	if len(opt.files) > 1 {
		fmt.Fprintf(out, "# %s\n", path)
	}

	if opt.runs {
		n := 0
		for r := range sc.Runs() {
			fmt.Fprintf(out, "%d %d %s\n", r.Start, r.Length, runName(r.Set))
			n++
		}
		log.Infof("[bitscan]%s count:%d runs:%d", path, count, n)
		return nil
	}

	key := fmt.Sprintf("%s:%d:%t", path, count, scanSet)
	ranges := cache.Ranges(key, sc)
	var bits uint64
	for _, r := range ranges {
		fmt.Fprintf(out, "%d %d\n", r.Start, r.Length)
		bits += r.Length
	}
	log.Infof("[bitscan]%s count:%d set:%t ranges:%d bits:%d", path, count, scanSet, len(ranges), bits)
	return nil
}

func runName(set bool) string {
	if set {
		return "set"
	}
	return "unset"
}
