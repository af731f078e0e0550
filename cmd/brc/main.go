// Command brc aggregates a measurements file and prints the results.
//
//	brc [-workers N] [-format brace|lines] [-snappy] FILE
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/bsm/brc"
)

var flags struct {
	workers int
	format  string
	snappy  bool
}

func init() {
	flag.IntVar(&flags.workers, "workers", runtime.NumCPU(), "number of partitions to aggregate in parallel")
	flag.StringVar(&flags.format, "format", "brace", "output format, brace or lines")
	flag.BoolVar(&flags.snappy, "snappy", false, "input is snappy compressed")
}

func main() {
	log.SetFlags(0)
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalln("usage: brc [flags] FILE")
	}
	if err := run(flag.Arg(0)); err != nil {
		log.Fatalln(err)
	}
}

func run(name string) error {
	o := &brc.Options{Workers: flags.workers}
	if flags.snappy {
		o.Compression = brc.SnappyCompression
	}

	wo := &brc.WriterOptions{}
	switch flags.format {
	case "brace":
		wo.Format = brc.BraceFormat
	case "lines":
		wo.Format = brc.LineFormat
	default:
		return fmt.Errorf("unknown format %q", flags.format)
	}

	rs, err := brc.AggregateFile(name, o)
	if err != nil {
		return err
	}

	w := brc.NewWriter(os.Stdout, wo)
	for _, row := range rs {
		if err := w.Append(row); err != nil {
			return err
		}
	}
	return w.Close()
}
