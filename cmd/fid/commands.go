package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	gojson "github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/TechPizzaDev/fid"
)

func newLogger(cmdCtx *cli.Context) *fid.Logger {
	level := slog.LevelInfo
	if cmdCtx.Bool("verbose") {
		level = slog.LevelDebug
	}
	if cmdCtx.Bool("log-json") {
		return fid.NewJSONLogger(level)
	}
	return fid.NewTextLogger(level)
}

func runBuild(cmdCtx *cli.Context) error {
	logger := newLogger(cmdCtx)

	compression, err := fid.ParseCompression(cmdCtx.String("compression"))
	if err != nil {
		return err
	}

	var vec *fid.BitVector
	if in := cmdCtx.String("in"); in != "" {
		vec, err = readText(in)
		if err != nil {
			return err
		}
	} else {
		n := cmdCtx.Uint64("len")
		odds := cmdCtx.Float64("odds")
		rng := rand.New(rand.NewSource(cmdCtx.Int64("seed")))

		vec = fid.New(fid.WithCapacity(n), fid.WithOdds(odds))
		for i := uint64(0); i < n; i++ {
			vec.Push(rng.Float64() < odds)
		}
	}
	vec.ShrinkToFit()
	logger.LogBuild(vec)

	out := cmdCtx.String("out")
	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if _, err := vec.Save(f, fid.WithCompression(compression), fid.WithSaveLogger(logger)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close output")
	}

	fmt.Printf("%s %d bits, %d ones\n", color.HiGreenString("[built]"), vec.Len(), vec.Ones())
	return nil
}

// readText builds a vector from the 0s and 1s of a text file.
func readText(path string) (*fid.BitVector, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open input")
		}
		defer f.Close()
		r = f
	}

	vec := fid.New()
	br := bufio.NewReader(r)
	for offset := 0; ; offset++ {
		c, err := br.ReadByte()
		if err == io.EOF {
			return vec, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "read input")
		}

		switch c {
		case '0', '1':
			vec.Push(c == '1')
		case ' ', '\t', '\r', '\n':
		default:
			return nil, errors.Newf("unexpected %q at byte %d", c, offset)
		}
	}
}

func loadVector(cmdCtx *cli.Context) (*fid.BitVector, error) {
	f, err := os.Open(cmdCtx.String("in"))
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	defer f.Close()

	return fid.Load(bufio.NewReader(f), fid.WithLoadLogger(newLogger(cmdCtx)))
}

type stats struct {
	Len        uint64  `json:"len"`
	Ones       uint64  `json:"ones"`
	Zeros      uint64  `json:"zeros"`
	SizeBytes  int     `json:"size_bytes"`
	BitsPerBit float64 `json:"bits_per_bit"`
}

func runStats(cmdCtx *cli.Context) error {
	vec, err := loadVector(cmdCtx)
	if err != nil {
		return err
	}

	s := stats{
		Len:       vec.Len(),
		Ones:      vec.Ones(),
		Zeros:     vec.Zeros(),
		SizeBytes: vec.Size(),
	}
	if s.Len > 0 {
		s.BitsPerBit = float64(s.SizeBytes*8) / float64(s.Len)
	}

	if cmdCtx.Bool("json") {
		b, err := gojson.MarshalIndent(s, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode stats")
		}
		fmt.Println(string(b))
		return nil
	}

	fmt.Printf("%s %d\n", color.HiYellowString("len:         "), s.Len)
	fmt.Printf("%s %d\n", color.HiYellowString("ones:        "), s.Ones)
	fmt.Printf("%s %d\n", color.HiYellowString("zeros:       "), s.Zeros)
	fmt.Printf("%s %d\n", color.HiYellowString("size bytes:  "), s.SizeBytes)
	fmt.Printf("%s %.3f\n", color.HiYellowString("bits per bit:"), s.BitsPerBit)
	return nil
}

func runGet(cmdCtx *cli.Context) error {
	vec, err := loadVector(cmdCtx)
	if err != nil {
		return err
	}

	return query(cmdCtx, "get", func(i uint64) (string, error) {
		if i >= vec.Len() {
			return "", errors.Newf("index %d out of range [0, %d)", i, vec.Len())
		}
		if vec.Get(i) {
			return "1", nil
		}
		return "0", nil
	})
}

func runRank(cmdCtx *cli.Context) error {
	vec, err := loadVector(cmdCtx)
	if err != nil {
		return err
	}
	b, err := bitFlag(cmdCtx)
	if err != nil {
		return err
	}

	return query(cmdCtx, "rank"+bitName(b), func(i uint64) (string, error) {
		return strconv.FormatUint(vec.Rank(b, i), 10), nil
	})
}

func runSelect(cmdCtx *cli.Context) error {
	vec, err := loadVector(cmdCtx)
	if err != nil {
		return err
	}
	b, err := bitFlag(cmdCtx)
	if err != nil {
		return err
	}

	return query(cmdCtx, "select"+bitName(b), func(r uint64) (string, error) {
		i := vec.Select(b, r)
		if i == vec.Len() {
			return color.HiRedString("none"), nil
		}
		return strconv.FormatUint(i, 10), nil
	})
}

func bitFlag(cmdCtx *cli.Context) (bool, error) {
	switch bit := cmdCtx.Uint("bit"); bit {
	case 0, 1:
		return bit == 1, nil
	default:
		return false, errors.Newf("bit must be 0 or 1, got %d", bit)
	}
}

func bitName(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// query runs fn on every argument in parallel and
// prints the answers in the order of the arguments.
func query(cmdCtx *cli.Context, name string, fn func(arg uint64) (string, error)) error {
	args := cmdCtx.Args().Slice()
	if len(args) == 0 {
		return errors.Newf("%s: no arguments", name)
	}

	answers := make([]string, len(args))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for n, arg := range args {
		g.Go(func() error {
			x, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				return errors.Wrapf(err, "argument %d", n)
			}
			answers[n], err = fn(x)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for n, arg := range args {
		fmt.Printf("%s = %s\n", color.HiGreenString("%s(%s)", name, arg), answers[n])
	}
	return nil
}
