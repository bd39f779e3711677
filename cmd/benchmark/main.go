package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/PhilipJohnBasile/philjs-sub012/reactive"
	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	itersKey   = "iters"
	profileKey = "profile"
)

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100, 1_000}
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure write-to-effect propagation latency across graph shapes",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  itersKey,
				Usage: "Writes per graph shape",
				Value: 100,
			},
			&cli.BoolFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile to default.pgo",
				Value: false,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	iters := int(cmd.Uint(itersKey))

	if cmd.Bool(profileKey) {
		f, err := os.Create("default.pgo")
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	log.Print("warming up")
	benchmarkPropagate(iters, false)
	benchmarkPropagate(iters, true)
	return nil
}

// benchmarkPropagate builds w independent chains of h computeds off one
// source, each chain terminated by an effect, then times iters writes. The
// leaf values observed by the effects are folded into a hash so separate
// runs over the same shape can be checked for identical propagation.
func benchmarkPropagate(iters int, shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Propagate")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "writes/s", "avg", "min", "p75", "p99", "max", "fingerprint"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			digest := xxhash.New()
			var scratch [8]byte

			rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
				log.Panic(err)
			})
			src := reactive.Signal(rs, 1)
			for i := 0; i < w; i++ {
				last := reactive.Computed(rs, func(oldValue int) int {
					return src.Value() + 1
				})
				for j := 1; j < h; j++ {
					prev := last
					last = reactive.Computed(rs, func(oldValue int) int {
						return prev.Value() + 1
					})
				}

				leaf := last
				reactive.Effect(rs, func() (reactive.CleanupFunc, error) {
					binary.LittleEndian.PutUint64(scratch[:], uint64(leaf.Value()))
					digest.Write(scratch[:])
					return nil, nil
				})
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.SetValue(src.Peek() + 1)
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			perSecond := float64(iters) / calc.Time.Cumulative.Seconds()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					humanize.CommafWithDigits(perSecond, 0),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
					fmt.Sprintf("%016x", digest.Sum64()),
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}
