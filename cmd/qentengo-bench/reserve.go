package main

import (
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/qentengo/qentengo/cpuset"
	"github.com/qentengo/qentengo/mem"
	"github.com/qentengo/qentengo/reserver"
)

var reserveCmd = &cobra.Command{
	Use:   "reserve",
	Short: "Reserve/release a batch of fixed-size regions and report timing",
	RunE:  runReserve,
}

func init() {
	flags := reserveCmd.Flags()
	flags.Int("count", 100000, "number of reserve/release pairs to perform")
	flags.Int("size", 64, "size in bytes of each region")
	flags.Uint("align", reserver.DefaultChunkAlign, "required alignment in bytes")
	_ = viper.BindPFlags(flags)
}

func runReserve(cmd *cobra.Command, args []string) error {
	count := viper.GetInt("count")
	size := mem.Size(viper.GetInt("size"))
	align := uintptr(viper.GetUint("align"))

	reg := prometheus.NewRegistry()
	r := reserver.New(&cpuset.DefaultHelper, reserver.DefaultChunkAlign, reserver.DefaultBlockSize, reg)
	defer func() {
		if err := r.Reset(); err != nil {
			log.Printf("reset: %v", err)
		}
	}()

	start := time.Now()
	ptrs := make([]*byte, 0, count)
	for i := 0; i < count; i++ {
		p, err := reserver.Reserve[byte](r, int(size), align)
		if err != nil {
			return fmt.Errorf("reserve #%d: %w", i, err)
		}
		ptrs = append(ptrs, p)
	}
	reserved := time.Since(start)

	start = time.Now()
	for _, p := range ptrs {
		reserver.Release(r, p, int(size))
	}
	released := time.Since(start)

	fmt.Printf("cores=%d count=%d size=%d align=%d reserve=%s release=%s\n",
		r.CoreCount(), count, size, align, reserved, released)
	return nil
}
