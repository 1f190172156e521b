package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/qentengo/qentengo/bigint"
)

var bigintCmd = &cobra.Command{
	Use:   "bigint",
	Short: "Multiply a 1024-bit BigInt by a 64-bit limb repeatedly and print the result",
	RunE:  runBigint,
}

func init() {
	flags := bigintCmd.Flags()
	flags.Int("iterations", 16, "number of multiply steps")
	flags.Uint64("multiplier", 18446744073709551615, "multiplier applied each step")
	flags.Int("width", 1024, "total bit width of the BigInt")
	_ = viper.BindPFlags(flags)
}

func runBigint(cmd *cobra.Command, args []string) error {
	iterations := viper.GetInt("iterations")
	multiplier := viper.GetUint64("multiplier")
	width := viper.GetInt("width")

	x := bigint.New[uint64](width)
	x.SetUint64(1)

	start := time.Now()
	for i := 0; i < iterations; i++ {
		x.Multiply(multiplier)
	}
	elapsed := time.Since(start)

	fmt.Printf("top=%d value=%s elapsed=%s\n", x.Index(), x.String(), elapsed)
	return nil
}
