package main

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "qentengo-bench",
	Short: "Drives Reserver and BigInt workloads for manual inspection",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml/json/toml)")
	rootCmd.AddCommand(reserveCmd, bigintCmd)

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}
