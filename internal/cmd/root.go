package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "routeblend",
	Short: "Overlay GPS tracks and emphasize shared route segments",
	Long: `Routeblend overlays many GPS tracks at a common origin and renders them so
that spatially-overlapping route segments stand out: the more tracks share a
stretch, the thicker and redder it is drawn. Unique segments stay thin and
neutral.

Tracks come from a Strava-compatible API or a directory of FIT files.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("source", "strava", "Activity source (strava, fitdir)")
	rootCmd.PersistentFlags().String("fit-dir", "./activities", "Directory of .fit files (for --source=fitdir)")
	rootCmd.PersistentFlags().String("cache-db", "", "SQLite stream cache path (empty disables caching)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	if err := viper.BindPFlag("source", rootCmd.PersistentFlags().Lookup("source")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("fit_dir", rootCmd.PersistentFlags().Lookup("fit-dir")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("cache_db", rootCmd.PersistentFlags().Lookup("cache-db")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("ROUTEBLEND")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
