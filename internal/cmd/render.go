package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/routeblend/routeblend/internal/engine"
	"github.com/routeblend/routeblend/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Load activities once and write the overlap frame as PNG",
	RunE:  runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("output", "o", "overlap.png", "Output PNG path")
	renderCmd.Flags().Int("supersample", 1, "Render at Nx canvas size and downsample (anti-aliasing)")
	renderCmd.Flags().Bool("soften", false, "Apply a slight blur to the exported frame")
	renderCmd.Flags().Duration("load-timeout", 5*time.Minute, "Timeout for the dataset load")
	renderCmd.Flags().StringSlice("hide", nil, "Activity types to hide (repeatable)")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, renderCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("render.output", "output")
	mustBind("render.supersample", "supersample")
	mustBind("render.soften", "soften")
	mustBind("render.load_timeout", "load-timeout")
	mustBind("render.hide", "hide")
}

func runRender(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	output := viper.GetString("render.output")
	supersample := viper.GetInt("render.supersample")
	soften := viper.GetBool("render.soften")
	loadTimeout := viper.GetDuration("render.load_timeout")
	hide := viper.GetStringSlice("render.hide")

	if supersample < 1 || supersample > 4 {
		return fmt.Errorf("supersample must be between 1 and 4, got %d", supersample)
	}

	cfg, err := engineConfig()
	if err != nil {
		return err
	}

	activities, streams, cleanup, err := buildSources()
	if err != nil {
		return err
	}
	defer cleanup()

	eng, err := engine.New(cfg, activities, streams)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	summary, err := eng.LoadDataset(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("dataset loaded", "tracks", summary.Tracks, "dropped", summary.Dropped, "segments", summary.Segments)

	for _, t := range hide {
		eng.SetFilter(t, false)
	}

	img := eng.FrameAt(cfg.CanvasWidth*supersample, cfg.CanvasHeight*supersample)
	if supersample > 1 {
		img = render.Downsample(img, supersample)
	}
	if soften {
		img = render.Soften(img)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := render.EncodePNG(f, img); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}

	logger.Info("frame written", "path", output, "supersample", supersample)
	return nil
}
