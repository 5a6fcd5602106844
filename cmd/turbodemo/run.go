package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/turbo"
	_ "github.com/gogpu/turbo/gpu"
)

var (
	runLength  int
	runKernel  string
	runPNG     string
	runScale   int
	runSamples int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Allocate a buffer, run a kernel over it, print a result sample",
	Long: `Allocates a buffer of the given logical length, fills it with the
ramp 0,1,2,..., runs the kernel body once per element group, and prints
the first elements of the result. The body may call read() and commit():

    turbodemo run --length 1024 --kernel "commit(read() * 2.0);"

With --png the full result grid is written as a grayscale heatmap.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, err := turbo.Alloc(runLength)
		if err != nil {
			return err
		}
		data := buf.Data()
		for i := range data {
			data[i] = float32(i)
		}

		ctx, err := turbo.NewContext()
		if err != nil {
			return err
		}
		defer ctx.Close()

		out, err := ctx.Run(buf, runKernel)
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		p.Printf("ran kernel over %d elements (backing capacity %d, texture %dx%d)\n",
			buf.Len(), buf.Cap(), buf.Dim(), buf.Dim())

		n := runSamples
		if n > len(out) {
			n = len(out)
		}
		for i := 0; i < n; i++ {
			fmt.Printf("  [%d] %g\n", i, out[i])
		}

		if runPNG != "" {
			if err := writeHeatmapPNG(runPNG, data, buf.Dim(), runScale); err != nil {
				return fmt.Errorf("write %s: %w", runPNG, err)
			}
			p.Printf("wrote %s (%d x %d, scale %d)\n", runPNG, buf.Dim()*runScale, buf.Dim()*runScale, runScale)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runLength, "length", 1024, "Logical element count")
	runCmd.Flags().StringVar(&runKernel, "kernel", "commit(read() * 2.0);", "WGSL kernel body")
	runCmd.Flags().StringVar(&runPNG, "png", "", "Write the result grid as a heatmap PNG")
	runCmd.Flags().IntVar(&runScale, "scale", 4, "Heatmap upscale factor")
	runCmd.Flags().IntVar(&runSamples, "samples", 8, "Result values to print")
	rootCmd.AddCommand(runCmd)
}
