package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/turbo"
	_ "github.com/gogpu/turbo/gpu"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the active engine and capacity limits",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := turbo.NewContext()
		if err != nil {
			return err
		}
		defer ctx.Close()

		p := message.NewPrinter(language.English)
		p.Printf("engine:      %s\n", turbo.RegisteredEngine().Name())
		p.Printf("max length:  %d elements\n", turbo.MaxLength)
		p.Printf("prelude:     %d lines\n", turbo.PreludeLineCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
