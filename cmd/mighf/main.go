// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ezrec/mighf/config"
	"github.com/ezrec/mighf/emulator"
	"github.com/ezrec/mighf/internal"
	"github.com/ezrec/mighf/shell"
	"github.com/ezrec/mighf/terminal"
)

var version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mighf [FILE]",
	Short: "mighf virtual CPU",
	Long: `mighf runs programs for a small virtual CPU.

With FILE, the program is loaded, run once, and mighf exits.
Without FILE, the coreshell command shell is started.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoot,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mighf %v\n", version)
	},
}

var definesCmd = &cobra.Command{
	Use:   "defines",
	Short: "List the $(...) expression equates",
	Run: func(cmd *cobra.Command, args []string) {
		emu := emulator.NewEmulator(cmd.OutOrStdout())
		for equ, value := range internal.SortedSeq2(emu.Defines()) {
			fmt.Fprintf(cmd.OutOrStdout(), "%-13s = %v\n", equ, value)
		}
	},
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file")
	config.Flags(rootCmd.Flags())

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(definesCmd)
}

func runRoot(cmd *cobra.Command, args []string) (err error) {
	cfg, err := config.Load(viper.New(), cmd.Flags(), configPath)
	if err != nil {
		return
	}

	logger, closer := cfg.Logger("mighf")
	defer closer.Close()

	emu := emulator.NewEmulator(os.Stdout)
	emu.SetLogger(logger)
	emu.SetVerbose(cfg.Verbose)
	emu.Machine.Strict = cfg.Strict
	emu.Machine.MaxSteps = cfg.MaxSteps

	var screen *terminal.Screen
	if cfg.PlainOutput && !terminal.IsTerminal(os.Stdout) {
		screen = terminal.NewScreen(terminal.Size(os.Stderr))
		emu.Machine.Display = screen
	}

	if len(args) == 1 {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		err = emu.RunFile(ctx, args[0])
		if screen != nil && screen.Dirty() {
			fmt.Print(screen.String())
		}
		return
	}

	sh := shell.New(emu, os.Stdout)
	sh.Prompt = cfg.Prompt
	sh.Banner()

	if terminal.IsTerminal(os.Stdin) {
		sh.Interactive()
	} else {
		err = sh.Run(os.Stdin)
	}

	if screen != nil && screen.Dirty() {
		fmt.Print(screen.String())
	}

	return
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}
