package main

import (
	"os"
	"runtime"

	"github.com/richinsley/ckrl/logging"
	"github.com/richinsley/ckrl/options"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ckrl",
	Short: "Minimal OpenGL device examples",
	Long: `ckrl opens an OpenGL window and runs one of the example scenes:
a cleared window, a static triangle or an indexed quad.

Frames can be recorded to a video file through ffmpeg, optionally
without a window on linux.`,
	SilenceUsage: true,
}

func sceneCommand(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logging.Init(opts.Logging.Level)
			return runScene(name, opts)
		},
	}
}

// GLFW and GL calls must stay on the main thread.
func init() {
	runtime.LockOSThread()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ckrl.yaml or $HOME/.ckrl/ckrl.yaml)")
	options.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		sceneCommand("window", "Open a window and clear it"),
		sceneCommand("triangle", "Draw a static triangle"),
		sceneCommand("quad", "Draw an indexed quad"),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
