// Command meshctl runs mesh scripts and reports on the meshes they build.
//
//	meshctl eval shape.facet --close-holes --triangles
//	meshctl check shape.facet
//	meshctl watch shape.facet --create-faces
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds the flags shared by every subcommand.
type cli struct {
	configPath string
	logLevel   string
	format     string

	cfg *config.Config
	app *App
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "meshctl",
		Short:        "Build planar meshes from scripts",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML settings file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().StringVarP(&c.format, "format", "f", "json", "report format: json or yaml")

	root.AddCommand(newEvalCmd(c), newCheckCmd(c), newWatchCmd(c), newVersionCmd())
	return root
}

// setup loads settings and installs the logger.
func (c *cli) setup(stderr io.Writer) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.format != "json" && c.format != "yaml" {
		return fmt.Errorf("unknown format %q", c.format)
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))
	c.cfg = cfg
	c.app = NewApp(cfg)
	return nil
}

// write renders v in the selected format.
func (c *cli) write(w io.Writer, v any) error {
	if c.format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// evalFlags registers the pipeline flags on cmd.
func evalFlags(cmd *cobra.Command, o *EvalOptions) {
	cmd.Flags().BoolVar(&o.CreateFaces, "create-faces", false, "link faces, mark holes and set parents")
	cmd.Flags().BoolVar(&o.CloseHoles, "close-holes", false, "bridge holes into their containers (implies --create-faces)")
	cmd.Flags().BoolVar(&o.Triangles, "triangles", false, "include tessellated faces")
	cmd.Flags().Float64Var(&o.Extrude, "extrude", 0, "extrude faces by this height instead of flat triangles")
	cmd.Flags().BoolVar(&o.Solid, "solid", false, "with --extrude, union the faces into one part")
}

func newEvalCmd(c *cli) *cobra.Command {
	var opts EvalOptions
	cmd := &cobra.Command{
		Use:   "eval FILE",
		Short: "Run a script and print the resulting mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res := c.app.Evaluate(string(src), opts)
			if err := c.write(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if len(res.Errors) > 0 {
				return fmt.Errorf("%s: %d errors", args[0], len(res.Errors))
			}
			return nil
		},
	}
	evalFlags(cmd, &opts)
	return cmd
}

func newCheckCmd(c *cli) *cobra.Command {
	var opts EvalOptions
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Run a script and validate the mesh it builds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res := c.app.Evaluate(string(src), opts)
			out := cmd.OutOrStdout()
			for _, e := range res.Errors {
				if e.Line > 0 {
					fmt.Fprintf(out, "%s:%d: %s\n", args[0], e.Line, e.Message)
				} else {
					fmt.Fprintf(out, "%s: %s\n", args[0], e.Message)
				}
			}
			for _, f := range res.Findings {
				fmt.Fprintf(out, "%s: %s\n", args[0], f.Message)
			}
			if res.HasErrors() {
				return fmt.Errorf("%s: check failed", args[0])
			}
			fmt.Fprintf(out, "%s: ok (%d vertices, %d edges, %d faces)\n",
				args[0], res.Vertices, res.Edges, len(res.Faces))
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.CreateFaces, "create-faces", false, "link faces before validating")
	cmd.Flags().BoolVar(&opts.CloseHoles, "close-holes", false, "bridge holes before validating")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the meshctl version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "meshctl", version)
		},
	}
}
