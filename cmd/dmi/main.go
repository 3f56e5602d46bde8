package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	assistant "github.com/VladOS-0/dmi-assistant"
	"github.com/VladOS-0/dmi-assistant/dmi"
	"github.com/VladOS-0/dmi-assistant/icon"
)

const defaultDB = "dmi.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) zerolog.Logger {
	level := zerolog.WarnLevel
	if c.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
}

func parseTarget(s string) (icon.Target, error) {
	if s == "" {
		return icon.Target{}, nil
	}

	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return icon.Target{}, fmt.Errorf("bad size %q, expected WxH", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return icon.Target{}, fmt.Errorf("bad width %q", w)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return icon.Target{}, fmt.Errorf("bad height %q", h)
	}

	return icon.Target{Width: width, Height: height}, nil
}

func formatLoop(loop uint) string {
	if loop == 0 {
		return "infinite"
	}
	return strconv.FormatUint(uint64(loop), 10)
}

func formatFlags(s *dmi.State) string {
	var flags []string
	if s.Rewind {
		flags = append(flags, "rewind")
	}
	if s.Movement {
		flags = append(flags, "movement")
	}
	if s.Hotspot != nil {
		flags = append(flags, "hotspot")
	}
	return strings.Join(flags, ",")
}

func formatDelay(delay []float64) string {
	if len(delay) == 0 {
		return "-"
	}
	parts := make([]string, len(delay))
	for i, t := range delay {
		parts[i] = strconv.FormatFloat(t, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func main() {
	app := cli.NewApp()

	app.Name = "dmi"
	app.Usage = "DreamMaker icon utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"DMI_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to the state index",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Show the states of an icon file",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := os.Open(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				cfg, err := dmi.DecodeConfig(f)
				if err != nil {
					return cli.Exit(err, 1)
				}

				fmt.Printf("%s: %dx%d per cell, %d states\n\n", c.Args().First(), cfg.Width, cfg.Height, len(cfg.States))

				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "STATE\tDIRS\tFRAMES\tDELAY\tLOOP\tFLAGS")
				for _, s := range cfg.States {
					fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\n", s.Name, s.Dirs, s.Frames, formatDelay(s.Delay), formatLoop(s.Loop), formatFlags(s))
				}
				return w.Flush()
			},
		},
		{
			Name:      "export",
			Usage:     "Export a still frame or animation from an icon file",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "state",
					Usage:    "name of the state to export",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "dir",
					Value: "south",
					Usage: "direction to export",
				},
				&cli.IntFlag{
					Name:  "frame",
					Usage: "frame index to export",
				},
				&cli.BoolFlag{
					Name:  "animated",
					Usage: "export the animation instead of a still",
				},
				&cli.BoolFlag{
					Name:  "original",
					Usage: "ignore any resize and export at the original size",
				},
				&cli.StringFlag{
					Name:  "resize",
					Usage: "upscale to `WxH` before exporting",
				},
				&cli.StringFlag{
					Name:  "filter",
					Value: "nearest",
					Usage: "resampling filter: nearest, triangle, catmull-rom, gaussian or lanczos3",
				},
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "output `FILE`",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				target, err := parseTarget(c.String("resize"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				filter, err := icon.ParseFilter(c.String("filter"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				dir, err := icon.ParseDirection(c.String("dir"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				file := c.Args().First()
				f, err := os.Open(file)
				if err != nil {
					return cli.Exit(err, 1)
				}
				raw, err := dmi.Decode(f)
				f.Close()
				if err != nil {
					return cli.Exit(err, 1)
				}

				ic := icon.New(raw, target, filter, newLogger(c))

				state := c.String("state")
				if ic.States[state] == nil {
					return cli.Exit(fmt.Errorf("no state %q in %s", state, file), 1)
				}

				out := c.String("out")
				if out == "" {
					base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
					ext := ".png"
					if c.Bool("animated") {
						ext = ".gif"
					}
					out = fmt.Sprintf("%s-%s-%s%s", base, strings.ReplaceAll(state, "/", "_"), dir, ext)
				}

				if c.Bool("animated") {
					anim := ic.Animation(state, dir)
					if c.Bool("original") {
						anim = ic.OriginalAnimation(state, dir)
					}
					if err := icon.ExportAnimation(out, anim); err != nil {
						return cli.Exit(err, 1)
					}
				} else {
					m := ic.Frame(state, dir, c.Int("frame"))
					if c.Bool("original") {
						m = ic.OriginalFrame(state, dir, c.Int("frame"))
					}
					if m == nil {
						return cli.Exit(fmt.Errorf("no frame %d for state %q facing %s", c.Int("frame"), state, dir), 1)
					}
					if err := icon.ExportFrame(out, m); err != nil {
						return cli.Exit(err, 1)
					}
				}

				fmt.Println(out)
				return nil
			},
		},
		{
			Name:      "scan",
			Usage:     "Index every icon file below a directory",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				a, err := assistant.New(c.String("db"), newLogger(c))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer a.Close()

				if err := a.Scan(c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				files, states, err := a.Stats()
				if err != nil {
					return cli.Exit(err, 1)
				}
				fmt.Printf("%d files, %d states indexed\n", files, states)

				return nil
			},
		},
		{
			Name:      "search",
			Usage:     "Search the indexed states by name",
			ArgsUsage: "PATTERN",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				a, err := assistant.New(c.String("db"), newLogger(c))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer a.Close()

				hits, err := a.Search(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "STATE\tDIRS\tFRAMES\tFILE")
				for _, h := range hits {
					fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", h.Name, h.Dirs, h.Frames, h.Path)
				}
				return w.Flush()
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
