package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"voltlab/pkg/analysis"
	"voltlab/pkg/netlist"
	"voltlab/pkg/util"
)

var (
	tranStep   float64
	tranStop   float64
	plotSignal string
	configFile string
)

// RunConfig is the optional YAML run file for transient simulations.
type RunConfig struct {
	Step float64 `yaml:"step"`
	Stop float64 `yaml:"stop"`
	Plot string  `yaml:"plot"`
}

func loadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &RunConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "voltlab",
		Short: "MNA circuit simulator",
	}

	opCmd := &cobra.Command{
		Use:   "op <netlist>",
		Short: "DC operating point analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nl, err := netlist.ParseFile(args[0])
			if err != nil {
				return err
			}

			op := analysis.NewOP()
			if err := op.Setup(nl.Circuit); err != nil {
				return err
			}
			if err := op.Execute(); err != nil {
				return err
			}

			printOperatingPoint(nl)
			return nil
		},
	}

	tranCmd := &cobra.Command{
		Use:   "tran <netlist>",
		Short: "fixed-step transient analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nl, err := netlist.ParseFile(args[0])
			if err != nil {
				return err
			}

			step, stop := tranStep, tranStop
			if nl.Tran != nil {
				if step == 0 {
					step = nl.Tran.Step
				}
				if stop == 0 {
					stop = nl.Tran.Stop
				}
			}
			if configFile != "" {
				cfg, err := loadRunConfig(configFile)
				if err != nil {
					return fmt.Errorf("loading run config: %w", err)
				}
				if cfg.Step > 0 {
					step = cfg.Step
				}
				if cfg.Stop > 0 {
					stop = cfg.Stop
				}
				if plotSignal == "" {
					plotSignal = cfg.Plot
				}
			}
			if step <= 0 || stop <= 0 {
				return fmt.Errorf("transient needs a positive step and stop (flags, run config or .tran card)")
			}

			tr := analysis.NewTransient(step, stop)
			if err := tr.Setup(nl.Circuit); err != nil {
				return err
			}
			if err := tr.Execute(); err != nil {
				return err
			}

			if plotSignal != "" {
				if err := plotWaveform(nl, tr, plotSignal); err != nil {
					return err
				}
			}
			printOperatingPoint(nl)
			return nil
		},
	}
	tranCmd.Flags().Float64Var(&tranStep, "step", 0, "time step in seconds")
	tranCmd.Flags().Float64Var(&tranStop, "stop", 0, "stop time in seconds")
	tranCmd.Flags().StringVar(&plotSignal, "plot", "", "node name to plot")
	tranCmd.Flags().StringVar(&configFile, "config", "", "YAML run config")

	rootCmd.AddCommand(opCmd, tranCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printOperatingPoint(nl *netlist.Netlist) {
	names := make([]string, 0, len(nl.NodeMap))
	for name := range nl.NodeMap {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, name := range names {
		node := nl.NodeMap[name]
		fmt.Fprintf(w, "V(%s)\t%s\n", name, util.FormatValueFactor(node.Voltage, "V"))
	}
	w.Flush()
}

func plotWaveform(nl *netlist.Netlist, tr *analysis.Transient, signal string) error {
	node, ok := nl.Node(signal)
	if !ok {
		return fmt.Errorf("unknown node: %s", signal)
	}

	series := tr.GetResults()[fmt.Sprintf("V(%d)", node.ID)]
	if len(series) == 0 {
		return fmt.Errorf("no samples recorded for node %s", signal)
	}

	graph := asciigraph.Plot(series,
		asciigraph.Height(15),
		asciigraph.Width(72),
		asciigraph.Caption(fmt.Sprintf("V(%s)", strings.ToLower(signal))))
	fmt.Println(graph)
	fmt.Println()
	return nil
}
