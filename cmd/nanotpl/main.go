// Command nanotpl is a thin CLI wrapper over the nanotpl library: render a
// template against a YAML data file, dump its token stream, or disassemble
// its compiled bytecode.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/flosch-style/nanotpl"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:   "nanotpl",
		Short: "Render and inspect nanotpl templates",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			nanotpl.SetDebug(debug)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(renderCmd(), tokenizeCmd(), disasmCmd())
	return root
}

func renderCmd() *cobra.Command {
	var dataPath string
	var strict bool

	cmd := &cobra.Command{
		Use:   "render <template-file>",
		Short: "Render a template file against a YAML data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading template: %w", err)
			}

			binding, err := loadBinding(dataPath)
			if err != nil {
				return err
			}

			var opts []nanotpl.Option
			if strict {
				opts = append(opts, nanotpl.WithUndefinedPolicy(nanotpl.StrictUndefined))
			}

			out, err := nanotpl.Render(string(source), binding, opts...)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "YAML file with the data binding (defaults to an empty binding)")
	cmd.Flags().BoolVar(&strict, "strict", false, "raise an error instead of rendering \"\" for undefined variables")
	return cmd
}

func tokenizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize <template-file>",
		Short: "Print the token stream for a template file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading template: %w", err)
			}
			tokens, err := nanotpl.Tokenize(string(source))
			if err != nil {
				return err
			}
			for _, tok := range tokens {
				fmt.Fprintln(cmd.OutOrStdout(), tok.String())
			}
			return nil
		},
	}
}

func disasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <template-file>",
		Short: "Compile a template file and print its disassembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading template: %w", err)
			}
			nodes, err := nanotpl.Parse(string(source))
			if err != nil {
				return err
			}
			program, err := nanotpl.Compile(nodes)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), program.Disassemble())
			return nil
		},
	}
}

func loadBinding(dataPath string) (nanotpl.Binding, error) {
	if dataPath == "" {
		return nanotpl.Binding{}, nil
	}
	raw, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing data file: %w", err)
	}
	binding := make(nanotpl.Binding, len(data))
	for k, v := range data {
		binding[k] = nanotpl.FromGo(v)
	}
	return binding, nil
}
