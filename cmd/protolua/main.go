// protolua runs Lua scripts against the IR bindings.
//
//	protolua run build.lua
//	protolua eval 'llvm.Context.new()'
//	protolua repl
//	protolua describe --schema
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/feather-lang/protobind"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var r reportedError
		if !errors.As(err, &r) {
			fmt.Fprintf(os.Stderr, "protolua: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := defaultConfig()
	var log *zap.Logger

	root := &cobra.Command{
		Use:           "protolua",
		Short:         "Lua host for the IR bindings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return report(cmd, err)
			}
			l, err := newLogger(cfg)
			if err != nil {
				return report(cmd, err)
			}
			log = l
			protobind.SetLogger(l)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}

	bindFlags(root.PersistentFlags(), &cfg)

	withSession := func(fn sessionFunc) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cfg, log)
			if err != nil {
				return report(cmd, err)
			}
			defer s.Close()
			return fn(cmd, s, args)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "run FILE...",
			Short: "Run script files in one state, in order",
			Args:  cobra.MinimumNArgs(1),
			RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
				for _, path := range args {
					if err := s.runFile(path); err != nil {
						return report(cmd, fmt.Errorf("%s: %s", path, formatError(err)))
					}
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "repl",
			Short: "Start an interactive prompt",
			Args:  cobra.NoArgs,
			RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
				return s.runREPL()
			}),
		},
		newEvalCmd(withSession),
		newDescribeCmd(),
	)
	return root
}

// bindFlags registers the fields of cfg on fs, with their current values
// as defaults.
func bindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Module, "module", "m", cfg.Module, "name of the binding namespace and of its require() module")
	fs.StringVarP(&cfg.Global, "global", "g", cfg.Global, "global variable bound to the namespace (empty for none)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	fs.StringSliceVar(&cfg.Libs, "lib", cfg.Libs, "standard libraries to open")
}

// reportedError marks an error already printed by report.
type reportedError struct{ error }

// report prints err to the command's error stream and marks it printed.
// Flag and argument errors from cobra itself are printed by main.
func report(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "protolua: %v\n", err)
	return reportedError{err}
}

type sessionFunc func(cmd *cobra.Command, s *session, args []string) error

func newEvalCmd(withSession func(sessionFunc) func(*cobra.Command, []string) error) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "eval CODE",
		Short: "Evaluate a chunk and print its results",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			values, err := s.eval(args[0])
			if err != nil {
				return report(cmd, fmt.Errorf("%s", formatError(err)))
			}
			if !asJSON {
				s.printValues(cmd.OutOrStdout(), values)
				return nil
			}
			b, err := json.Marshal(jsonValues(values))
			if err != nil {
				return report(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the results as a JSON array")
	return cmd
}

func newDescribeCmd() *cobra.Command {
	var schema bool
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the bound types as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := describe(cmd.OutOrStdout(), schema); err != nil {
				return report(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&schema, "schema", false, "print the JSON schema of the output instead")
	return cmd
}

// describe writes the manifest of the default registry, or its schema.
// Types are initialized into a scratch state first so that their methods
// and accessors are known.
func describe(w io.Writer, schema bool) error {
	var (
		out []byte
		err error
	)
	if schema {
		out, err = protobind.ManifestSchema()
	} else {
		s, serr := newSession(Config{Module: "describe", LogLevel: "error"}, zap.NewNop())
		if serr != nil {
			return serr
		}
		defer s.Close()
		out, err = protobind.Default.Describe().JSON()
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
