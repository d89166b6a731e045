package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bridgemesh/core/corectx"
	"github.com/bridgemesh/core/corectx/configbind"
	"github.com/bridgemesh/core/ffi"
	"github.com/bridgemesh/core/identifier"
)

// version is the gatewayctl binary's own version, independent of the core
// library's versioning.
const version = "0.1.0"

// configPath is the value of the --config persistent flag, shared by every
// subcommand through buildContext.
var configPath string

// buildContext builds and starts a Context for a subcommand. When configPath
// is set, its contents are decoded with configbind.Decode and folded in with
// Context.ApplyConfigTree before Start; this is configbind's only
// non-test consumer. Decode warnings (unrecognized keys) are printed to out
// rather than failing the command.
func buildContext(out io.Writer) (*corectx.Context, error) {
	cfg, err := corectx.NewConfig()
	if err != nil {
		return nil, err
	}
	ctx := corectx.New(cfg)

	if configPath != "" {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		tree, warnings, err := configbind.Decode(decoded)
		if err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		for _, w := range warnings {
			fmt.Fprintf(out, "warning: %s: %s\n", w.Key, w.Message)
		}
		ctx.ApplyConfigTree(tree)
	}

	if err := ctx.Start(); err != nil {
		return nil, err
	}
	return ctx, nil
}

// demoBridge returns one of the small set of built-in demonstration bridges
// gatewayctl knows how to stand up for a given language name. A real
// deployment would register bridges that call into actual embedded
// runtimes; gatewayctl ships no such runtimes itself.
func demoBridge(language string) (ffi.Bridge, bool) {
	switch language {
	case "go":
		return ffi.NewFunc("go", func(cc *ffi.CallContext, fn string, arg ffi.Value) (ffi.Value, error) {
			return arg, nil
		}), true
	case "echo":
		return ffi.NewFunc("echo", func(cc *ffi.CallContext, fn string, arg ffi.Value) (ffi.Value, error) {
			return arg, nil
		}), true
	default:
		return nil, false
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gatewayctl",
		Short: "Drive a bridgemesh/core gateway from the command line",
	}
	root.AddCommand(newInitCmd(), newCleanupCmd(), newRegisterBridgeCmd(), newCallCmd(), newStatusCmd(), newVersionCmd())
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON configuration file decoded with configbind.Decode")
	return root
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a gateway and report readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := buildContext(cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "gateway initialized")
			return nil
		},
	}
}

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Initialize, register the demo bridges, then tear everything down",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := buildContext(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			for _, lang := range []string{"go", "echo"} {
				b, _ := demoBridge(lang)
				_ = ctx.RegisterBridge(b)
			}
			if aggregated := ctx.Shutdown(); len(aggregated) > 0 {
				return aggregated[0]
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cleanup complete, no errors")
			return nil
		},
	}
}

func newRegisterBridgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register-bridge <lang>",
		Short: "Register a demo bridge for lang and report the bridge count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := args[0]
			b, ok := demoBridge(lang)
			if !ok {
				return fmt.Errorf("no demo bridge available for language %q", lang)
			}
			ctx, err := buildContext(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := ctx.RegisterBridge(b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s; bridge count = %d\n", lang, ctx.Gateway.BridgeCount())
			return nil
		},
	}
}

func newCallCmd() *cobra.Command {
	var authenticated, secure bool
	cmd := &cobra.Command{
		Use:   "call <lang> <fn> [arg]",
		Short: "Register the demo bridge for lang and call fn with an optional string argument",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, fn := args[0], args[1]
			var argStr string
			if len(args) == 3 {
				argStr = args[2]
			}
			b, ok := demoBridge(lang)
			if !ok {
				return fmt.Errorf("no demo bridge available for language %q", lang)
			}
			ctx, err := buildContext(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := ctx.RegisterBridge(b); err != nil {
				return err
			}
			id, err := identifier.New()
			if err != nil {
				return err
			}
			cc := ffi.NewCallContext(context.Background(), "gatewayctl", lang, fn, ffi.String(argStr), id)
			if authenticated {
				cc.MarkAuthenticated()
			}
			if secure {
				cc.MarkSecure()
			}
			result, err := ctx.Call(cc)
			if err != nil {
				return err
			}
			str, _ := result.String()
			fmt.Fprintf(cmd.OutOrStdout(), "result: %s (id=%s)\n", str, id.Render(ctx.IdentifierFormat()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&authenticated, "authenticated", false, "mark the call as having completed the challenge-response protocol (security.require_auth)")
	cmd.Flags().BoolVar(&secure, "secure", false, "mark the call as arriving over an encrypted channel (security.enforce_encryption)")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report a freshly built gateway's readiness and bridge count",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := buildContext(cmd.OutOrStdout())
			started := err == nil
			if ctx == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "started=%v bridges=0\n", started)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "started=%v bridges=%d\n", started, ctx.Gateway.BridgeCount())
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gatewayctl version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
