package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) packCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pack <in.gltf> [out.glb]",
		Short: "Embed an asset and its external resources in a single binary file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			out := outputPath(in, optionalArg(args, 1), ".glb")
			if out == in {
				return fmt.Errorf("output would overwrite the input %s", in)
			}

			data, err := os.ReadFile(in)
			if err != nil {
				return err
			}

			fl := a.newLoader()
			defer fl.Dispose()

			ld, version, err := fl.Parse(data)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", in, err)
			}
			if version.Major != 2 {
				return &loader.UnsupportedVersionError{Version: version.String(), Reason: "only version 2 assets can be packed"}
			}
			raw, ok := ld.JSON.(json.RawMessage)
			if !ok {
				return fmt.Errorf("unexpected document type %T", ld.JSON)
			}
			doc, err := loader.ParseDocument(raw)
			if err != nil {
				return err
			}

			fetcher := loader.NewDefaultFetcher(time.Duration(a.cfg.Loader.FetchTimeout))
			glb, err := loader.PackBinary(cmd.Context(), doc, ld.Bin, fetcher, rootURL(in))
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, glb, 0o644); err != nil {
				return err
			}

			a.log.Info("Packed asset", zap.String("in", in), zap.String("out", out), zap.Int("bytes", len(glb)))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", out, formatBytes(len(glb)))
			return nil
		},
	}
}

func (a *app) unpackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unpack <in.glb> [out.gltf]",
		Short: "Split a binary file into a JSON document and a .bin buffer",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			out := outputPath(in, optionalArg(args, 1), ".gltf")
			if out == in {
				return fmt.Errorf("output would overwrite the input %s", in)
			}

			data, err := os.ReadFile(in)
			if err != nil {
				return err
			}

			binPath := outputPath(out, "", ".bin")
			text, bin, err := loader.UnpackBinary(data, filepath.Base(binPath))
			if err != nil {
				return fmt.Errorf("failed to unpack %s: %w", in, err)
			}

			if err := os.WriteFile(out, text, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", out, formatBytes(len(text)))

			if bin != nil {
				if err := os.WriteFile(binPath, bin, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", binPath, formatBytes(len(bin)))
			}

			a.log.Info("Unpacked asset", zap.String("in", in), zap.String("out", out))
			return nil
		},
	}
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
