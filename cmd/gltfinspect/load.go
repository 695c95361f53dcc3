package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"
	"github.com/Carmen-Shannon/oxy-gltf/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gltf/engine/scene"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func (a *app) loadCommand() *cobra.Command {
	var (
		leftHanded bool
		noNormals  bool
		profile    bool
	)

	cmd := &cobra.Command{
		Use:   "load <file.gltf|file.glb>",
		Short: "Load an asset into a scene and report what was created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []loader.FileLoaderBuilderOption
			if cmd.Flags().Changed("left-handed") {
				opts = append(opts, loader.WithConvertToLeftHanded(leftHanded))
			}
			if cmd.Flags().Changed("no-normals") {
				opts = append(opts, loader.WithComputeMissingNormals(!noNormals))
			}

			fl := a.newLoader(opts...)
			defer fl.Dispose()

			var p *profiler.Profiler
			if profile {
				p = profiler.NewProfiler(a.log)
				p.Start()
			}

			name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			s := scene.NewScene(scene.WithName(name), scene.WithActive(false))
			err := fl.LoadFile(cmd.Context(), s, args[0])
			if p != nil {
				p.Stop("load " + args[0])
			}
			s.SetActive(err == nil)

			printScene(cmd.OutOrStdout(), s)
			if err != nil {
				errs := multierr.Errors(err)
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d error(s):\n", len(errs))
				for _, e := range errs {
					fmt.Fprintf(cmd.OutOrStdout(), "  %v\n", e)
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&leftHanded, "left-handed", false, "Convert to a left-handed coordinate system")
	cmd.Flags().BoolVar(&noNormals, "no-normals", false, "Do not generate missing normals")
	cmd.Flags().BoolVar(&profile, "profile", false, "Log time and memory spent loading")
	return cmd
}

func printScene(w io.Writer, s scene.Scene) {
	vertices, submeshes := 0, 0
	for _, n := range s.MeshNodes() {
		for _, sub := range n.Mesh().SubMeshes() {
			submeshes++
			if geo := sub.Geometry(); geo != nil {
				vertices += len(geo.Positions) / 3
			}
		}
	}

	state := "inactive"
	if s.Active() {
		state = "active"
	}
	fmt.Fprintf(w, "Scene:      %s (%s)\n", s.Name(), state)
	fmt.Fprintf(w, "  %-12s %d\n", "Nodes", len(s.Nodes()))
	fmt.Fprintf(w, "  %-12s %d\n", "Mesh nodes", len(s.MeshNodes()))
	fmt.Fprintf(w, "  %-12s %d\n", "Submeshes", submeshes)
	fmt.Fprintf(w, "  %-12s %d\n", "Vertices", vertices)
	fmt.Fprintf(w, "  %-12s %d\n", "Materials", len(s.Materials()))
	fmt.Fprintf(w, "  %-12s %d\n", "Textures", len(s.Textures()))
	fmt.Fprintf(w, "  %-12s %d\n", "Skeletons", len(s.Skeletons()))
	fmt.Fprintf(w, "  %-12s %d\n", "Cameras", len(s.Cameras()))
	fmt.Fprintf(w, "  %-12s %d\n", "Lights", len(s.Lights()))

	groups := s.AnimationGroups()
	fmt.Fprintf(w, "  %-12s %d\n", "Animations", len(groups))
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name() < groups[j].Name() })
	for _, g := range groups {
		fmt.Fprintf(w, "    %-20s %3d tracks  %6.2fs\n", g.Name(), len(g.Tracks()), g.Duration())
	}
}
