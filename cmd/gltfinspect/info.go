package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"

	"github.com/spf13/cobra"
)

// summary is the document overview printed by the info command.
type summary struct {
	File               string   `json:"file"`
	Binary             bool     `json:"binary"`
	Version            string   `json:"version"`
	Generator          string   `json:"generator,omitempty"`
	Copyright          string   `json:"copyright,omitempty"`
	Scenes             int      `json:"scenes"`
	Nodes              int      `json:"nodes"`
	Meshes             int      `json:"meshes"`
	Primitives         int      `json:"primitives"`
	Materials          int      `json:"materials"`
	Textures           int      `json:"textures"`
	Images             int      `json:"images"`
	Animations         int      `json:"animations"`
	Skins              int      `json:"skins"`
	Cameras            int      `json:"cameras"`
	Accessors          int      `json:"accessors"`
	Buffers            int      `json:"buffers"`
	BufferBytes        int      `json:"bufferBytes"`
	EmbeddedBytes      int      `json:"embeddedBytes"`
	ExtensionsUsed     []string `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string `json:"extensionsRequired,omitempty"`
}

func (a *app) infoCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <file.gltf|file.glb>",
		Short: "Show asset information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.summarize(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			printSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func (a *app) summarize(path string) (*summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fl := a.newLoader()
	defer fl.Dispose()

	ld, version, err := fl.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	s := &summary{
		File:          path,
		Binary:        loader.IsBinaryContainer(data),
		Version:       version.String(),
		EmbeddedBytes: len(ld.Bin),
	}
	if version.Major != 2 {
		return s, nil
	}

	raw, ok := ld.JSON.(json.RawMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected document type %T", ld.JSON)
	}
	doc, err := loader.ParseDocument(raw)
	if err != nil {
		return nil, err
	}

	s.Generator = doc.Asset.Generator
	s.Copyright = doc.Asset.Copyright
	s.Scenes = len(doc.Scenes)
	s.Nodes = len(doc.Nodes)
	s.Meshes = len(doc.Meshes)
	for _, m := range doc.Meshes {
		s.Primitives += len(m.Primitives)
	}
	s.Materials = len(doc.Materials)
	s.Textures = len(doc.Textures)
	s.Images = len(doc.Images)
	s.Animations = len(doc.Animations)
	s.Skins = len(doc.Skins)
	s.Cameras = len(doc.Cameras)
	s.Accessors = len(doc.Accessors)
	s.Buffers = len(doc.Buffers)
	for _, b := range doc.Buffers {
		s.BufferBytes += b.ByteLength
	}
	s.ExtensionsUsed = doc.ExtensionsUsed
	s.ExtensionsRequired = doc.ExtensionsRequired
	return s, nil
}

func printSummary(w io.Writer, s *summary) {
	format := "glTF"
	if s.Binary {
		format = "GLB"
	}
	fmt.Fprintf(w, "File:       %s\n", s.File)
	fmt.Fprintf(w, "Format:     %s\n", format)
	fmt.Fprintf(w, "Version:    %s\n", s.Version)
	if s.Generator != "" {
		fmt.Fprintf(w, "Generator:  %s\n", s.Generator)
	}
	if s.Copyright != "" {
		fmt.Fprintf(w, "Copyright:  %s\n", s.Copyright)
	}
	fmt.Fprintln(w)

	rows := []struct {
		label string
		value int
	}{
		{"Scenes", s.Scenes},
		{"Nodes", s.Nodes},
		{"Meshes", s.Meshes},
		{"Primitives", s.Primitives},
		{"Materials", s.Materials},
		{"Textures", s.Textures},
		{"Images", s.Images},
		{"Animations", s.Animations},
		{"Skins", s.Skins},
		{"Cameras", s.Cameras},
		{"Accessors", s.Accessors},
		{"Buffers", s.Buffers},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-12s %d\n", r.label, r.value)
	}
	fmt.Fprintf(w, "  %-12s %s\n", "Buffer data", formatBytes(s.BufferBytes))
	if s.Binary {
		fmt.Fprintf(w, "  %-12s %s\n", "BIN chunk", formatBytes(s.EmbeddedBytes))
	}

	if len(s.ExtensionsUsed) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Extensions used:")
		for _, e := range s.ExtensionsUsed {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	if len(s.ExtensionsRequired) > 0 {
		fmt.Fprintln(w, "Extensions required:")
		for _, e := range s.ExtensionsRequired {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
}
