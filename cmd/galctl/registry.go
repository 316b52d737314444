package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/galkit/galaxy/props"
)

func init() {
	rootCmd.AddCommand(newRegistryCmd())
}

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry [catalog.yaml]",
		Short: "Register a property catalog and list the assigned ids",
		Long: `The registry command loads a YAML property catalog, registers every
entry in order, and prints the extension id each property received grouped by
module. Without a catalog a built-in demo catalog is used.

Example:
  galctl registry props.yaml
  galctl registry props.yaml --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistry(args)
		},
	}
	return cmd
}

type registryEntry struct {
	ID     int32  `json:"id"`
	Name   string `json:"name"`
	Module int32  `json:"module"`
	Type   string `json:"type"`
	Size   int    `json:"size"`
	Flags  string `json:"flags,omitempty"`
	Units  string `json:"units,omitempty"`
}

type registryReport struct {
	Properties []registryEntry `json:"properties"`
	Modules    map[int32][]int32 `json:"modules"`
}

func runRegistry(args []string) error {
	descs := defaultCatalog()
	if len(args) == 1 {
		printVerbose("Loading catalog: %s\n", args[0])
		var err error
		if descs, err = loadCatalog(args[0]); err != nil {
			return err
		}
	}
	reg, ids, err := buildRegistry(descs)
	if err != nil {
		return err
	}
	defer reg.Close()

	report := registryReport{Modules: map[int32][]int32{}}
	for _, id := range ids {
		d, _ := reg.FindByID(id)
		report.Properties = append(report.Properties, registryEntry{
			ID:     int32(d.ID),
			Name:   d.Name,
			Module: int32(d.Module),
			Type:   typeName(d),
			Size:   d.Size,
			Flags:  d.Flags.String(),
			Units:  d.Units,
		})
	}
	for _, m := range reg.Modules() {
		for _, d := range reg.FindAllByModule(m) {
			report.Modules[int32(m)] = append(report.Modules[int32(m)], int32(d.ID))
		}
	}

	if jsonOut {
		return printJSON(report)
	}
	printInfo("%-4s %-24s %-6s %-14s %6s  %s\n", "ID", "NAME", "MODULE", "TYPE", "SIZE", "FLAGS")
	for _, e := range report.Properties {
		printInfo("%-4d %-24s %-6d %-14s %6d  %s\n", e.ID, e.Name, e.Module, e.Type, e.Size, e.Flags)
	}
	printInfo("\n%d properties in %d modules (capacity %d)\n", reg.Live(), len(reg.Modules()), reg.Limits().MaxProperties)
	return nil
}

func typeName(d props.Descriptor) string {
	if d.Type == props.TypeArray && d.Elem != props.TypeInvalid {
		return d.Elem.String() + "[" + itoa(d.Count()) + "]"
	}
	return d.Type.String()
}

func itoa(n int) string { return printer.Sprint(n) }
