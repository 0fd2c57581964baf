// Package main is a command-line tool for trajectories.
//
//	trajtool dryrun -example sans
//	trajtool csv -f scan.trj > scan.csv
//	trajtool dot -f scan.yaml | dot -Tpng > scan.png
//	trajtool publish -f scan.trj -sink mqtt -- -h tcp://broker -t 'instr/%s'
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"sort"

	"github.com/jsccast/yaml"
)

func main() {

	if len(os.Args) < 2 {
		Usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "yamltojson":
		pretty := false

		switch len(os.Args) {
		case 2:
		case 3:
			switch os.Args[2] {
			case "-p":
				pretty = true
			default:
				fmt.Fprintf(os.Stderr, "unsupported args: %v\n", os.Args[1:])
				os.Exit(1)
			}
		default:
			fmt.Fprintf(os.Stderr, "unsupported args: %v\n", os.Args[1:])
			os.Exit(1)
		}

		bs, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		if bs, err = YAMLToJSON(bs, pretty); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		if _, err = os.Stdout.Write(bs); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

	default:

		mod, have := Mods[os.Args[1]]
		if !have {
			fmt.Printf("Unknown subcommand \"%s\"\n", os.Args[1])
			Usage()
			os.Exit(1)
		}

		fs := mod.Flags()
		if err := fs.Parse(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := mod.F(ctx, fs.Args(), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// YAMLToJSON converts a YAML document to JSON.
//
// Key order isn't preserved.
func YAMLToJSON(bs []byte, pretty bool) ([]byte, error) {
	var x interface{}
	if err := yaml.Unmarshal(bs, &x); err != nil {
		return nil, err
	}
	if pretty {
		return json.MarshalIndent(&x, "", "  ")
	}
	return json.Marshal(&x)
}

func Usage() {
	fmt.Printf("Subcommands:\n\n")
	names := make([]string, 0, len(Mods))
	for name := range Mods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mod := Mods[name]
		mod.Flags().Usage()
		fmt.Println("  " + mod.Doc())
		fmt.Println()
	}
	fmt.Println("Usage of yamltojson:")
	fmt.Printf("  -p    pretty-print\n\n")
}
