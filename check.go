package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"lattigov5_hecompute/check"
	"lattigov5_hecompute/configs"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	flagConfig  = flag.String("config", "", "JSON run configuration (default: insecure test preset)")
	flagRoutine = flag.String("routine", "all", "check routine to run: all, matrixmult, polynomial or score")
	flagMatrix  = flag.Bool("matrix", false, "use the LogN 14 preset instead of the test one")
)

func main() {
	flag.Parse()

	cfg := configs.Default()
	if *flagConfig != "" {
		var err error
		if cfg, err = configs.Load(*flagConfig); err != nil {
			log.Fatal(err)
		}
	}
	if *flagMatrix {
		cfg.Params = configs.ParamsMatrix
	}

	names := maps.Keys(check.Routines)
	slices.Sort(names)
	if *flagRoutine != "all" {
		if _, ok := check.Routines[*flagRoutine]; !ok {
			log.Fatalf("unknown routine %q, want one of %v", *flagRoutine, names)
		}
		names = []string{*flagRoutine}
	}

	for _, name := range names {
		fmt.Printf("------------------------------ %s ------------------------------\n", name)
		ps, err := check.Routines[name](cfg, os.Stdout)
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}
		fmt.Println(ps.String())
	}
}
