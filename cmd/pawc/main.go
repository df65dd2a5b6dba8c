// pawc is the Paw middle-end compiler driver: it loads a project manifest,
// resolves and lowers a whole program's modules, and drives codegen/link.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/mewkiz/pkg/term"

	"github.com/pawlang-project/pawc/internal/codegen"
	"github.com/pawlang-project/pawc/internal/compiler"
	"github.com/pawlang-project/pawc/internal/loader"
)

// dbg is a logger which logs debug messages with "pawc:" prefix to standard
// error, following the teacher's own colorized `dbg` logger.
var dbg = log.New(os.Stderr, term.MagentaBold("pawc:")+" ", 0)

// manifest is the `paw.toml` project file: the standard-library root and any
// extra project-local search root (spec.md §6).
type manifest struct {
	StdRoot string `toml:"std_root"`
	BaseDir string `toml:"base_dir"`
}

func usage() {
	const use = `
Usage: pawc [OPTION]... FILE.paw

Compile a Paw program rooted at FILE.paw into a native executable.
`
	fmt.Fprintln(os.Stderr, use[1:])
	flag.PrintDefaults()
}

func main() {
	var (
		manifestPath = flag.String("config", "paw.toml", "path to the project manifest")
		outPath      = flag.String("o", "a.out", "path of the compiled executable")
		objDir       = flag.String("obj-dir", os.TempDir(), "directory for intermediate object files")
		emitIR       = flag.Bool("emit-ir", false, "print the lowered LLVM IR instead of linking")
		verbose      = flag.Bool("v", false, "enable debug logging")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	rootPath := flag.Arg(0)

	if !*verbose {
		devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err == nil {
			dbg.SetOutput(devnull)
		}
	}

	var man manifest
	if _, err := toml.DecodeFile(*manifestPath, &man); err != nil && !os.IsNotExist(err) {
		log.Fatalf("pawc: unable to parse %s: %+v", *manifestPath, err)
	}
	dbg.Printf("std_root=%q base_dir=%q", man.StdRoot, man.BaseDir)

	l := loader.New(&externalParser{}, man.StdRoot, man.BaseDir)
	mc := compiler.New(l, &codegen.Clang{})

	if *emitIR {
		res, err := mc.CompileProgram(rootPath)
		if err != nil {
			log.Fatalf("pawc: %+v", err)
		}
		fmt.Println(res.Module)
		return
	}

	if _, err := mc.CompileAndLink(rootPath, *objDir, *outPath); err != nil {
		log.Fatalf("pawc: %+v", err)
	}
	dbg.Printf("wrote %s", *outPath)
}
