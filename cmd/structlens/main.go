package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/codeglass/structlens/internal/cache"
	"github.com/codeglass/structlens/internal/config"
	"github.com/codeglass/structlens/internal/pipeline"
	"github.com/codeglass/structlens/internal/treetoken"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-simplify] [-cache PATH] FILE\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  -simplify     render the simplification-mode view instead of the faithful one\n")
	fmt.Fprintf(os.Stderr, "  -cache PATH   memoize flattenings in the sqlite file at PATH\n")
}

// isSourceFile reports whether path carries a recognized extension, the
// same dispatch rule the pipeline's language selection is built on.
func isSourceFile(path string) bool {
	_, ok := config.LanguageForPath(filepath.Ext(path))
	return ok
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	var simplify bool
	var cachePath string
	var path string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "-simplify":
			simplify = true
		case arg == "-cache":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: -cache requires a path")
				os.Exit(1)
			}
			i++
			cachePath = args[i]
		case strings.HasPrefix(arg, "-"):
			usage()
			os.Exit(1)
		default:
			path = arg
		}
	}

	if path == "" {
		usage()
		os.Exit(1)
	}
	if !isSourceFile(path) {
		fmt.Fprintf(os.Stderr, "Error: %s has no recognized language extension\n", path)
		os.Exit(1)
	}

	sourceBytes, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	source := string(sourceBytes)
	language, _ := config.LanguageForPath(filepath.Ext(path))
	absPath, _ := filepath.Abs(path)

	mode := fmt.Sprintf("faithful:%d", treetoken.FidelityEverything)
	if simplify {
		mode = "simplified:" + config.DefaultSimplificationIndent
	}

	var store *cache.Store
	var key cache.Key
	if cachePath != "" {
		store, err = cache.Open(cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		defer store.Close()
		key = cache.NewKey(source, language, mode)
		if entries, ok, err := store.Get(key); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		} else if ok {
			printTokens(cache.ToTreeTokens(entries), absPath, len(sourceBytes))
			return
		}
	}

	ctx := pipeline.NewContext(source, language, absPath)
	ctx = pipeline.New(pipeline.LexerProcessor{}, pipeline.ParserProcessor{}).Run(ctx)

	if len(ctx.Errors) > 0 {
		fmt.Fprintln(os.Stderr, "Processing failed with errors:")
		for _, e := range ctx.Errors {
			fmt.Fprintf(os.Stderr, "- %s\n", e.Error())
		}
		os.Exit(1)
	}

	var toks []treetoken.TreeToken
	if simplify {
		toks = treetoken.FlattenSimplified(ctx.AST, "")
	} else {
		toks, err = treetoken.FlattenFaithfully(ctx.AST, source, treetoken.FidelityEverything, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}

	if store != nil {
		if err := store.Put(key, cache.FromTreeTokens(toks)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write cache: %s\n", err)
		}
	}

	printTokens(toks, absPath, len(sourceBytes))
}

// printTokens writes each flattened token's text in order, then (only
// when stdout is a terminal) a one-line size summary — redirected
// output stays script-friendly, free of anything beyond the tokens.
func printTokens(toks []treetoken.TreeToken, path string, sourceSize int) {
	for _, t := range toks {
		fmt.Print(t.Text)
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintf(os.Stderr, "\n%s: %d tokens, %s source\n", path, len(toks), humanize.Bytes(uint64(sourceSize)))
	}
}
