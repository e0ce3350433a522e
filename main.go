/*
Bricklayer is a live-reloading 3D asset viewer. Pass one or more mesh
files as arguments (or "-" to read a newline-separated list from
stdin); each mesh is displayed with its companion .aseprite texture and
both are reloaded automatically whenever the file changes on disk.
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/bricklayer/engine"
	"github.com/spaghettifunk/bricklayer/engine/renderer/raylib"
)

func main() {
	configPath := flag.String("config", "bricklayer.toml", "path to the TOML configuration file")
	skybox := flag.Bool("skybox", false, "disable the reference grid")
	flag.Parse()

	configExplicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configExplicit = true
		}
	})

	paths, err := collectMeshPaths(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No model files were supplied as arguments.")
		os.Exit(1)
	}

	cfg, err := engine.LoadConfig(*configPath, configExplicit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if *skybox {
		cfg.Scene.Grid = false
	}

	viewer, err := engine.New(cfg, paths, raylib.New())
	if err != nil {
		panic(err)
	}

	if err := viewer.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		viewer.Stop()
	}()

	// run viewer
	if err := viewer.Run(); err != nil {
		panic(err)
	}
}

// collectMeshPaths expands the positional arguments into the ordered
// list of mesh paths. "-" splices in a newline-separated list from
// stdin. The list is deliberately not de-duplicated; showing the same
// mesh twice is the caller's business.
func collectMeshPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if arg != "-" {
			paths = append(paths, arg)
			continue
		}

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				paths = append(paths, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading path list from stdin: %w", err)
		}
	}
	return paths, nil
}
