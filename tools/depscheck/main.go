package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

type packageInfo struct {
	ImportPath string
	Imports    []string
}

// The agent core must stay ignorant of transports and wiring: observers watch
// the simulation, never the other way around.
var forbidden = map[string][]string{
	"dungeon-crawlers/sim/internal/ai": {
		"dungeon-crawlers/sim/internal/net",
		"dungeon-crawlers/sim/internal/app",
		"dungeon-crawlers/sim/internal/sim",
	},
	"dungeon-crawlers/sim/internal/state": {
		"dungeon-crawlers/sim/internal/net",
		"dungeon-crawlers/sim/internal/app",
	},
	"dungeon-crawlers/sim/internal/sim": {
		"dungeon-crawlers/sim/internal/net",
		"dungeon-crawlers/sim/internal/app",
	},
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./internal/...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	decoder := json.NewDecoder(bytes.NewReader(output))

	var violations []string
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
			os.Exit(1)
		}

		banned := forbidden[pkg.ImportPath]
		if len(banned) == 0 {
			continue
		}
		for _, imp := range pkg.Imports {
			for _, prefix := range banned {
				if imp == prefix || strings.HasPrefix(imp, prefix+"/") {
					violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
				}
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}
