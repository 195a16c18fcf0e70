// Command bsor prints the metadata and events of a BSOR replay file.
//
//	bsor <BSOR file> [events]
//
// events is a sequence of the letters f, n, w, h and p selecting frames,
// notes, walls, height changes and pauses.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/OCAP2/bsor/internal/config"
	"github.com/OCAP2/bsor/internal/logging"
	"github.com/OCAP2/bsor/pkg/bsor"
)

func main() {
	config.LoadDefaults()
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code. Program
// output goes to stdout; diagnostics are logged to stderr.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) <= 1 {
		printUsage(stdout, args)
		return 0
	}
	if len(args) > 3 {
		fmt.Fprint(stdout, "Too many arguments.\n")
		return 1
	}

	var kinds bsor.KindSet
	if len(args) == 3 {
		var err error
		kinds, err = bsor.ParseKinds(args[2])
		var uk *bsor.UnknownKindError
		if errors.As(err, &uk) {
			fmt.Fprintf(stdout, "Unknown event type '%c'.\n", uk.Letter)
			return 1
		}
	}

	logs := logging.NewSlogManager()
	logs.Setup(config.GetString("logLevel"), logging.Options{File: stderr})
	log := logs.Logger()

	path := args[1]
	fmt.Fprintf(stdout, "File %s:\n", path)

	start := time.Now()
	replay, err := decodeFile(path, kinds)
	if err != nil {
		log.Debug("Decode failed", "path", path, "error", err)
		fmt.Fprintf(stdout, "\tParse failed: %s\n", err)
		return 1
	}
	log.Debug("Decoded replay", "path", path, "events", len(replay.Events), "duration", time.Since(start))

	printInfo(stdout, replay.Info)
	if kinds != 0 {
		printEvents(stdout, replay.Events, config.GetInt("dump.maxEvents"))
	}
	return 0
}

func printUsage(w io.Writer, args []string) {
	prog := "bsor"
	if len(args) > 0 {
		prog = args[0]
	}
	fmt.Fprintf(w, "Usage: %s <BSOR file> [events]\n", prog)
	fmt.Fprintln(w, "[events] is a sequence of letters, saying which types of events to show:")
	fmt.Fprintln(w, "\tf - Frame\n\tn - Note\n\tw - Wall\n\th - Height\n\tp - Pause")
}

func decodeFile(path string, kinds bsor.KindSet) (*bsor.Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return bsor.DecodeWithOptions(f, bsor.Options{Kinds: kinds})
}
