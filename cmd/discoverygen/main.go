// Command discoverygen writes the static discovery document (C9) to
// disk as a deploy artifact. It is never served by surfd itself — the
// generated file is uploaded wherever devices fetch it from on first
// boot.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shahar42/surf-lamp-engine/pkg/discoverydoc"
)

var (
	apiServer     = flag.String("api-server", "", "primary API host devices should poll")
	backupServers = flag.String("backup-servers", "", "comma-separated fallback API hosts")
	docVersion    = flag.String("version", "1.0", "discovery document version field")
	timestamp     = flag.Int64("timestamp", 0, "epoch seconds to embed (required)")
	interval      = flag.Int("update-interval-hours", 24, "how often devices should re-fetch this document")
	outPath       = flag.String("out", "discovery.json", "output file path")
)

func main() {
	flag.Parse()

	if *apiServer == "" {
		fmt.Fprintln(os.Stderr, "discoverygen: -api-server is required")
		os.Exit(1)
	}
	if *timestamp == 0 {
		fmt.Fprintln(os.Stderr, "discoverygen: -timestamp is required (epoch seconds)")
		os.Exit(1)
	}

	var backups []string
	if *backupServers != "" {
		backups = strings.Split(*backupServers, ",")
	}

	doc := discoverydoc.Generate(*apiServer, backups, *docVersion, *timestamp, *interval)

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "discoverygen: failed to marshal discovery document: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, body, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "discoverygen: failed to write %s: %v\n", *outPath, err)
		os.Exit(1)
	}

	fmt.Printf("discoverygen: wrote %s\n", *outPath)
}
