// ddbmem loads table schemas and fixture items into an in-memory store and
// runs reads against it. It is meant for checking what a query or scan returns
// before writing the test that relies on it.
//
// # Installation
//
//	go install github.com/acksell/dynamini/dynamodb/cmd/ddbmem@latest
//
// # Commands
//
//	ddbmem tables   List the loaded tables and their key schemas
//	ddbmem get      Read one item by key
//	ddbmem query    Query a table or index by key condition
//	ddbmem scan     Scan a table or index, optionally by segment
//
// Schemas are the YAML files read by table.LoadSchemas. Without --schemas,
// every schema_dynamodb.yaml below the current directory is loaded.
// Fixtures are a YAML or JSON document mapping table names to lists of items:
//
//	users:
//	  - {id: u1, name: Alice, visits: 3}
//	  - {id: u2, name: Bob, tags: [a, b]}
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	// Remove the subcommand from args so flag parsing works
	os.Args = append([]string{os.Args[0]}, os.Args[2:]...)

	var err error
	switch cmd {
	case "tables":
		err = runTables(os.Args[1:])
	case "get":
		err = runGet(os.Args[1:])
	case "query":
		err = runQuery(os.Args[1:])
	case "scan":
		err = runScan(os.Args[1:])
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "-v", "--version":
		fmt.Printf("ddbmem version %s\n", version)
		return
	default:
		fmt.Fprintf(os.Stderr, "ddbmem: unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ddbmem %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ddbmem - run reads against an in-memory table loaded from fixtures

Usage:
  ddbmem <command> [flags]

Commands:
  tables  List the loaded tables and their key schemas
  get     Read one item by key
  query   Query a table or index by key condition
  scan    Scan a table or index

Examples:
  ddbmem tables --schemas 'schema/*.yaml'
  ddbmem query --fixtures users.yaml --table users --hash u1
  ddbmem query --table scores --index by-team --hash red --ge 10 --reverse
  ddbmem scan --table scores --limit 10 --segment 0 --total-segments 4

Configuration (optional):
  Create ddbmem.yaml for defaults:

    schemas: ./schema/*.yaml   # schema glob
    fixtures: ./fixtures.yaml  # fixture items

Run 'ddbmem <command> --help' for more information on a command.`)
}
