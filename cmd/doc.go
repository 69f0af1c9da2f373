// Package cmd implements the command-line interface of metasync. It provides
// commands for hosting store shards and for reading and writing settings
// records as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Starts the store server hosting lstore, fstore and sqlstore shards over HTTP
//   - meta: Reads, writes, dumps and benchmarks settings records (get, set, dump, bench)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set through an environment variable with the METASYNC_
// prefix (e.g. METASYNC_STORE=sqlite). Variables from .env and .env.local are loaded first.
//
// See metasync -help for a list of all commands.
package cmd
