package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/metasync/lib/metasync"
	"github.com/ValentinKolb/metasync/lib/record"
	"github.com/ValentinKolb/metasync/lib/session"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"io"
	"os"
	"slices"
	"strings"
	"time"
)

var (
	getCmd = &cobra.Command{
		Use:   "get [user] [organization]",
		Short: "Prints the settings record of a user in an organization",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := session.ScopeKey(args[0], args[1])
			rec, found, err := metaStore.GetItem(cmd.Context(), key)
			if err != nil {
				return err
			}
			if !found {
				fmt.Printf("%s %s\n", color.New(color.FgCyan).Sprint(key), color.New(color.FgYellow).Sprint("(no record)"))
				return nil
			}
			printRecord(os.Stdout, key, rec)
			return nil
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [user] [organization] [field=value]...",
		Short: "Merges fields into the settings record of a user in an organization",
		Long: `Merges fields into the settings record of a user in an organization.
Values are parsed as JSON (numbers, booleans, null, arrays, objects) and fall
back to a plain string, so "theme=dark" and "pageSize=50" both work.
Fields not named on the command line are left untouched.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := session.ScopeKey(args[0], args[1])
			fields, err := parseAssignments(args[2:])
			if err != nil {
				return err
			}

			w := metasync.NewWriter(metaStore)
			for _, field := range fields.keys {
				w.Stage(key, field, fields.values[field])
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := w.Close(ctx); err != nil {
				return err
			}

			fmt.Printf("%s %s\n", color.New(color.FgGreen).Sprint("saved"), key)
			return nil
		},
	}
	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Prints all stored settings records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := metaStore.Keys(cmd.Context())
			if err != nil {
				return err
			}
			slices.Sort(keys)

			for _, key := range keys {
				rec, found, err := metaStore.GetItem(cmd.Context(), key)
				if err != nil {
					fmt.Printf("%s %s\n", color.New(color.FgCyan).Sprint(key), color.New(color.FgRed).Sprint(err))
					continue
				}
				if !found {
					continue
				}
				printRecord(os.Stdout, key, rec)
			}
			if len(keys) == 0 {
				fmt.Println(color.New(color.FgYellow).Sprint("(empty)"))
			}
			return nil
		},
	}
)

// assignments keeps the command line order of parsed fields
type assignments struct {
	keys   []string
	values record.Record
}

// parseAssignments parses field=value arguments. A field named twice keeps the last value.
func parseAssignments(args []string) (assignments, error) {
	a := assignments{values: record.Record{}}
	for _, arg := range args {
		field, raw, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			return a, fmt.Errorf("invalid field %q (expected field=value)", arg)
		}
		if _, dup := a.values[field]; !dup {
			a.keys = append(a.keys, field)
		}
		a.values[field] = parseValue(raw)
	}
	return a, nil
}

// parseValue decodes raw as JSON and falls back to the raw string
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// printRecord writes the fields of rec sorted by name
func printRecord(out io.Writer, key string, rec record.Record) {
	fmt.Fprintln(out, color.New(color.FgCyan, color.Bold).Sprint(key))

	fields := make([]string, 0, len(rec))
	for field := range rec {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	for _, field := range fields {
		value, err := json.Marshal(rec[field])
		if err != nil {
			value = []byte(fmt.Sprint(rec[field]))
		}
		fmt.Fprintf(out, "  %-20s %s\n", field, color.New(color.FgGreen).Sprint(string(value)))
	}
}
