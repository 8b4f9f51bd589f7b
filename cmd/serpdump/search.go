package main

import (
	"fmt"

	"github.com/fwojciec/serpdump"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	result, err := deps.Search.Search(deps.Ctx, c.Keyword)
	switch serpdump.ErrorCode(err) {
	case "":
	case serpdump.ENOMATCH:
		fmt.Fprintf(deps.Stderr, "error: no results found for %q. The page layout may have changed; see --rules.\n", c.Keyword)
		return err
	case serpdump.EPERSIST:
		if result != nil {
			printRecords(deps, result.Records)
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpdump.ErrorMessage(err))
		return err
	default:
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpdump.ErrorMessage(err))
		return err
	}

	printRecords(deps, result.Records)
	fmt.Fprintf(deps.Stdout, "\nSaved %d results (snapshot %s)\n", len(result.Records), result.Snapshot.ID)
	return nil
}

func printRecords(deps *Dependencies, records []serpdump.Record) {
	for i, r := range records {
		title, ok := r.Title.Get()
		if !ok || title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(deps.Stdout, "  %d. %s\n", i+1, title)
		if link, ok := r.Link.Get(); ok {
			fmt.Fprintf(deps.Stdout, "     %s\n", link)
		}
	}
}
