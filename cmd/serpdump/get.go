package main

import (
	"fmt"

	"github.com/fwojciec/serpdump"
)

// Run executes the get command.
func (c *GetCmd) Run(deps *Dependencies) error {
	format, err := serpdump.ParseFormat(c.Format)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s. Use json, xml or csv.\n", serpdump.ErrorMessage(err))
		return err
	}

	artifact, err := deps.Gateway.Fetch(deps.Ctx, format)
	if serpdump.ErrorCode(err) == serpdump.ENOTFOUND {
		fmt.Fprintf(deps.Stderr, "error: %s does not exist. Run 'serpdump search <keyword>' first.\n", format.Filename())
		return err
	} else if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpdump.ErrorMessage(err))
		return err
	}

	_, err = deps.Stdout.Write(artifact.Content)
	return err
}
