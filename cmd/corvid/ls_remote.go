package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/nullpointr/corvid/packwire"
)

func newLsRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-remote <url>",
		Short: "list references advertised by a remote repository",
		Args:  cobra.ExactArgs(1),
	}

	refsOnly := cmd.Flags().Bool("refs", false, "do not show the synthetic HEAD advertisement")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsRemoteCmd(cmd.OutOrStdout(), args[0], *refsOnly)
	}

	return cmd
}

func lsRemoteCmd(out io.Writer, remoteURL string, refsOnly bool) error {
	refs, err := packwire.DiscoverRefs(http.DefaultClient, remoteURL, packwire.DiscoverOptions{RefsOnly: refsOnly})
	if err != nil {
		return err
	}

	for _, ref := range refs {
		fmt.Fprintf(out, "%s\t%s\n", ref.OID, ref.Name)
	}
	return nil
}
