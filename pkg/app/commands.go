package app

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// PrintRoutes writes the named routes of the application as a table.
func (a *Application) PrintRoutes(w io.Writer) error {
	infos := a.Router().Routes()
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No named routes registered.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tNAME")
	fmt.Fprintln(tw, "------\t----\t----")
	for _, ri := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return tw.Flush()
}
