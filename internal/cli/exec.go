package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/JayabrataBasu/VeridicalDB/pkg/physical"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
)

// runAndPrint opens a physical node, drains it to completion, and prints
// each row's cells tab-separated, matching the teacher REPL's plain-text
// output style.
func runAndPrint(n physical.Node) error {
	if err := n.Open(context.Background()); err != nil {
		return err
	}
	defer n.Close()

	count := 0
	for {
		if err := n.Next(); err != nil {
			if rc.Of(err) == rc.RECORD_EOF {
				break
			}
			return err
		}
		row, err := n.Current()
		if err != nil {
			return err
		}
		cells := make([]string, row.CellCount())
		for i := range cells {
			v, err := row.CellAt(i)
			if err != nil {
				return err
			}
			cells[i] = v.String()
		}
		fmt.Println(strings.Join(cells, "\t"))
		count++
	}
	fmt.Printf("(%d row(s))\n", count)
	return nil
}
