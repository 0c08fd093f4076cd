// Command avular-resolve is the CLI front end for the resolver core.
package main

import "avular-packages/internal/cli"

func main() {
	cli.Execute()
}
