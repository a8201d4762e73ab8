// Command shelfctl is the operator CLI for the ShelfSwap engine.
package main

import "github.com/shelfswap/shelfswap/internal/interfaces/cli"

func main() {
	cli.Execute()
}
