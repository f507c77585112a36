package main

import "github.com/forPelevin/timejump/internal/cli"

func main() {
	cli.Main()
}
