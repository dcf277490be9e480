package main

import "github.com/mcoot/clashoffists/internal/cli"

func main() {
	cli.Execute()
}
