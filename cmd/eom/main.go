package main

import "github.com/mcoot/energyofmoney/internal/cli"

func main() {
	cli.Execute()
}
