package main

import "github.com/andrescamacho/xnova-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
