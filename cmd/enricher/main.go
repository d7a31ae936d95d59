package main

import "github.com/vietddude/enricher/internal/cli"

func main() {
	cli.Execute()
}
