package main

import "github.com/mvp-joe/component-atlas/internal/cli"

func main() {
	cli.Execute()
}
