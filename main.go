package main

import "github.com/docsentry/docsentry/cmd/docsentry/commands"

func main() {
	commands.Execute()
}
