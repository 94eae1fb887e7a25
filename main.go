package main

import "github.com/takeshy/zimcatalog/cmd"

func main() {
	cmd.Execute()
}
