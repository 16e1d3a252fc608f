package main

import "github.com/sayraos/sayra/cmd"

func main() {
	cmd.Execute()
}
