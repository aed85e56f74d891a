package main

import "github.com/viktsys/itchvwap/cmd"

func main() {
	cmd.Execute()
}
