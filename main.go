package main

import "github.com/relloyd/addrsync/cmd"

func main() {
	cmd.Execute()
}
