package main

import "github.com/kozaktomas/photo-declutter/cmd"

func main() {
	cmd.Execute()
}
