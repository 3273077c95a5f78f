package main

import "github.com/alde/glassmap/cmd"

func main() {
	cmd.Execute()
}
