package main

import "ablac/cmd"

func main() {
	cmd.Execute()
}
