package main

import "deepcrawl/cmd"

func main() {
	cmd.Execute()
}
