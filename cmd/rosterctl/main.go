package main

import "example.com/roster/cmd/rosterctl/cmd"

func main() {
	cmd.Execute()
}
